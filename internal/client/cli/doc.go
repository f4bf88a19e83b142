// Package cli provides the interactive cloudbox command-line client.
//
// It wires configuration, the local SQLite session store, the REST API
// client, the session controller, the file registry and the upload
// coordinator, and serves a REPL on stdin. The CLI holds no state of its
// own: it prompts for input, calls the controller or registry, and prints
// what they return.
//
// Key features:
//   - Register / Login / Logout / Whoami
//   - List files, upload with a progress percentage, download to a local
//     directory or an S3 bucket, delete after a y/N confirmation
//   - Ctrl-C cancels a running upload
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli
