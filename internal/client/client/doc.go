// Package client contains the cloudbox REST API client and the bootstrap of
// the local client database.
//
// # Overview
//
// The package provides:
//  1. A transport contract (see the Client interface) covering the calls the
//     client makes: Register, Login, ListFiles, DeleteFile, Download and the
//     generic Request primitive they are built on.
//  2. A net/http implementation (see HTTPClient) that serializes bodies as
//     JSON, attaches the bearer token, and classifies failures.
//  3. Local persistence bootstrap (InitDatabase, RunMigrations) wiring an
//     SQLite database and applying embedded goose migrations.
//
// # Error Handling
//
// Every failed call returns *APIError. Its Kind matches the sentinels with
// errors.Is: ErrUnauthorized (401/403), ErrUnavailable (no response) and
// ErrServer (any other non-2xx). Body keeps the raw response text.
//
// Request never retries; one user action maps to at most one attempt.
package client
