package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/cloudbox/internal/client/client"
	"github.com/dmitrijs2005/cloudbox/internal/client/session"
	"github.com/dmitrijs2005/cloudbox/internal/client/sink"
	"github.com/dmitrijs2005/cloudbox/internal/client/transfer"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	List(ctx context.Context) error
	Upload(ctx context.Context, path string) error
	Download(ctx context.Context, fileName, dest string) error
	Delete(ctx context.Context, id string) error
}

// runREPL starts the read-eval-print loop for the cloudbox CLI.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a'. The loop exits on EOF, when ctx is done, or
// when the user types "exit" or "quit".
//
//	Not logged in:
//	  - help                            show available commands
//	  - register                        create an account
//	  - login                           authenticate
//	  - exit | quit                     leave the program
//
//	Logged in:
//	  - help                            show available commands
//	  - list | ls                       list files
//	  - upload <path>                   upload a local file
//	  - download <fileName> [dest]      download to a directory, file or s3://bucket/prefix
//	  - delete <id>                     delete a file (asks for confirmation)
//	  - whoami                          show the current user
//	  - logout                          log out
//	  - exit | quit                     leave the program
//
// Errors returned by handlers are printed as user messages; they never
// stop the loop.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("cloudbox %s> ", statusFn()))

		line, err := reader.ReadString('\n')
		if err != nil && (line == "" || !errors.Is(err, io.EOF)) {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: list (ls), upload <path>, download <fileName> [dest], delete <id>, whoami, logout, exit")
			} else {
				printlnFn("Available commands: register, login, exit")
			}

		case "register":
			report(a.Register(ctx))

		case "login":
			report(a.Login(ctx))

		case "logout":
			report(a.Logout(ctx))

		case "whoami":
			report(a.WhoAmI(ctx))

		case "ls", "list":
			report(a.List(ctx))

		case "upload":
			if len(args) != 1 {
				printlnFn("Usage: upload <path>")
				continue
			}
			report(a.Upload(ctx, args[0]))

		case "download":
			if len(args) < 1 || len(args) > 2 {
				printlnFn("Usage: download <fileName> [dest]")
				continue
			}
			dest := ""
			if len(args) == 2 {
				dest = args[1]
			}
			report(a.Download(ctx, args[0], dest))

		case "delete":
			if len(args) != 1 {
				printlnFn("Usage: delete <id>")
				continue
			}
			report(a.Delete(ctx, args[0]))

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			return
		}
	}
}

func report(err error) {
	if err != nil {
		printlnFn("Error:", userMessage(err))
	}
}

// userMessage turns an error into the text shown to the user.
func userMessage(err error) string {
	var apiErr *client.APIError
	var trErr *transfer.Error

	switch {
	case errors.Is(err, client.ErrValidation):
		return err.Error()
	case errors.Is(err, session.ErrNotAuthenticated):
		return "please log in first"
	case errors.Is(err, transfer.ErrTransferInProgress):
		return "another upload is still running"
	case errors.Is(err, sink.ErrBucketNotFound):
		return err.Error()
	case errors.As(err, &trErr):
		if trErr.Outcome.Kind == transfer.FailureTransport {
			return "upload failed: server unreachable"
		}
		if trErr.Outcome.Body != "" {
			return "upload failed: " + trErr.Outcome.Body
		}
		return fmt.Sprintf("upload failed (status %d)", trErr.Outcome.StatusCode)
	case errors.Is(err, client.ErrUnavailable):
		return "server unavailable, try again later"
	case errors.As(err, &apiErr) && apiErr.Kind == client.KindAuth:
		if apiErr.Body != "" {
			return "not authorized: " + apiErr.Body
		}
		return "not authorized, please log in"
	case errors.As(err, &apiErr):
		if apiErr.Body != "" {
			return apiErr.Body
		}
		return fmt.Sprintf("request failed (status %d)", apiErr.StatusCode)
	default:
		return err.Error()
	}
}
