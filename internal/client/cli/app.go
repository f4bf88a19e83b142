package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync/atomic"

	"github.com/dmitrijs2005/cloudbox/internal/client/client"
	"github.com/dmitrijs2005/cloudbox/internal/client/config"
	"github.com/dmitrijs2005/cloudbox/internal/client/credentials"
	"github.com/dmitrijs2005/cloudbox/internal/client/files"
	"github.com/dmitrijs2005/cloudbox/internal/client/models"
	"github.com/dmitrijs2005/cloudbox/internal/client/session"
	"github.com/dmitrijs2005/cloudbox/internal/client/sink"
	"github.com/dmitrijs2005/cloudbox/internal/client/transfer"
	"github.com/dmitrijs2005/cloudbox/internal/logging"

	_ "modernc.org/sqlite"
)

// SessionService is the part of session.Controller the CLI drives.
type SessionService interface {
	Init(ctx context.Context) error
	Login(ctx context.Context, username string, password []byte) error
	Logout(ctx context.Context) error
	Register(ctx context.Context, username string, password []byte) error
	State() session.State
	Token() string
	Username() string
	Claims() (session.Claims, error)
}

// FileService is the part of files.Registry the CLI drives.
type FileService interface {
	Refresh(ctx context.Context) (models.Collection, error)
	Files() models.Collection
	Delete(ctx context.Context, id int64) error
	Download(ctx context.Context, fileName string, s files.Sink, key string) (string, error)
}

// Uploader starts uploads and exposes the running one.
type Uploader interface {
	Upload(ctx context.Context, src transfer.Source, token string) (*transfer.Transfer, error)
	Active() *transfer.Transfer
}

type App struct {
	config   *config.Config
	session  SessionService
	files    FileService
	uploads  Uploader
	openSink func(ctx context.Context, t sink.Target) (files.Sink, error)
	logger   logging.Logger
	db       *sql.DB
	reader   *bufio.Reader
	out      io.Writer

	// fileCount mirrors the registry snapshot for the prompt.
	fileCount atomic.Int64
}

// NewApp opens the local database and wires the API client, session
// controller, file registry and upload coordinator.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	db, err := client.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		logger.Error(ctx, "error initializing database", "path", c.DatabasePath, "error", err)
		return nil, err
	}

	api, err := client.NewHTTPClient(c.APIBaseURL,
		client.WithTimeout(c.RequestTimeout),
		client.WithLogger(logger.With("component", "api")))
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	ctrl := session.NewController(credentials.NewStore(db), api, logger.With("component", "session"))
	reg := files.NewRegistry(api, ctrl, logger.With("component", "files"))
	ctrl.SetRefresher(reg)
	ctrl.Subscribe(func(s session.State) {
		if s == session.Unauthenticated {
			reg.Reset()
		}
	})

	coord := transfer.NewCoordinator(api.URL(client.EndpointUpload),
		transfer.WithDoer(api.HTTP()),
		transfer.WithRateLimit(c.UploadRateLimit),
		transfer.WithCompletionListener(reg),
		transfer.WithSession(ctrl),
		transfer.WithLogger(logger.With("component", "transfer")))

	a := &App{
		config:  c,
		session: ctrl,
		files:   reg,
		uploads: coord,
		logger:  logger,
		db:      db,
		reader:  bufio.NewReader(os.Stdin),
		out:     os.Stdout,
	}
	a.openSink = a.defaultSink
	reg.Subscribe(a.trackFiles)
	return a, nil
}

func (a *App) defaultSink(ctx context.Context, t sink.Target) (files.Sink, error) {
	return sink.Open(ctx, t, sink.S3Config{
		Region:       a.config.S3Region,
		AccessKey:    a.config.S3AccessKey,
		SecretKey:    a.config.S3SecretKey,
		BaseEndpoint: a.config.S3BaseEndpoint,
	}, a.logger.With("component", "sink"))
}

// Close releases the local database.
func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

func (a *App) isLoggedIn() bool {
	return a.session.State() == session.Authenticated
}

func (a *App) trackFiles(list models.Collection) {
	a.fileCount.Store(int64(len(list)))
}

func (a *App) getStatus() string {
	if !a.isLoggedIn() {
		return "(not logged in)"
	}
	n := a.fileCount.Load()
	if n == 1 {
		return fmt.Sprintf("(%s, 1 file)", a.session.Username())
	}
	return fmt.Sprintf("(%s, %d files)", a.session.Username(), n)
}

// Run restores a persisted session and serves the REPL until the user
// exits, stdin closes or ctx is cancelled. Ctrl-C cancels a running
// upload; at the prompt it leaves the program.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := a.session.Init(ctx); err != nil {
		a.logger.Error(ctx, "restore session", "error", err)
	}

	go a.watchInterrupts(ctx, cancel)

	fmt.Fprintln(a.out, "Welcome to cloudbox (type 'help' for commands)")
	if a.isLoggedIn() {
		fmt.Fprintf(a.out, "Logged in as %s\n", a.session.Username())
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		runREPL(ctx, a, a.getStatus, a.reader)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		fmt.Fprintln(a.out)
	}
}

func (a *App) watchInterrupts(ctx context.Context, stop context.CancelFunc) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt)
	defer signal.Stop(ch)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ch:
			if t := a.uploads.Active(); t != nil {
				t.Cancel()
				continue
			}
			stop()
			return
		}
	}
}
