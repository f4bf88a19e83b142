// Package session owns the client's authentication state.
//
// The Controller is a two-state machine (Unauthenticated, Authenticated).
// It is the only component that reads or writes the token: the file
// registry and the upload path ask it for the current token and report
// authorization failures back through Invalidate.
//
// Every transition keeps the durable copy and the in-memory copy in step:
// a new token is persisted before it is published, and a discarded token is
// removed from storage before it is forgotten.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/dmitrijs2005/cloudbox/internal/client/client"
	"github.com/dmitrijs2005/cloudbox/internal/client/credentials"
	"github.com/dmitrijs2005/cloudbox/internal/client/models"
	"github.com/dmitrijs2005/cloudbox/internal/logging"
)

var ErrNotAuthenticated = errors.New("not logged in")

type State int

const (
	Unauthenticated State = iota
	Authenticated
)

func (s State) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "unauthenticated"
}

// API is the subset of client.Client used for authentication.
type API interface {
	Register(ctx context.Context, username string, password []byte) error
	Login(ctx context.Context, username string, password []byte) (string, error)
}

// Refresher reloads the file list after a session starts.
type Refresher interface {
	Refresh(ctx context.Context) (models.Collection, error)
}

type Controller struct {
	store  credentials.TokenStore
	api    API
	logger logging.Logger

	mu          sync.RWMutex
	token       string
	username    string
	refresher   Refresher
	subscribers []func(State)
}

func NewController(store credentials.TokenStore, api API, logger logging.Logger) *Controller {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Controller{store: store, api: api, logger: logger}
}

// SetRefresher attaches the file registry. It is set after construction
// because the registry itself depends on the controller.
func (c *Controller) SetRefresher(r Refresher) {
	c.mu.Lock()
	c.refresher = r
	c.mu.Unlock()
}

// Subscribe registers fn to be called after every state transition.
func (c *Controller) Subscribe(fn func(State)) {
	c.mu.Lock()
	c.subscribers = append(c.subscribers, fn)
	c.mu.Unlock()
}

func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.token == "" {
		return Unauthenticated
	}
	return Authenticated
}

// Token returns the current bearer token, or "" when logged out.
func (c *Controller) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Controller) Username() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.username
}

// Claims decodes the current token for display.
func (c *Controller) Claims() (Claims, error) {
	tok := c.Token()
	if tok == "" {
		return Claims{}, ErrNotAuthenticated
	}
	return ParseClaims(tok)
}

// Init picks the initial state from the credential store. A persisted token
// starts an authenticated session and triggers a refresh.
func (c *Controller) Init(ctx context.Context) error {
	tok, ok, err := c.store.Get(ctx)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	if !ok {
		c.logger.Debug(ctx, "no stored session")
		return nil
	}

	name, err := c.store.Username(ctx)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}

	c.publish(tok, name)
	c.logger.Info(ctx, "session restored", "username", name)
	c.refresh(ctx)
	return nil
}

// Login exchanges credentials for a token, persists it and then publishes
// it. A failed login leaves the current state untouched.
func (c *Controller) Login(ctx context.Context, username string, password []byte) error {
	if err := validate(username, password); err != nil {
		return err
	}
	username = strings.TrimSpace(username)

	tok, err := c.api.Login(ctx, username, password)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}

	if err := c.store.Set(ctx, tok, username); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	c.publish(tok, username)
	c.logger.Info(ctx, "logged in", "username", username)

	c.refresh(ctx)
	return nil
}

// Logout clears the store and then the in-memory token.
func (c *Controller) Logout(ctx context.Context) error {
	if err := c.store.Clear(ctx); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	c.publish("", "")
	c.logger.Info(ctx, "logged out")
	return nil
}

// Invalidate forces a logout when err is an authorization failure for token,
// the credential the failing call was made with, and reports whether the
// session is now logged out. Other errors leave the session alone, and so
// does a rejection of a token that has since been replaced.
//
// The in-memory token is dropped even if the store cannot be cleared: the
// server has already rejected it.
func (c *Controller) Invalidate(ctx context.Context, token string, err error) bool {
	if !client.IsAuthError(err) {
		return false
	}

	current := c.Token()
	if current == "" {
		return true
	}
	if token != current {
		c.logger.Debug(ctx, "ignoring rejection of a replaced token", "error", err)
		return false
	}

	if cerr := c.store.Clear(ctx); cerr != nil {
		c.logger.Error(ctx, "clear rejected session", "error", cerr)
	}
	c.publish("", "")
	c.logger.Warn(ctx, "session invalidated by server", "error", err)
	return true
}

// Register creates an account. It never changes the session state.
func (c *Controller) Register(ctx context.Context, username string, password []byte) error {
	if err := validate(username, password); err != nil {
		return err
	}

	if err := c.api.Register(ctx, strings.TrimSpace(username), password); err != nil {
		return fmt.Errorf("register: %w", err)
	}
	c.logger.Info(ctx, "registered", "username", username)
	return nil
}

func validate(username string, password []byte) error {
	if strings.TrimSpace(username) == "" {
		return fmt.Errorf("%w: username is required", client.ErrValidation)
	}
	if len(password) == 0 {
		return fmt.Errorf("%w: password is required", client.ErrValidation)
	}
	return nil
}

func (c *Controller) publish(token, username string) {
	c.mu.Lock()
	before := c.token != ""
	c.token = token
	c.username = username
	after := c.token != ""
	subs := append([]func(State){}, c.subscribers...)
	c.mu.Unlock()

	if before == after {
		return
	}
	st := Unauthenticated
	if after {
		st = Authenticated
	}
	for _, fn := range subs {
		fn(st)
	}
}

// refresh loads the file list for a new session. Authorization failures
// end the session through the registry's Invalidate call.
func (c *Controller) refresh(ctx context.Context) {
	c.mu.RLock()
	r := c.refresher
	c.mu.RUnlock()
	if r == nil {
		return
	}
	if _, err := r.Refresh(ctx); err != nil {
		c.logger.Warn(ctx, "initial refresh failed", "error", err)
	}
}
