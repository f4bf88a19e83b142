// Package files holds the authoritative list of the user's files.
//
// The Registry never patches its snapshot: every mutation (upload, delete)
// is followed by a wholesale re-fetch from the server. Concurrent refreshes
// are allowed and the last one to finish wins.
package files

import (
	"context"
	"fmt"
	"io"
	"slices"
	"sync"

	"github.com/dmitrijs2005/cloudbox/internal/client/models"
	"github.com/dmitrijs2005/cloudbox/internal/client/session"
	"github.com/dmitrijs2005/cloudbox/internal/logging"
)

// API is the subset of client.Client the registry calls.
type API interface {
	ListFiles(ctx context.Context, token string) (models.Collection, error)
	DeleteFile(ctx context.Context, id int64, token string) error
	Download(ctx context.Context, fileName, token string) (io.ReadCloser, int64, error)
}

// Session supplies the token and receives authorization failures together
// with the token the failing call used.
type Session interface {
	Token() string
	Invalidate(ctx context.Context, token string, err error) bool
}

// Sink stores a downloaded file under key and returns where it ended up.
type Sink interface {
	Put(ctx context.Context, key string, r io.Reader, size int64) (string, error)
}

type Registry struct {
	api     API
	session Session
	logger  logging.Logger

	mu          sync.RWMutex
	files       models.Collection
	subscribers []func(models.Collection)
}

func NewRegistry(api API, s Session, logger logging.Logger) *Registry {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Registry{api: api, session: s, logger: logger}
}

// Subscribe registers fn to receive every new snapshot.
func (r *Registry) Subscribe(fn func(models.Collection)) {
	r.mu.Lock()
	r.subscribers = append(r.subscribers, fn)
	r.mu.Unlock()
}

// Files returns a copy of the last fetched snapshot.
func (r *Registry) Files() models.Collection {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.files)
}

// Reset drops the snapshot, e.g. after logout.
func (r *Registry) Reset() {
	r.replace(nil)
}

// Refresh re-fetches the whole collection and replaces the snapshot.
func (r *Registry) Refresh(ctx context.Context) (models.Collection, error) {
	tok := r.session.Token()
	if tok == "" {
		return nil, session.ErrNotAuthenticated
	}

	list, err := r.api.ListFiles(ctx, tok)
	if err != nil {
		r.fail(ctx, tok, err)
		return nil, fmt.Errorf("list files: %w", err)
	}

	r.replace(list)
	r.logger.Debug(ctx, "file list refreshed", "count", len(list))
	return slices.Clone(list), nil
}

// Delete removes a file on the server and then refreshes once. The caller
// is responsible for asking the user first.
func (r *Registry) Delete(ctx context.Context, id int64) error {
	tok := r.session.Token()
	if tok == "" {
		return session.ErrNotAuthenticated
	}

	if err := r.api.DeleteFile(ctx, id, tok); err != nil {
		r.fail(ctx, tok, err)
		return fmt.Errorf("delete file %d: %w", id, err)
	}
	r.logger.Info(ctx, "file deleted", "id", id)

	// The file is gone either way; a stale list is not a delete failure.
	if _, err := r.Refresh(ctx); err != nil {
		r.logger.Warn(ctx, "refresh after delete failed", "id", id, "error", err)
	}
	return nil
}

// UploadCompleted refreshes the list after a successful upload.
func (r *Registry) UploadCompleted(ctx context.Context) {
	if _, err := r.Refresh(ctx); err != nil {
		r.logger.Warn(ctx, "refresh after upload failed", "error", err)
	}
}

// Download streams fileName into sink under key (fileName when empty) and
// returns the sink location.
func (r *Registry) Download(ctx context.Context, fileName string, sink Sink, key string) (string, error) {
	tok := r.session.Token()
	if tok == "" {
		return "", session.ErrNotAuthenticated
	}
	if key == "" {
		key = fileName
	}

	rc, size, err := r.api.Download(ctx, fileName, tok)
	if err != nil {
		r.fail(ctx, tok, err)
		return "", fmt.Errorf("download %s: %w", fileName, err)
	}
	defer rc.Close()

	loc, err := sink.Put(ctx, key, rc, size)
	if err != nil {
		return "", fmt.Errorf("store %s: %w", fileName, err)
	}
	r.logger.Info(ctx, "file downloaded", "file", fileName, "location", loc)
	return loc, nil
}

// fail hands err to the session; a forced logout also drops the snapshot.
func (r *Registry) fail(ctx context.Context, tok string, err error) {
	if r.session.Invalidate(ctx, tok, err) {
		r.replace(nil)
	}
}

func (r *Registry) replace(c models.Collection) {
	r.mu.Lock()
	r.files = slices.Clone(c)
	subs := slices.Clone(r.subscribers)
	r.mu.Unlock()

	for _, fn := range subs {
		fn(slices.Clone(c))
	}
}
