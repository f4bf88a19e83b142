// Package credentials keeps the session token across restarts of the client.
//
// The Store is a thin layer over the metadata key/value table: the token
// lives under common.AuthTokenKey and the name of the user who obtained it
// under common.UsernameKey. Writes are synchronous SQL statements, so a Get
// issued after Set or Clear returns always observes the new value. Expiry is
// not tracked locally; the server reports it with an authorization failure.
package credentials

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/cloudbox/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/cloudbox/internal/common"
	"github.com/dmitrijs2005/cloudbox/internal/dbx"
)

var ErrEmptyToken = errors.New("empty token")

// TokenStore is the contract the session controller depends on.
type TokenStore interface {
	Get(ctx context.Context) (token string, ok bool, err error)
	Set(ctx context.Context, token, username string) error
	Clear(ctx context.Context) error
	Username(ctx context.Context) (string, error)
}

type Store struct {
	db   *sql.DB
	repo metadata.Repository
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db, repo: metadata.NewSQLiteRepository(db)}
}

// Get returns the persisted token. ok is false when no token is stored.
func (s *Store) Get(ctx context.Context) (string, bool, error) {
	v, err := s.repo.Get(ctx, common.AuthTokenKey)
	if err != nil {
		return "", false, fmt.Errorf("read token: %w", err)
	}
	if len(v) == 0 {
		return "", false, nil
	}
	return string(v), true, nil
}

// Set replaces the stored token and username in one transaction.
func (s *Store) Set(ctx context.Context, token, username string) error {
	if token == "" {
		return ErrEmptyToken
	}

	return dbx.WithTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.Set(ctx, common.AuthTokenKey, []byte(token)); err != nil {
			return fmt.Errorf("store token: %w", err)
		}
		if err := repo.Set(ctx, common.UsernameKey, []byte(username)); err != nil {
			return fmt.Errorf("store username: %w", err)
		}
		return nil
	})
}

// Clear removes the token and username. Clearing an empty store is a no-op.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.repo.Delete(ctx, common.AuthTokenKey, common.UsernameKey); err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	return nil
}

func (s *Store) Username(ctx context.Context) (string, error) {
	v, err := s.repo.Get(ctx, common.UsernameKey)
	if err != nil {
		return "", fmt.Errorf("read username: %w", err)
	}
	return string(v), nil
}
