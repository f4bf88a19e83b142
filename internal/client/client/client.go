package client

import (
	"context"
	"io"

	"github.com/dmitrijs2005/cloudbox/internal/client/models"
)

// Endpoints relative to the configured API base URL.
const (
	EndpointRegister = "/auth/register"
	EndpointLogin    = "/auth/login"
	EndpointFiles    = "/files"
	EndpointUpload   = "/files/upload"
)

type Client interface {
	Request(ctx context.Context, endpoint, method string, body any, token string) (any, error)
	Register(ctx context.Context, username string, password []byte) error
	Login(ctx context.Context, username string, password []byte) (string, error)
	ListFiles(ctx context.Context, token string) (models.Collection, error)
	DeleteFile(ctx context.Context, id int64, token string) error
	Download(ctx context.Context, fileName, token string) (io.ReadCloser, int64, error)
	URL(endpoint string) string
}
