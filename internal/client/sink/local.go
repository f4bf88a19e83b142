package sink

import (
	"context"
	"io"

	"github.com/dmitrijs2005/cloudbox/internal/filex"
)

// LocalSink writes files into Dir, creating it on demand. Files appear
// atomically: a failed download leaves nothing behind.
type LocalSink struct {
	Dir string
}

func (s LocalSink) Put(ctx context.Context, key string, r io.Reader, size int64) (string, error) {
	dir, err := filex.EnsureDir(s.Dir)
	if err != nil {
		return "", err
	}

	loc, _, err := filex.WriteAtomic(dir, key, &sizedReader{r: ctxReader{ctx: ctx, r: r}, size: size})
	if err != nil {
		return "", err
	}
	return loc, nil
}

// ctxReader stops copying once ctx is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
