// Package sink stores downloaded files. A download target is either a
// local path or an s3://bucket/prefix URL pointing at an S3-compatible
// bucket (AWS or MinIO).
package sink

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Sink stores the contents of r under key. size is -1 when unknown.
// It returns a human-readable location of the stored object.
type Sink interface {
	Put(ctx context.Context, key string, r io.Reader, size int64) (string, error)
}

const (
	SchemeFile = "file"
	SchemeS3   = "s3"
)

// Target is a parsed download destination.
type Target struct {
	Scheme string
	// Bucket is set for s3 targets.
	Bucket string
	// Dir is the local directory or the s3 key prefix.
	Dir string
	// Name overrides the stored file name (local targets only).
	Name string
}

// ParseTarget parses dest. An empty dest selects defaultDir. A local path
// that is an existing directory, or ends in a separator, is used as the
// directory; any other path names the file itself.
func ParseTarget(dest, defaultDir string) (Target, error) {
	if dest == "" {
		return Target{Scheme: SchemeFile, Dir: defaultDir}, nil
	}

	if strings.HasPrefix(dest, SchemeS3+"://") {
		u, err := url.Parse(dest)
		if err != nil {
			return Target{}, fmt.Errorf("parse %s: %w", dest, err)
		}
		if u.Host == "" {
			return Target{}, fmt.Errorf("%s: missing bucket", dest)
		}
		return Target{Scheme: SchemeS3, Bucket: u.Host, Dir: strings.Trim(u.Path, "/")}, nil
	}

	if strings.HasSuffix(dest, "/") || strings.HasSuffix(dest, string(filepath.Separator)) {
		return Target{Scheme: SchemeFile, Dir: dest}, nil
	}
	if st, err := os.Stat(dest); err == nil && st.IsDir() {
		return Target{Scheme: SchemeFile, Dir: dest}, nil
	}
	return Target{Scheme: SchemeFile, Dir: filepath.Dir(dest), Name: filepath.Base(dest)}, nil
}

// Key returns the key to store fileName under.
func (t Target) Key(fileName string) string {
	switch {
	case t.Scheme == SchemeS3:
		return path.Join(t.Dir, fileName)
	case t.Name != "":
		return t.Name
	default:
		return fileName
	}
}

func (t Target) String() string {
	if t.Scheme == SchemeS3 {
		return fmt.Sprintf("s3://%s/%s", t.Bucket, t.Dir)
	}
	return t.Dir
}

// sizedReader fails with io.ErrUnexpectedEOF when the stream ends before
// the announced size.
type sizedReader struct {
	r    io.Reader
	size int64
	n    int64
}

func (s *sizedReader) Read(p []byte) (int, error) {
	n, err := s.r.Read(p)
	s.n += int64(n)
	if err == io.EOF && s.size >= 0 && s.n != s.size {
		return n, fmt.Errorf("got %d of %d bytes: %w", s.n, s.size, io.ErrUnexpectedEOF)
	}
	return n, err
}
