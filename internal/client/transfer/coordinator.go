package transfer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"github.com/dmitrijs2005/cloudbox/internal/common"
	"github.com/dmitrijs2005/cloudbox/internal/logging"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const maxResponseBody = 64 << 10

// Doer sends an HTTP request. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// CompletionListener is told about every successful upload before its
// outcome is delivered.
type CompletionListener interface {
	UploadCompleted(ctx context.Context)
}

// Session receives failed outcomes with the token the upload was sent with,
// so that a rejected token ends the session. *session.Controller satisfies it.
type Session interface {
	Invalidate(ctx context.Context, token string, err error) bool
}

// Source is the file being uploaded. Size < 0 means unknown.
type Source struct {
	Name   string
	Size   int64
	Reader io.Reader
}

// OpenFile opens path as an upload Source. The caller closes the returned
// closer once the transfer has finished.
func OpenFile(path string) (Source, io.Closer, error) {
	f, err := os.Open(path)
	if err != nil {
		return Source{}, nil, fmt.Errorf("open %s: %w", path, err)
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return Source{}, nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if st.IsDir() {
		f.Close()
		return Source{}, nil, fmt.Errorf("%s is a directory", path)
	}
	return Source{Name: filepath.Base(path), Size: st.Size(), Reader: f}, f, nil
}

type Coordinator struct {
	url      string
	http     Doer
	limiter  *rate.Limiter
	listener CompletionListener
	session  Session
	logger   logging.Logger

	mu     sync.Mutex
	active *Transfer
}

type Option func(*Coordinator)

func WithDoer(d Doer) Option {
	return func(c *Coordinator) { c.http = d }
}

func WithLogger(l logging.Logger) Option {
	return func(c *Coordinator) { c.logger = l }
}

func WithCompletionListener(l CompletionListener) Option {
	return func(c *Coordinator) { c.listener = l }
}

func WithSession(s Session) Option {
	return func(c *Coordinator) { c.session = s }
}

// WithRateLimit caps upload bandwidth in bytes per second. Zero or a
// negative value means unlimited.
func WithRateLimit(bytesPerSec int) Option {
	return func(c *Coordinator) {
		if bytesPerSec <= 0 {
			c.limiter = nil
			return
		}
		burst := bytesPerSec
		if burst > 32<<10 {
			burst = 32 << 10
		}
		c.limiter = rate.NewLimiter(rate.Limit(bytesPerSec), burst)
	}
}

// NewCoordinator returns a coordinator posting to uploadURL, typically
// client.URL(client.EndpointUpload).
func NewCoordinator(uploadURL string, opts ...Option) *Coordinator {
	c := &Coordinator{
		url:    uploadURL,
		http:   &http.Client{},
		logger: logging.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Active returns the running transfer, or nil.
func (c *Coordinator) Active() *Transfer {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// Upload starts sending src with the given bearer token. It returns
// ErrTransferInProgress while another transfer is running. The transfer is
// bound to ctx: cancelling ctx has the same effect as Transfer.Cancel.
func (c *Coordinator) Upload(ctx context.Context, src Source, token string) (*Transfer, error) {
	if src.Reader == nil {
		return nil, errors.New("upload source has no reader")
	}

	c.mu.Lock()
	if c.active != nil {
		c.mu.Unlock()
		return nil, ErrTransferInProgress
	}
	ctx, cancel := context.WithCancel(ctx)
	t := &Transfer{
		ID:       uuid.NewString(),
		FileName: src.Name,
		events:   make(chan Event, 8),
		done:     make(chan struct{}),
		cancel:   cancel,
	}
	c.active = t
	c.mu.Unlock()

	go c.run(ctx, t, src, token)
	return t, nil
}

func (c *Coordinator) run(ctx context.Context, t *Transfer, src Source, token string) {
	log := c.logger.With("transfer_id", t.ID, "file", src.Name)
	defer func() {
		c.mu.Lock()
		if c.active == t {
			c.active = nil
		}
		c.mu.Unlock()
		t.finish()
		t.cancel()
	}()

	req, err := c.newRequest(ctx, t, src, token)
	if err != nil {
		log.Error(ctx, "build upload request", "error", err)
		t.emitOutcome(ctx, Outcome{Status: StatusFailure, Kind: FailureTransport, Err: err})
		return
	}

	log.Info(ctx, "upload started", "size", src.Size)
	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			log.Info(ctx, "upload cancelled")
			return
		}
		log.Warn(ctx, "upload transport failure", "error", err)
		t.emitOutcome(ctx, Outcome{Status: StatusFailure, Kind: FailureTransport, Err: err})
		return
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil && ctx.Err() != nil {
		log.Info(ctx, "upload cancelled")
		return
	}

	if resp.StatusCode != http.StatusOK {
		log.Warn(ctx, "upload rejected", "status", resp.StatusCode)
		out := Outcome{
			Status:     StatusFailure,
			Kind:       FailureStatus,
			StatusCode: resp.StatusCode,
			Body:       string(body),
		}
		if c.session != nil && c.session.Invalidate(ctx, token, out.AsError()) {
			log.Warn(ctx, "upload token rejected, session ended")
		}
		t.emitOutcome(ctx, out)
		return
	}

	log.Info(ctx, "upload finished", "status", resp.StatusCode)
	if c.listener != nil && ctx.Err() == nil {
		c.listener.UploadCompleted(ctx)
	}
	t.emitOutcome(ctx, Outcome{Status: StatusSuccess, StatusCode: resp.StatusCode, Body: string(body)})
}

// newRequest builds the multipart body as head + file + tail so that its
// length is known whenever the file size is.
func (c *Coordinator) newRequest(ctx context.Context, t *Transfer, src Source, token string) (*http.Request, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if _, err := mw.CreateFormFile(common.UploadFieldName, src.Name); err != nil {
		return nil, fmt.Errorf("multipart header: %w", err)
	}
	head := bytes.Clone(buf.Bytes())
	buf.Reset()
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("multipart trailer: %w", err)
	}
	tail := bytes.Clone(buf.Bytes())

	total := int64(-1)
	if src.Size >= 0 {
		total = int64(len(head)) + src.Size + int64(len(tail))
	}

	var body io.Reader = io.MultiReader(bytes.NewReader(head), src.Reader, bytes.NewReader(tail))
	if c.limiter != nil {
		body = &limitedReader{ctx: ctx, r: body, limiter: c.limiter}
	}
	body = &progressReader{
		r: body,
		tracker: &tracker{
			total:  total,
			onTick: func(pct int) { t.emitProgress(ctx, pct) },
		},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, io.NopCloser(body))
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.ContentLength = total
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerValue(token))
	}
	return req, nil
}
