package cli

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/dmitrijs2005/cloudbox/internal/client/config"
	"github.com/dmitrijs2005/cloudbox/internal/client/files"
	"github.com/dmitrijs2005/cloudbox/internal/client/models"
	"github.com/dmitrijs2005/cloudbox/internal/client/session"
	"github.com/dmitrijs2005/cloudbox/internal/logging"
)

type fakeSession struct {
	state    session.State
	user     string
	token    string
	claims   session.Claims
	claimErr error

	loginErr, logoutErr, registerErr error

	gotUser string
	gotPass string
}

func (f *fakeSession) Init(ctx context.Context) error { return nil }

func (f *fakeSession) Login(ctx context.Context, username string, password []byte) error {
	f.gotUser, f.gotPass = username, string(password)
	if f.loginErr != nil {
		return f.loginErr
	}
	f.state, f.user, f.token = session.Authenticated, username, "tok"
	return nil
}

func (f *fakeSession) Logout(ctx context.Context) error {
	if f.logoutErr != nil {
		return f.logoutErr
	}
	f.state, f.user, f.token = session.Unauthenticated, "", ""
	return nil
}

func (f *fakeSession) Register(ctx context.Context, username string, password []byte) error {
	f.gotUser, f.gotPass = username, string(password)
	return f.registerErr
}

func (f *fakeSession) State() session.State            { return f.state }
func (f *fakeSession) Token() string                   { return f.token }
func (f *fakeSession) Username() string                { return f.user }
func (f *fakeSession) Claims() (session.Claims, error) { return f.claims, f.claimErr }

type fakeFiles struct {
	list models.Collection
	err  error

	deleted    []int64
	downloaded []string
}

func (f *fakeFiles) Refresh(ctx context.Context) (models.Collection, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.list, nil
}

func (f *fakeFiles) Files() models.Collection { return f.list }

func (f *fakeFiles) Delete(ctx context.Context, id int64) error {
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeFiles) Download(ctx context.Context, fileName string, s files.Sink, key string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.downloaded = append(f.downloaded, fileName)
	return s.Put(ctx, key, bytes.NewReader([]byte("data")), 4)
}

type memSink struct {
	key  string
	body string
}

func (m *memSink) Put(ctx context.Context, key string, r io.Reader, size int64) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	m.key, m.body = key, string(b)
	return "mem://" + key, nil
}

func newTestApp(s *fakeSession, f *fakeFiles, input string) (*App, *bytes.Buffer) {
	out := &bytes.Buffer{}
	a := &App{
		config:  &config.Config{DownloadDir: "downloads"},
		session: s,
		files:   f,
		logger:  logging.Discard(),
		reader:  bufio.NewReader(bytes.NewBufferString(input)),
		out:     out,
	}
	return a, out
}

// stubPrompts replaces the interactive prompts with fixed answers.
func stubPrompts(t *testing.T, user, pass string) {
	origText, origPass := getSimpleText, getPassword
	getSimpleText = func(r *bufio.Reader, prompt string, w io.Writer) (string, error) { return user, nil }
	getPassword = func(w io.Writer) ([]byte, error) { return []byte(pass), nil }
	t.Cleanup(func() {
		getSimpleText, getPassword = origText, origPass
	})
}
