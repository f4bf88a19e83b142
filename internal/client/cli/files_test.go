package cli

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/cloudbox/internal/client/files"
	"github.com/dmitrijs2005/cloudbox/internal/client/models"
	"github.com/dmitrijs2005/cloudbox/internal/client/session"
	"github.com/dmitrijs2005/cloudbox/internal/client/sink"
	"github.com/dmitrijs2005/cloudbox/internal/client/transfer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loggedIn() *fakeSession {
	return &fakeSession{state: session.Authenticated, user: "alice", token: "tok"}
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{-1, "unknown size"},
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{5 << 20, "5.0 MB"},
		{3 << 30, "3.0 GB"},
		{2 << 40, "2.0 TB"},
		{4096 << 40, "4096.0 TB"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatSize(tt.n))
	}
}

func TestApp_List(t *testing.T) {
	ts := models.Timestamp{Time: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)}
	f := &fakeFiles{list: models.Collection{
		{ID: 7, FileName: "report.pdf", FileSize: 1536, UploadTimestamp: ts},
		{ID: 9, FileName: "notes.txt", FileSize: 12},
	}}
	a, out := newTestApp(loggedIn(), f, "")

	require.NoError(t, a.List(context.Background()))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, []string{"ID", "NAME", "SIZE", "UPLOADED"}, strings.Fields(lines[0]))
	assert.Contains(t, lines[1], "report.pdf")
	assert.Contains(t, lines[1], "1.5 KB")
	assert.Contains(t, lines[1], ts.Local().Format(time.DateTime))
	assert.Contains(t, lines[2], "notes.txt")
	assert.True(t, strings.HasSuffix(lines[2], "-"))
	assert.Equal(t, "2 file(s), 1.5 KB total", lines[3])
}

func TestApp_ListEmptyAndError(t *testing.T) {
	a, out := newTestApp(loggedIn(), &fakeFiles{}, "")
	require.NoError(t, a.List(context.Background()))
	assert.Equal(t, "No files\n", out.String())

	boom := errors.New("down")
	a, _ = newTestApp(loggedIn(), &fakeFiles{err: boom}, "")
	assert.ErrorIs(t, a.List(context.Background()), boom)
}

func TestApp_RequiresLogin(t *testing.T) {
	a, _ := newTestApp(&fakeSession{}, &fakeFiles{}, "")
	ctx := context.Background()

	assert.ErrorIs(t, a.Upload(ctx, "x"), session.ErrNotAuthenticated)
	assert.ErrorIs(t, a.Download(ctx, "x", ""), session.ErrNotAuthenticated)
	assert.ErrorIs(t, a.Delete(ctx, "1"), session.ErrNotAuthenticated)
}

func TestApp_Delete(t *testing.T) {
	f := &fakeFiles{list: models.Collection{{ID: 3, FileName: "old.log", FileSize: 1}}}
	a, out := newTestApp(loggedIn(), f, "y\n")

	require.NoError(t, a.Delete(context.Background(), "3"))
	assert.Equal(t, []int64{3}, f.deleted)
	assert.Contains(t, out.String(), "Delete old.log (id 3)? [y/N]")
	assert.Contains(t, out.String(), "Deleted old.log (id 3)")
}

func TestApp_DeleteDeclined(t *testing.T) {
	f := &fakeFiles{}
	a, out := newTestApp(loggedIn(), f, "n\n")

	require.NoError(t, a.Delete(context.Background(), "4"))
	assert.Empty(t, f.deleted)
	assert.Contains(t, out.String(), "Delete file 4?")
	assert.Contains(t, out.String(), "Cancelled")
}

func TestApp_DeleteConfirmSeam(t *testing.T) {
	orig := confirm
	var asked string
	confirm = func(r *bufio.Reader, prompt string, w io.Writer) (bool, error) {
		asked = prompt
		return true, nil
	}
	t.Cleanup(func() { confirm = orig })

	f := &fakeFiles{}
	a, _ := newTestApp(loggedIn(), f, "")
	require.NoError(t, a.Delete(context.Background(), "11"))
	assert.Equal(t, "Delete file 11?", asked)
	assert.Equal(t, []int64{11}, f.deleted)
}

func TestApp_DeleteErrors(t *testing.T) {
	a, _ := newTestApp(loggedIn(), &fakeFiles{}, "")
	assert.Error(t, a.Delete(context.Background(), "abc"))

	boom := errors.New("gone")
	a, _ = newTestApp(loggedIn(), &fakeFiles{err: boom}, "yes\n")
	assert.ErrorIs(t, a.Delete(context.Background(), "1"), boom)

	a, _ = newTestApp(loggedIn(), &fakeFiles{}, "")
	assert.ErrorIs(t, a.Delete(context.Background(), "1"), io.EOF)
}

func TestApp_Download(t *testing.T) {
	var gotTarget sink.Target
	mem := &memSink{}
	f := &fakeFiles{}
	a, out := newTestApp(loggedIn(), f, "")
	a.openSink = func(ctx context.Context, t sink.Target) (files.Sink, error) {
		gotTarget = t
		return mem, nil
	}

	require.NoError(t, a.Download(context.Background(), "a.txt", "s3://backups/alice"))
	assert.Equal(t, sink.Target{Scheme: sink.SchemeS3, Bucket: "backups", Dir: "alice"}, gotTarget)
	assert.Equal(t, "alice/a.txt", mem.key)
	assert.Equal(t, "data", mem.body)
	assert.Equal(t, []string{"a.txt"}, f.downloaded)
	assert.Contains(t, out.String(), "Saved a.txt to mem://alice/a.txt")

	require.NoError(t, a.Download(context.Background(), "b.txt", ""))
	assert.Equal(t, sink.Target{Scheme: sink.SchemeFile, Dir: "downloads"}, gotTarget)
	assert.Equal(t, "b.txt", mem.key)
}

func TestApp_DownloadAnnouncesKnownFile(t *testing.T) {
	f := &fakeFiles{list: models.Collection{{ID: 5, FileName: "report.pdf", FileSize: 2048}}}
	a, out := newTestApp(loggedIn(), f, "")
	a.openSink = func(ctx context.Context, t sink.Target) (files.Sink, error) { return &memSink{}, nil }

	require.NoError(t, a.Download(context.Background(), "report.pdf", ""))
	assert.Contains(t, out.String(), "Downloading report.pdf (2.0 KB)")

	out.Reset()
	require.NoError(t, a.Download(context.Background(), "unlisted.bin", ""))
	assert.NotContains(t, out.String(), "Downloading")
	assert.Contains(t, out.String(), "Saved unlisted.bin to mem://unlisted.bin")
}

func TestApp_DownloadToLocalDir(t *testing.T) {
	dir := t.TempDir()
	a, _ := newTestApp(loggedIn(), &fakeFiles{}, "")
	a.openSink = a.defaultSink

	require.NoError(t, a.Download(context.Background(), "a.txt", dir))
	b, err := os.ReadFile(filepath.Join(dir, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "data", string(b))
}

func TestApp_DownloadSinkError(t *testing.T) {
	boom := errors.New("no sink")
	a, _ := newTestApp(loggedIn(), &fakeFiles{}, "")
	a.openSink = func(ctx context.Context, t sink.Target) (files.Sink, error) { return nil, boom }

	assert.ErrorIs(t, a.Download(context.Background(), "a.txt", ""), boom)
}

type countingListener struct{ calls int }

func (c *countingListener) UploadCompleted(ctx context.Context) { c.calls++ }

func writeUploadFile(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "upload.txt")
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func TestApp_Upload(t *testing.T) {
	var gotAuth, gotName, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		raw, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewReader(raw))
		f, hdr, err := r.FormFile("file")
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer f.Close()
		b, _ := io.ReadAll(f)
		gotName, gotBody = hdr.Filename, string(b)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	l := &countingListener{}
	a, out := newTestApp(loggedIn(), &fakeFiles{list: models.Collection{{ID: 1, FileName: "upload.txt", FileSize: 11}}}, "")
	a.uploads = transfer.NewCoordinator(srv.URL+"/upload", transfer.WithCompletionListener(l))

	require.NoError(t, a.Upload(context.Background(), writeUploadFile(t, "hello world")))
	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Equal(t, "upload.txt", gotName)
	assert.Equal(t, "hello world", gotBody)
	assert.Equal(t, 1, l.calls)
	assert.Contains(t, out.String(), "Uploading upload.txt (11 B)")
	assert.Contains(t, out.String(), "100%")
	assert.Contains(t, out.String(), "Upload complete")
	assert.Contains(t, out.String(), "1 file(s)")
	assert.Nil(t, a.uploads.Active())
}

func TestApp_UploadRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, "disk full")
	}))
	defer srv.Close()

	a, out := newTestApp(loggedIn(), &fakeFiles{}, "")
	a.uploads = transfer.NewCoordinator(srv.URL + "/upload")

	err := a.Upload(context.Background(), writeUploadFile(t, "x"))
	var trErr *transfer.Error
	require.ErrorAs(t, err, &trErr)
	assert.Equal(t, 500, trErr.Outcome.StatusCode)
	assert.Equal(t, "upload failed: disk full", userMessage(err))
	assert.NotContains(t, out.String(), "Upload complete")
}

func TestApp_UploadCancelled(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	a, out := newTestApp(loggedIn(), &fakeFiles{}, "")
	coord := transfer.NewCoordinator(srv.URL + "/upload")
	a.uploads = coord

	go func() {
		for coord.Active() == nil {
			time.Sleep(time.Millisecond)
		}
		coord.Active().Cancel()
	}()

	require.NoError(t, a.Upload(context.Background(), writeUploadFile(t, "payload")))
	assert.Contains(t, out.String(), "Upload cancelled")
}

func TestApp_UploadMissingFile(t *testing.T) {
	a, _ := newTestApp(loggedIn(), &fakeFiles{}, "")
	a.uploads = transfer.NewCoordinator("http://127.0.0.1:0/upload")
	assert.Error(t, a.Upload(context.Background(), filepath.Join(t.TempDir(), "nope")))
}
