package filex

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEnsureDir_CreatesNestedDirectory(t *testing.T) {
	tmp := t.TempDir()
	want := filepath.Join(tmp, "downloads", "nested")

	got, err := EnsureDir(want)
	require.NoError(t, err)
	require.Equal(t, want, got)

	fi, err := os.Stat(want)
	require.NoError(t, err)
	require.True(t, fi.IsDir(), "should create a directory")

	if runtime.GOOS != "windows" {
		require.Equal(t, os.FileMode(0o700), fi.Mode().Perm()&0o700)
	}
}

func TestEnsureDir_Idempotent(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "downloads")

	first, err := EnsureDir(dir)
	require.NoError(t, err)
	second, err := EnsureDir(dir)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestEnsureDir_FailsIfFileWithSameNameExists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "downloads")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o660))

	_, err := EnsureDir(path)
	require.Error(t, err, "should fail when a file exists with the same name")
}

func TestSafeName(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantErr bool
	}{
		{name: "plain", in: "report.pdf"},
		{name: "spaces", in: "my report.pdf"},
		{name: "empty", in: "", wantErr: true},
		{name: "dot dot", in: "..", wantErr: true},
		{name: "traversal", in: "../etc/passwd", wantErr: true},
		{name: "subdir", in: "a/b.txt", wantErr: true},
		{name: "backslash", in: `a\b.txt`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SafeName(tt.in)
			if tt.wantErr {
				require.True(t, errors.Is(err, ErrInvalidName))
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.in, got)
		})
	}
}

func TestWriteAtomic_WritesAndLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()

	path, n, err := WriteAtomic(dir, "hello.txt", strings.NewReader("hello"))
	require.NoError(t, err)
	require.Equal(t, int64(5), n)
	require.Equal(t, filepath.Join(dir, "hello.txt"), path)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "hello", string(b))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk on fire") }

func TestWriteAtomic_ReaderErrorRemovesTemp(t *testing.T) {
	dir := t.TempDir()

	_, _, err := WriteAtomic(dir, "broken.bin", failingReader{})
	require.ErrorContains(t, err, "disk on fire")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestWriteAtomic_RejectsTraversal(t *testing.T) {
	_, _, err := WriteAtomic(t.TempDir(), "../escape", strings.NewReader("x"))
	require.ErrorIs(t, err, ErrInvalidName)
}
