package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsURL(t *testing.T) {
	testCases := []struct {
		path string
		want bool
	}{
		{"http://example.com/a.gmic", true},
		{"HTTPS://example.com/a.gmic", true},
		{"ftp://example.com/a.gmic", false},
		{"/tmp/a.gmic", false},
		{"http", false},
	}
	for _, tc := range testCases {
		t.Run(tc.path, func(t *testing.T) {
			assert.Equal(t, tc.want, IsURL(tc.path))
		})
	}
}

func TestFetch_WritesBodyToTempFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		w.Write([]byte("#@gmic\nfoo : e foo\n"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	f := NewHTTPFetcher(5 * time.Second)
	f.TempDir = dir

	path, err := f.Fetch(context.Background(), srv.URL+"/defs.gmic")
	require.NoError(t, err)
	defer os.Remove(path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "#@gmic\nfoo : e foo\n", string(data))
	assert.Equal(t, dir, filepath.Dir(path))
}

func TestFetch_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	dir := t.TempDir()
	f := NewHTTPFetcher(5 * time.Second)
	f.TempDir = dir

	_, err := f.Fetch(context.Background(), srv.URL+"/missing.gmic")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestFetch_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	f := NewHTTPFetcher(50 * time.Millisecond)
	_, err := f.Fetch(context.Background(), srv.URL)
	require.Error(t, err)
}

func TestFetch_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewHTTPFetcher(time.Second).Fetch(ctx, srv.URL)
	require.ErrorIs(t, err, context.Canceled)
}
