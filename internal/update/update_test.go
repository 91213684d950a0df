package update

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompareVersions(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{a: "1.0.0", b: "1.0.1", want: -1},
		{a: "1.0.1", b: "1.0.0", want: 1},
		{a: "1.0.0", b: "1.0.0", want: 0},
		{a: "v1.0.0", b: "1.0.1", want: -1},
		{a: "1.0.0", b: "v1.0.1", want: -1},
		{a: "1.0.0", b: "2.0.0", want: -1},
		{a: "2.0.0", b: "1.9.9", want: 1},
		{a: "dev", b: "1.0.0", want: 1},
		{a: "1.0.0", b: "dev", want: -1},
		{a: "1.0.0-beta", b: "1.0.1", want: -1},
		{a: "1.0.0-beta", b: "1.0.0", want: 0},
		{a: "0.10.0", b: "0.9.0", want: 1},
		{a: "1.2", b: "1.2.0", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.a+" vs "+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, compareVersions(tt.a, tt.b))
		})
	}
}

func TestCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg")
	dir, err := cacheDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/tmp/xdg", "pgquery"), dir)
}

func newTestChecker(t *testing.T, status int, body string) (*Checker, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.True(t, strings.HasPrefix(r.UserAgent(), "pgquery/"))
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	return &Checker{
		URL:      srv.URL,
		CacheDir: t.TempDir(),
		Current:  "0.3.0",
		Client:   srv.Client(),
	}, &hits
}

func TestChecker_Check(t *testing.T) {
	c, _ := newTestChecker(t, http.StatusOK, `{"tag_name":"v0.4.1","html_url":"https://example.com/r/v0.4.1"}`)

	info, err := c.Check(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "0.4.1", info.LatestVersion)
	assert.Equal(t, "0.3.0", info.CurrentVersion)
	assert.Equal(t, "https://example.com/r/v0.4.1", info.ReleaseURL)
	assert.True(t, info.UpdateAvailable)
}

func TestChecker_CheckStatus(t *testing.T) {
	c, _ := newTestChecker(t, http.StatusForbidden, `{}`)

	_, err := c.Check(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 403")
}

func TestChecker_CheckWithCache(t *testing.T) {
	c, hits := newTestChecker(t, http.StatusOK, `{"tag_name":"v0.3.0"}`)
	ctx := context.Background()

	info, err := c.CheckWithCache(ctx)
	require.NoError(t, err)
	assert.False(t, info.UpdateAvailable)
	assert.FileExists(t, filepath.Join(c.CacheDir, cacheFile))

	// A fresh cache answers without hitting the server and re-evaluates
	// against the running version.
	c.Current = "0.2.0"
	info, err = c.CheckWithCache(ctx)
	require.NoError(t, err)
	assert.True(t, info.UpdateAvailable)
	assert.Equal(t, int32(1), hits.Load())

	stale := *info
	stale.CheckedAt = time.Now().Add(-2 * cacheTTL)
	require.NoError(t, c.saveCache(&stale))

	_, err = c.CheckWithCache(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(2), hits.Load())
}

func TestChecker_CorruptCache(t *testing.T) {
	c, hits := newTestChecker(t, http.StatusOK, `{"tag_name":"v1.0.0"}`)
	require.NoError(t, os.WriteFile(filepath.Join(c.CacheDir, cacheFile), []byte("{"), 0o644))

	info, err := c.CheckWithCache(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", info.LatestVersion)
	assert.Equal(t, int32(1), hits.Load())
}
