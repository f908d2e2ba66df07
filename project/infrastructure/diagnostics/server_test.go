package diagnostics

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"secret-reactor/project/domain"
	"secret-reactor/project/service"
)

type fixedStats map[service.IdentityKind]service.CacheStats

func (f fixedStats) Stats(kind service.IdentityKind) service.CacheStats {
	return f[kind]
}

func newTestServer() *Server {
	stats := fixedStats{
		domain.KindUser:    {Kind: domain.KindUser, Hits: 3, Misses: 2, Lookups: 2, CurrSize: 2},
		domain.KindChannel: {Kind: domain.KindChannel, Hits: 1, Misses: 1, Lookups: 1, Failures: 1, MaxSize: 128},
	}
	return New("127.0.0.1:0", stats, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestCacheInfoEndpoint(t *testing.T) {
	srv := httptest.NewServer(newTestServer().Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/plain; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Equal(t,
		"CacheInfo(hits=3, misses=2, maxsize=None, currsize=2)\n"+
			"CacheInfo(hits=1, misses=1, maxsize=128, currsize=0)\n",
		string(body))
}

func TestCacheInfoRejectsPost(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestServer().Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestServer().Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `identity_cache_hits_total{kind="user"} 3`)
	assert.Contains(t, body, `identity_lookup_failures_total{kind="channel"} 1`)
	assert.Contains(t, body, `identity_cache_entries{kind="user"} 2`)
}
