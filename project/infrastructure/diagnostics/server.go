package diagnostics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"secret-reactor/project/domain"
	"secret-reactor/project/service"
)

// StatsSource はキャッシュ統計を提供します
type StatsSource interface {
	Stats(kind service.IdentityKind) service.CacheStats
}

// Server はキャッシュ統計を HTTP で公開します
type Server struct {
	srv    *http.Server
	stats  StatsSource
	logger *slog.Logger
}

// New は診断サーバーを作成します
func New(addr string, stats StatsSource, logger *slog.Logger) *Server {
	s := &Server{stats: stats, logger: logger}

	router := mux.NewRouter()
	router.HandleFunc("/", s.handleCacheInfo).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.HandlerFor(newRegistry(stats), promhttp.HandlerOpts{})).Methods(http.MethodGet)

	s.srv = &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler はルーティング済みのハンドラを返します
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

// Start はサーバーを起動します。Shutdown されるまで戻りません
func (s *Server) Start() error {
	s.logger.Info("診断サーバー起動", "addr", s.srv.Addr)
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("diagnostics: サーバーエラー: %w", err)
	}
	return nil
}

// Shutdown はサーバーを停止します
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// handleCacheInfo はユーザー、チャンネルの順に CacheInfo を返します
func (s *Server) handleCacheInfo(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, "%s\n%s\n", s.stats.Stats(domain.KindUser), s.stats.Stats(domain.KindChannel))
}
