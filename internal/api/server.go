package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/BlockCoop-Sacco/block-coop-sacco/internal/config"
	"github.com/BlockCoop-Sacco/block-coop-sacco/internal/metrics"
	"github.com/BlockCoop-Sacco/block-coop-sacco/internal/reports"
)

// Server exposes the dashboard aggregates over HTTP.
type Server struct {
	router  *mux.Router
	reports *reports.Service
	metrics *metrics.Service
	cfg     config.Config
	logger  *zap.Logger
}

func NewServer(rep *reports.Service, agg *metrics.Service, cfg config.Config, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		router:  mux.NewRouter(),
		reports: rep,
		metrics: agg,
		cfg:     cfg,
		logger:  logger,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/api/blockchain/stats", s.handleStats).Methods(http.MethodGet)
	s.router.HandleFunc("/api/liquidity", s.handleLiquidity).Methods(http.MethodGet)
	s.router.HandleFunc("/api/reports", s.handleReports).Methods(http.MethodGet)
	s.router.HandleFunc("/api/packages", s.handlePackages).Methods(http.MethodGet)
	s.router.HandleFunc("/api/packages/sales", s.handlePackageSales).Methods(http.MethodGet)
	s.router.HandleFunc("/api/transfers", s.handleTransfers).Methods(http.MethodGet)
	s.router.HandleFunc("/api/gas", s.handleGas).Methods(http.MethodGet)
	s.router.HandleFunc("/api/vesting", s.handleVesting).Methods(http.MethodGet)
}

// Handler returns the full middleware chain.
func (s *Server) Handler() http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
	}).Handler(s.logMiddleware(s.router))
}

// Start serves until the context is canceled, then shuts down
// gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 120 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("shutting down http server")
		_ = server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("http server listening", zap.String("addr", addr))
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Info("http",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("latency", time.Since(start)))
	})
}
