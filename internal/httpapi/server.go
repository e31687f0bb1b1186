package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kitbuilder587/books-mcp/internal/books"
	"github.com/kitbuilder587/books-mcp/internal/config"
	"github.com/kitbuilder587/books-mcp/internal/metrics"
)

type Server struct {
	cfg      config.ServerConfig
	provider books.Provider
	logger   *zap.Logger
	metrics  *metrics.Metrics
	engine   *gin.Engine
}

func New(cfg config.ServerConfig, provider books.Provider, logger *zap.Logger, m *metrics.Metrics) *Server {
	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger(logger, m))

	s := &Server{
		cfg:      cfg,
		provider: provider,
		logger:   logger,
		metrics:  m,
		engine:   engine,
	}

	engine.GET("/", s.handleRoot)
	engine.GET("/health", s.handleHealth)
	engine.GET("/search", s.handleSearch)
	engine.GET("/search_author", s.handleSearchAuthor)
	engine.GET("/search_author_with_book_name", s.handleAuthorByBook)
	engine.GET("/metrics", gin.WrapH(metrics.Handler()))

	return s
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run блокирует до отмены контекста, затем гасит сервер в пределах ShutdownTimeout.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("http server listening", zap.String("addr", s.cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		s.logger.Info("shutting down http server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
