package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kitbuilder587/books-mcp/internal/books"
	"github.com/kitbuilder587/books-mcp/internal/metrics"
	"github.com/kitbuilder587/books-mcp/internal/version"
)

const (
	toolSearchBooks  = "search_books"
	toolSearchAuthor = "search_author"
	toolAuthorByBook = "search_author_with_book_name"

	searchBooksDescription = "Search for books in the OpenLibrary catalog. " +
		"Returns matching books with title, author, edition count, first publication year and language. " +
		"Examples: search_books(\"python programming\"), search_books(\"lord of the rings tolkien\")."

	searchAuthorDescription = "Search for authors in the OpenLibrary catalog by name. " +
		"Returns matching authors with their OpenLibrary key, birth date, top work and work count."

	authorByBookDescription = "Find the author of a book by the book's title. " +
		"Searches for the book, takes the best match and returns its author together with the author's works."
)

type queryArgs struct {
	Query string `json:"query" jsonschema:"search query, e.g. a book title, author name or keywords"`
}

type Server struct {
	provider books.Provider
	logger   *zap.Logger
	metrics  *metrics.Metrics
	mcp      *mcp.Server
}

func New(provider books.Provider, logger *zap.Logger, m *metrics.Metrics) *Server {
	s := &Server{
		provider: provider,
		logger:   logger,
		metrics:  m,
	}

	srv := mcp.NewServer(&mcp.Implementation{
		Name:    "books-mcp",
		Version: version.Get(),
	}, nil)

	mcp.AddTool(srv, &mcp.Tool{Name: toolSearchBooks, Description: searchBooksDescription}, s.searchBooks)
	mcp.AddTool(srv, &mcp.Tool{Name: toolSearchAuthor, Description: searchAuthorDescription}, s.searchAuthor)
	mcp.AddTool(srv, &mcp.Tool{Name: toolAuthorByBook, Description: authorByBookDescription}, s.authorByBook)

	s.mcp = srv
	return s
}

func (s *Server) searchBooks(ctx context.Context, _ *mcp.CallToolRequest, args queryArgs) (*mcp.CallToolResult, *books.SearchResult, error) {
	start := time.Now()
	s.logger.Info("tool called", zap.String("tool", toolSearchBooks), zap.String("query", args.Query))

	result, err := s.provider.SearchBooks(ctx, args.Query)
	if err != nil {
		s.record(toolSearchBooks, start, err)
		return nil, nil, err
	}
	s.record(toolSearchBooks, start, nil)

	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: books.FormatSearchResult(result)}},
	}, result, nil
}

func (s *Server) searchAuthor(ctx context.Context, _ *mcp.CallToolRequest, args queryArgs) (*mcp.CallToolResult, *books.AuthorResult, error) {
	start := time.Now()
	s.logger.Info("tool called", zap.String("tool", toolSearchAuthor), zap.String("query", args.Query))

	result, err := s.provider.SearchAuthors(ctx, args.Query)
	if err != nil {
		s.record(toolSearchAuthor, start, err)
		return nil, nil, err
	}
	s.record(toolSearchAuthor, start, nil)

	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: books.FormatAuthorResult(result)}},
	}, result, nil
}

func (s *Server) authorByBook(ctx context.Context, _ *mcp.CallToolRequest, args queryArgs) (*mcp.CallToolResult, *books.AuthorRecord, error) {
	start := time.Now()
	s.logger.Info("tool called", zap.String("tool", toolAuthorByBook), zap.String("query", args.Query))

	author, err := s.provider.AuthorByBook(ctx, args.Query)
	if err != nil {
		s.record(toolAuthorByBook, start, err)
		return nil, nil, err
	}
	s.record(toolAuthorByBook, start, nil)

	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: books.FormatAuthor(author)}},
	}, author, nil
}

func (s *Server) record(tool string, start time.Time, err error) {
	duration := time.Since(start)

	status := "ok"
	if err != nil {
		status = "error"
		s.logger.Warn("tool failed",
			zap.String("tool", tool),
			zap.Error(err),
			zap.Duration("duration", duration))
	} else {
		s.logger.Info("tool completed",
			zap.String("tool", tool),
			zap.Duration("duration", duration))
	}

	s.metrics.RecordToolCall(tool, status, duration)
}

// RunStdio обслуживает протокол через stdin/stdout, поэтому логгер сервера
// должен писать только в stderr.
func (s *Server) RunStdio(ctx context.Context) error {
	s.logger.Info("mcp server starting", zap.String("transport", "stdio"))
	return s.mcp.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) RunHTTP(ctx context.Context, addr string) error {
	handler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server { return s.mcp }, nil)

	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("mcp server listening", zap.String("transport", "http"), zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		s.logger.Info("shutting down mcp server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
