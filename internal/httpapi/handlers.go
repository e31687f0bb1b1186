package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kitbuilder587/books-mcp/internal/books"
	"github.com/kitbuilder587/books-mcp/internal/version"
)

func (s *Server) handleSearch(c *gin.Context) {
	result, err := s.provider.SearchBooks(c.Request.Context(), c.Query("query"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleSearchAuthor(c *gin.Context) {
	result, err := s.provider.SearchAuthors(c.Request.Context(), c.Query("query"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleAuthorByBook(c *gin.Context) {
	author, err := s.provider.AuthorByBook(c.Request.Context(), c.Query("query"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, author)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "books-mcp",
	})
}

func (s *Server) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "books-mcp",
		"version": version.Get(),
		"endpoints": []string{
			"/search",
			"/search_author",
			"/search_author_with_book_name",
			"/health",
			"/metrics",
		},
	})
}

func (s *Server) writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, books.ErrEmptyQuery):
		status = http.StatusBadRequest
	case errors.Is(err, books.ErrAuthorNotFound):
		status = http.StatusNotFound
	case errors.Is(err, books.ErrUpstreamStatus),
		errors.Is(err, books.ErrUpstreamUnreachable),
		errors.Is(err, books.ErrBadPayload):
		status = http.StatusBadGateway
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
	} else {
		s.logger.Warn("request failed",
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Error(err))
	}

	c.JSON(status, gin.H{"error": err.Error()})
}
