package openlibrary

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kitbuilder587/books-mcp/internal/books"
	"github.com/kitbuilder587/books-mcp/internal/metrics"
)

const defaultUserAgent = "books-mcp/0.1.1"

type Config struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
}

type Client struct {
	baseURL   string
	userAgent string
	client    *http.Client
	logger    *zap.Logger
	metrics   *metrics.Metrics
}

func New(cfg Config, logger *zap.Logger, m *metrics.Metrics) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://openlibrary.org"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}

	return &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
		client:    &http.Client{Timeout: cfg.Timeout},
		logger:    logger,
		metrics:   m,
	}
}

func (c *Client) SearchBooks(ctx context.Context, query string) (*books.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, books.ErrEmptyQuery
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")

	body, err := c.doGet(ctx, "search_books", "/search.json", params)
	if err != nil {
		return nil, err
	}

	result, stats, err := normalizeSearch(body, query, c.logger)
	if err != nil {
		return nil, err
	}
	c.finishBatch("search_books", stats)

	return result, nil
}

func (c *Client) SearchAuthors(ctx context.Context, query string) (*books.AuthorResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, books.ErrEmptyQuery
	}

	params := url.Values{}
	params.Set("q", query)

	body, err := c.doGet(ctx, "search_authors", "/search/authors.json", params)
	if err != nil {
		return nil, err
	}

	result, stats, err := normalizeAuthors(body, query, c.logger)
	if err != nil {
		return nil, err
	}
	c.finishBatch("search_authors", stats)

	return result, nil
}

func (c *Client) AuthorWorks(ctx context.Context, authorKey string) ([]books.WorkRecord, error) {
	key := strings.TrimPrefix(strings.TrimSpace(authorKey), "/authors/")
	if key == "" {
		return nil, books.ErrEmptyQuery
	}

	body, err := c.doGet(ctx, "author_works", "/authors/"+url.PathEscape(key)+"/works.json", nil)
	if err != nil {
		return nil, err
	}

	works, stats, err := normalizeWorks(body, c.logger)
	if err != nil {
		return nil, err
	}
	c.finishBatch("author_works", stats)

	return works, nil
}

// AuthorByBook ищет книгу, берёт автора первого результата и собирает его
// карточку вместе со списком работ.
func (c *Client) AuthorByBook(ctx context.Context, query string) (*books.AuthorRecord, error) {
	searchRes, err := c.SearchBooks(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(searchRes.Docs) == 0 {
		return nil, books.ErrAuthorNotFound
	}

	first := searchRes.Docs[0]
	if first.AuthorKey == nil {
		return nil, books.ErrAuthorNotFound
	}
	key := strings.TrimPrefix(*first.AuthorKey, "/authors/")

	body, err := c.doGet(ctx, "author_detail", "/authors/"+url.PathEscape(key)+".json", nil)
	if err != nil {
		return nil, err
	}

	author, err := normalizeAuthorDetail(body, c.logger)
	if err != nil {
		return nil, err
	}

	works, err := c.AuthorWorks(ctx, key)
	if err != nil {
		return nil, err
	}
	author.Works = works

	return author, nil
}

func (c *Client) doGet(ctx context.Context, operation, path string, params url.Values) ([]byte, error) {
	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	c.logger.Debug("upstream request",
		zap.String("operation", operation),
		zap.String("url", reqURL))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	resp, err := c.client.Do(httpReq)
	duration := time.Since(start)
	if err != nil {
		c.metrics.RecordUpstreamRequest(operation, "unreachable", duration)
		c.logger.Error("upstream unreachable",
			zap.String("operation", operation),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %v", books.ErrUpstreamUnreachable, err)
	}

	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		c.metrics.RecordUpstreamRequest(operation, "unreachable", duration)
		return nil, fmt.Errorf("%w: read body: %v", books.ErrUpstreamUnreachable, err)
	}

	c.metrics.RecordUpstreamRequest(operation, strconv.Itoa(resp.StatusCode), duration)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("upstream error status",
			zap.String("operation", operation),
			zap.Int("status", resp.StatusCode),
			zap.Duration("duration", duration))
		return nil, &books.StatusError{StatusCode: resp.StatusCode}
	}

	c.logger.Info("upstream response",
		zap.String("operation", operation),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(body)),
		zap.Duration("duration", duration))

	return body, nil
}

func (c *Client) finishBatch(operation string, stats batchStats) {
	c.metrics.RecordBatch(stats.total, stats.incomplete, stats.dropped)
	c.logger.Info("normalized upstream records",
		zap.String("operation", operation),
		zap.Int("records", stats.total),
		zap.Int("incomplete", stats.incomplete),
		zap.Int("dropped", stats.dropped))
}
