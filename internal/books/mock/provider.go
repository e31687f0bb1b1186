package mock

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/kitbuilder587/books-mcp/internal/books"
)

// Provider отдаёт заранее заданные ответы и считает вызовы.
type Provider struct {
	SearchResult *books.SearchResult
	AuthorResult *books.AuthorResult
	Works        []books.WorkRecord
	Author       *books.AuthorRecord
	Error        error
	Delay        time.Duration

	CallCount  int
	LastQuery  string
	AllQueries []string

	mu sync.Mutex
}

func New() *Provider {
	return &Provider{}
}

func (p *Provider) WithSearchResult(res *books.SearchResult) *Provider {
	p.SearchResult = res
	return p
}

func (p *Provider) WithAuthorResult(res *books.AuthorResult) *Provider {
	p.AuthorResult = res
	return p
}

func (p *Provider) WithWorks(works []books.WorkRecord) *Provider {
	p.Works = works
	return p
}

func (p *Provider) WithAuthor(author *books.AuthorRecord) *Provider {
	p.Author = author
	return p
}

func (p *Provider) WithError(err error) *Provider {
	p.Error = err
	return p
}

func (p *Provider) WithDelay(delay time.Duration) *Provider {
	p.Delay = delay
	return p
}

func (p *Provider) SearchBooks(ctx context.Context, query string) (*books.SearchResult, error) {
	if err := p.record(ctx, query); err != nil {
		return nil, err
	}

	if p.SearchResult == nil {
		return &books.SearchResult{Query: query, Docs: []books.BookRecord{}}, nil
	}
	res := *p.SearchResult
	res.Query = query
	return &res, nil
}

func (p *Provider) SearchAuthors(ctx context.Context, query string) (*books.AuthorResult, error) {
	if err := p.record(ctx, query); err != nil {
		return nil, err
	}

	if p.AuthorResult == nil {
		return &books.AuthorResult{Query: query, Docs: []books.AuthorRecord{}}, nil
	}
	res := *p.AuthorResult
	res.Query = query
	return &res, nil
}

func (p *Provider) AuthorWorks(ctx context.Context, authorKey string) ([]books.WorkRecord, error) {
	if err := p.record(ctx, authorKey); err != nil {
		return nil, err
	}
	return p.Works, nil
}

func (p *Provider) AuthorByBook(ctx context.Context, query string) (*books.AuthorRecord, error) {
	if err := p.record(ctx, query); err != nil {
		return nil, err
	}

	if p.Author == nil {
		return nil, books.ErrAuthorNotFound
	}
	res := *p.Author
	return &res, nil
}

// record повторяет поведение настоящего провайдера: пустой запрос — ошибка до I/O.
func (p *Provider) record(ctx context.Context, query string) error {
	p.mu.Lock()
	p.CallCount++
	p.LastQuery = query
	p.AllQueries = append(p.AllQueries, query)
	delay := p.Delay
	err := p.Error
	p.mu.Unlock()

	if strings.TrimSpace(query) == "" {
		return books.ErrEmptyQuery
	}

	if delay > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}

	return err
}

func (p *Provider) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.CallCount = 0
	p.LastQuery = ""
	p.AllQueries = nil
}
