package books

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrEmptyQuery          = errors.New("empty query")
	ErrUpstreamUnreachable = errors.New("upstream unreachable")
	ErrUpstreamStatus      = errors.New("upstream request failed")
	ErrBadPayload          = errors.New("malformed upstream payload")
	ErrAuthorNotFound      = errors.New("author not found")
)

// StatusError сохраняет код ответа апстрима; errors.Is(err, ErrUpstreamStatus) работает.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream returned status %d", e.StatusCode)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrUpstreamStatus
}

type Provider interface {
	SearchBooks(ctx context.Context, query string) (*SearchResult, error)
	SearchAuthors(ctx context.Context, query string) (*AuthorResult, error)
	AuthorWorks(ctx context.Context, authorKey string) ([]WorkRecord, error)
	AuthorByBook(ctx context.Context, query string) (*AuthorRecord, error)
}

// BookRecord is one normalized search hit. Pointer fields distinguish
// "absent upstream" from zero values.
type BookRecord struct {
	Title            *string `json:"title,omitempty"`
	AuthorName       *string `json:"author_name,omitempty"`
	AuthorKey        *string `json:"author_key,omitempty"`
	EditionCount     *int    `json:"edition_count,omitempty"`
	FirstPublishYear *int    `json:"first_publish_year,omitempty"`
	Language         *string `json:"language,omitempty"`
}

// Incomplete reports whether the record lacks the fields needed to display it.
func (r BookRecord) Incomplete() bool {
	return r.Title == nil || r.AuthorName == nil
}

type SearchResult struct {
	NumFound int          `json:"num_found"`
	Query    string       `json:"query"`
	Docs     []BookRecord `json:"docs"`
}

type AuthorRecord struct {
	Key       *string      `json:"key,omitempty"`
	Name      *string      `json:"name,omitempty"`
	BirthDate *string      `json:"birth_date,omitempty"`
	TopWork   *string      `json:"top_work,omitempty"`
	WorkCount *int         `json:"work_count,omitempty"`
	Works     []WorkRecord `json:"works,omitempty"`
}

func (r AuthorRecord) Incomplete() bool {
	return r.Key == nil || r.Name == nil
}

type WorkRecord struct {
	Title            *string `json:"title,omitempty"`
	FirstPublishYear *int    `json:"first_publish_year,omitempty"`
}

type AuthorResult struct {
	NumFound int            `json:"num_found"`
	Query    string         `json:"query"`
	Docs     []AuthorRecord `json:"docs"`
}
