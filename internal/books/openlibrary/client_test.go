package openlibrary

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kitbuilder587/books-mcp/internal/books"
	"github.com/kitbuilder587/books-mcp/internal/metrics"
)

func newTestClient(baseURL string, timeout time.Duration) *Client {
	return New(Config{
		BaseURL: baseURL,
		Timeout: timeout,
	}, zap.NewNop(), metrics.New(prometheus.NewRegistry()))
}

func TestClient_SearchBooks(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		statusCode int
		wantErr    error
		wantDocs   int
	}{
		{
			name:       "successful search",
			body:       `{"num_found": 2, "q": "orwell", "docs": [{"title": "1984", "author_name": ["George Orwell"]}, {"title": "Animal Farm", "author_name": ["George Orwell"]}]}`,
			statusCode: http.StatusOK,
			wantDocs:   2,
		},
		{
			name:       "service unavailable",
			body:       `upstream down`,
			statusCode: http.StatusServiceUnavailable,
			wantErr:    books.ErrUpstreamStatus,
		},
		{
			name:       "not found",
			body:       `{"error": "not found"}`,
			statusCode: http.StatusNotFound,
			wantErr:    books.ErrUpstreamStatus,
		},
		{
			name:       "html instead of json",
			body:       `<html>maintenance</html>`,
			statusCode: http.StatusOK,
			wantErr:    books.ErrBadPayload,
		},
		{
			name:       "docs is not a list",
			body:       `{"num_found": 1, "docs": {"title": "1984"}}`,
			statusCode: http.StatusOK,
			wantErr:    books.ErrBadPayload,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.statusCode)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := newTestClient(server.URL, 5*time.Second)

			result, err := client.SearchBooks(context.Background(), "orwell")

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("SearchBooks() error = %v, wantErr %v", err, tt.wantErr)
				}
				return
			}

			if err != nil {
				t.Fatalf("SearchBooks() unexpected error = %v", err)
			}
			if len(result.Docs) != tt.wantDocs {
				t.Errorf("len(Docs) = %d, want %d", len(result.Docs), tt.wantDocs)
			}
		})
	}
}

func TestClient_SearchBooks_EmptyQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("upstream called for empty query")
	}))
	defer server.Close()

	client := newTestClient(server.URL, time.Second)

	for _, query := range []string{"", "   ", "\t\n"} {
		if _, err := client.SearchBooks(context.Background(), query); !errors.Is(err, books.ErrEmptyQuery) {
			t.Errorf("SearchBooks(%q) error = %v, wantErr %v", query, err, books.ErrEmptyQuery)
		}
	}
}

func TestClient_SearchBooks_QueryForwarded(t *testing.T) {
	var gotPath, gotQuery, gotFormat string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query().Get("q")
		gotFormat = r.URL.Query().Get("format")
		w.Write([]byte(`{"num_found": 0, "q": "rewritten by upstream", "docs": []}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, time.Second)

	result, err := client.SearchBooks(context.Background(), "george orwell 1984")
	if err != nil {
		t.Fatalf("SearchBooks() error = %v", err)
	}

	if gotPath != "/search.json" {
		t.Errorf("path = %q, want /search.json", gotPath)
	}
	if gotQuery != "george orwell 1984" {
		t.Errorf("q = %q, want the caller query unchanged", gotQuery)
	}
	if gotFormat != "json" {
		t.Errorf("format = %q, want json", gotFormat)
	}
	// в ответе остаётся строка вызывающего, а не переписанная апстримом
	if result.Query != "george orwell 1984" {
		t.Errorf("Query = %q, want caller echo", result.Query)
	}
}

func TestClient_SearchBooks_RoundTrip(t *testing.T) {
	body := `{"numFound": 2, "q": "orwell", "docs": [{"title": "1984", "author_name": "George Orwell", "first_publish_year": 1949}, {"edition_count": 3}]}`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	defer server.Close()

	client := newTestClient(server.URL, time.Second)

	result, err := client.SearchBooks(context.Background(), "orwell")
	if err != nil {
		t.Fatalf("SearchBooks() error = %v", err)
	}

	if result.NumFound != 2 {
		t.Errorf("NumFound = %d, want 2", result.NumFound)
	}
	if result.Query != "orwell" {
		t.Errorf("Query = %q, want orwell", result.Query)
	}
	if len(result.Docs) != 2 {
		t.Fatalf("len(Docs) = %d, want 2", len(result.Docs))
	}

	first := result.Docs[0]
	if first.Title == nil || *first.Title != "1984" {
		t.Errorf("Docs[0].Title = %v, want 1984", first.Title)
	}
	if first.AuthorName == nil || *first.AuthorName != "George Orwell" {
		t.Errorf("Docs[0].AuthorName = %v, want George Orwell", first.AuthorName)
	}
	if first.FirstPublishYear == nil || *first.FirstPublishYear != 1949 {
		t.Errorf("Docs[0].FirstPublishYear = %v, want 1949", first.FirstPublishYear)
	}
	if first.EditionCount != nil {
		t.Errorf("Docs[0].EditionCount = %d, want absent", *first.EditionCount)
	}
	if first.Incomplete() {
		t.Error("Docs[0].Incomplete() = true, want false")
	}

	second := result.Docs[1]
	if second.EditionCount == nil || *second.EditionCount != 3 {
		t.Errorf("Docs[1].EditionCount = %v, want 3", second.EditionCount)
	}
	if second.Title != nil || second.AuthorName != nil {
		t.Errorf("Docs[1] = %+v, want only edition_count set", second)
	}
	if !second.Incomplete() {
		t.Error("Docs[1].Incomplete() = false, want true")
	}
}

func TestClient_SearchBooks_StatusCarried(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := newTestClient(server.URL, time.Second)

	_, err := client.SearchBooks(context.Background(), "orwell")

	if !errors.Is(err, books.ErrUpstreamStatus) {
		t.Fatalf("SearchBooks() error = %v, wantErr %v", err, books.ErrUpstreamStatus)
	}
	if errors.Is(err, books.ErrUpstreamUnreachable) {
		t.Error("status error must not match ErrUpstreamUnreachable")
	}

	var statusErr *books.StatusError
	if !errors.As(err, &statusErr) {
		t.Fatal("errors.As(err, &statusErr) = false, want true")
	}
	if statusErr.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("StatusCode = %d, want %d", statusErr.StatusCode, http.StatusServiceUnavailable)
	}
}

func TestClient_SearchBooks_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := newTestClient(server.URL, time.Second)

	_, err := client.SearchBooks(context.Background(), "orwell")

	if !errors.Is(err, books.ErrUpstreamUnreachable) {
		t.Errorf("SearchBooks() error = %v, wantErr %v", err, books.ErrUpstreamUnreachable)
	}
	if errors.Is(err, books.ErrUpstreamStatus) {
		t.Error("transport error must not match ErrUpstreamStatus")
	}
}

func TestClient_SearchBooks_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
	}))
	defer server.Close()

	client := newTestClient(server.URL, 100*time.Millisecond)

	_, err := client.SearchBooks(context.Background(), "orwell")

	if !errors.Is(err, books.ErrUpstreamUnreachable) {
		t.Errorf("SearchBooks() error = %v, wantErr %v", err, books.ErrUpstreamUnreachable)
	}
}

func TestClient_SearchAuthors(t *testing.T) {
	var gotPath, gotQuery string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query().Get("q")
		w.Write([]byte(`{"numFound": 1, "docs": [{"key": "OL23919A", "name": "J. K. Rowling", "work_count": 162}]}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, time.Second)

	result, err := client.SearchAuthors(context.Background(), "rowling")
	if err != nil {
		t.Fatalf("SearchAuthors() error = %v", err)
	}

	if gotPath != "/search/authors.json" || gotQuery != "rowling" {
		t.Errorf("request = %s?q=%s, want /search/authors.json?q=rowling", gotPath, gotQuery)
	}
	if result.NumFound != 1 || len(result.Docs) != 1 {
		t.Fatalf("envelope = %d/%d docs, want 1/1", result.NumFound, len(result.Docs))
	}
	if result.Docs[0].Name == nil || *result.Docs[0].Name != "J. K. Rowling" {
		t.Errorf("Docs[0].Name = %v, want J. K. Rowling", result.Docs[0].Name)
	}

	if _, err := client.SearchAuthors(context.Background(), "  "); !errors.Is(err, books.ErrEmptyQuery) {
		t.Errorf("SearchAuthors(blank) error = %v, wantErr %v", err, books.ErrEmptyQuery)
	}
}

func TestClient_AuthorWorks(t *testing.T) {
	var gotPath string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`{"entries": [{"title": "Harry Potter and the Philosopher's Stone", "first_publish_date": "1997"}]}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, time.Second)

	// префикс /authors/ из карточки автора не должен дублироваться в пути
	works, err := client.AuthorWorks(context.Background(), "/authors/OL23919A")
	if err != nil {
		t.Fatalf("AuthorWorks() error = %v", err)
	}

	if gotPath != "/authors/OL23919A/works.json" {
		t.Errorf("path = %q, want /authors/OL23919A/works.json", gotPath)
	}
	if len(works) != 1 {
		t.Fatalf("len(works) = %d, want 1", len(works))
	}
	if works[0].FirstPublishYear == nil || *works[0].FirstPublishYear != 1997 {
		t.Errorf("works[0].FirstPublishYear = %v, want 1997", works[0].FirstPublishYear)
	}

	if _, err := client.AuthorWorks(context.Background(), ""); !errors.Is(err, books.ErrEmptyQuery) {
		t.Errorf("AuthorWorks(empty) error = %v, wantErr %v", err, books.ErrEmptyQuery)
	}
}

func TestClient_AuthorByBook(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/search.json":
			w.Write([]byte(`{"num_found": 1, "docs": [{"title": "Harry Potter", "author_name": ["J. K. Rowling"], "author_key": ["OL23919A"]}]}`))
		case "/authors/OL23919A.json":
			w.Write([]byte(`{"key": "/authors/OL23919A", "name": "J. K. Rowling", "birth_date": "31 July 1965"}`))
		case "/authors/OL23919A/works.json":
			w.Write([]byte(`{"entries": [{"title": "Harry Potter and the Philosopher's Stone", "first_publish_date": "1997"}, {"title": "The Casual Vacancy"}]}`))
		default:
			t.Errorf("unexpected path %q", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := newTestClient(server.URL, time.Second)

	author, err := client.AuthorByBook(context.Background(), "harry potter")
	if err != nil {
		t.Fatalf("AuthorByBook() error = %v", err)
	}

	if author.Key == nil || *author.Key != "OL23919A" {
		t.Errorf("Key = %v, want OL23919A", author.Key)
	}
	if author.Name == nil || *author.Name != "J. K. Rowling" {
		t.Errorf("Name = %v, want J. K. Rowling", author.Name)
	}
	if len(author.Works) != 2 {
		t.Errorf("len(Works) = %d, want 2", len(author.Works))
	}
}

func TestClient_AuthorByBook_NotFound(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "no docs", body: `{"num_found": 0, "docs": []}`},
		{name: "first doc has no author key", body: `{"num_found": 1, "docs": [{"title": "Anonymous Work", "author_name": "Unknown"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/search.json" {
					t.Errorf("unexpected path %q", r.URL.Path)
				}
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := newTestClient(server.URL, time.Second)

			_, err := client.AuthorByBook(context.Background(), "harry potter")
			if !errors.Is(err, books.ErrAuthorNotFound) {
				t.Errorf("AuthorByBook() error = %v, wantErr %v", err, books.ErrAuthorNotFound)
			}
		})
	}
}
