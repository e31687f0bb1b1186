package books

import (
	"fmt"
	"strings"
)

const unknownField = "unknown"

// FormatSearchResult renders a search result as plain text, one line per book.
func FormatSearchResult(res *SearchResult) string {
	if res == nil || len(res.Docs) == 0 {
		q := ""
		if res != nil {
			q = res.Query
		}
		return fmt.Sprintf("No books found for %q.", q)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d books for %q, showing %d:\n", res.NumFound, res.Query, len(res.Docs)))
	for i, doc := range res.Docs {
		sb.WriteString(fmt.Sprintf("%d. %s — %s", i+1, strOr(doc.Title, unknownField), strOr(doc.AuthorName, unknownField)))

		var details []string
		if doc.FirstPublishYear != nil {
			details = append(details, fmt.Sprintf("first published %d", *doc.FirstPublishYear))
		}
		if doc.EditionCount != nil {
			details = append(details, fmt.Sprintf("%d editions", *doc.EditionCount))
		}
		if doc.Language != nil {
			details = append(details, *doc.Language)
		}
		if len(details) > 0 {
			sb.WriteString(" (" + strings.Join(details, ", ") + ")")
		}
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

// FormatAuthorResult renders an author search as plain text.
func FormatAuthorResult(res *AuthorResult) string {
	if res == nil || len(res.Docs) == 0 {
		q := ""
		if res != nil {
			q = res.Query
		}
		return fmt.Sprintf("No authors found for %q.", q)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d authors for %q, showing %d:\n", res.NumFound, res.Query, len(res.Docs)))
	for i, doc := range res.Docs {
		sb.WriteString(fmt.Sprintf("%d. %s", i+1, FormatAuthor(&doc)))
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

// FormatAuthor renders a single author as one line plus an optional works list.
func FormatAuthor(a *AuthorRecord) string {
	if a == nil {
		return "No author."
	}

	var sb strings.Builder
	sb.WriteString(strOr(a.Name, unknownField))

	var details []string
	if a.BirthDate != nil {
		details = append(details, "born "+*a.BirthDate)
	}
	if a.TopWork != nil {
		details = append(details, "top work: "+*a.TopWork)
	}
	if a.WorkCount != nil {
		details = append(details, fmt.Sprintf("%d works", *a.WorkCount))
	}
	if len(details) > 0 {
		sb.WriteString(" (" + strings.Join(details, ", ") + ")")
	}

	for _, w := range a.Works {
		sb.WriteString("\n  - " + strOr(w.Title, unknownField))
		if w.FirstPublishYear != nil {
			sb.WriteString(fmt.Sprintf(" (%d)", *w.FirstPublishYear))
		}
	}
	return sb.String()
}

func strOr(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}
