package openlibrary

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/kitbuilder587/books-mcp/internal/books"
)

// coerceState — результат приведения одного поля: значение, отсутствие или брак.
type coerceState int

const (
	coerceOK coerceState = iota
	coerceAbsent
	coerceFailed
)

// coerceString приводит сырое JSON-значение к строке: строки обрезаются по
// пробелам, списки дают первый элемент, числа допустимы только если numberOK.
func coerceString(raw json.RawMessage, numberOK bool) (string, coerceState) {
	if len(raw) == 0 {
		return "", coerceAbsent
	}
	v, err := decodeValue(raw)
	if err != nil {
		return "", coerceFailed
	}
	return stringFromValue(v, numberOK)
}

func stringFromValue(v any, numberOK bool) (string, coerceState) {
	switch val := v.(type) {
	case nil:
		return "", coerceAbsent
	case string:
		trimmed := strings.TrimSpace(val)
		if trimmed == "" {
			return "", coerceAbsent
		}
		return trimmed, coerceOK
	case json.Number:
		if !numberOK {
			return "", coerceFailed
		}
		return val.String(), coerceOK
	case []any:
		if len(val) == 0 {
			return "", coerceAbsent
		}
		return stringFromValue(val[0], numberOK)
	default:
		return "", coerceFailed
	}
}

// coerceInt принимает целые числа и числовые строки; дробные и прочие типы — брак.
func coerceInt(raw json.RawMessage, allowNegative bool) (int, coerceState) {
	if len(raw) == 0 {
		return 0, coerceAbsent
	}
	v, err := decodeValue(raw)
	if err != nil {
		return 0, coerceFailed
	}

	switch val := v.(type) {
	case nil:
		return 0, coerceAbsent
	case json.Number:
		return parseIntegral(val.String(), allowNegative)
	case string:
		trimmed := strings.TrimSpace(val)
		if trimmed == "" {
			return 0, coerceAbsent
		}
		return parseIntegral(trimmed, allowNegative)
	default:
		return 0, coerceFailed
	}
}

func parseIntegral(s string, allowNegative bool) (int, coerceState) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil || f != math.Trunc(f) || f < math.MinInt32 || f > math.MaxInt32 {
			return 0, coerceFailed
		}
		n = int64(f)
	}
	if !allowNegative && n < 0 {
		return 0, coerceFailed
	}
	return int(n), coerceOK
}

func decodeValue(raw json.RawMessage) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

func setString(dst **string, raw json.RawMessage, numberOK bool, name string, failed *[]string) {
	v, state := coerceString(raw, numberOK)
	switch state {
	case coerceOK:
		*dst = &v
	case coerceFailed:
		*failed = append(*failed, name)
	}
}

func setInt(dst **int, raw json.RawMessage, allowNegative bool, name string, failed *[]string) {
	v, state := coerceInt(raw, allowNegative)
	switch state {
	case coerceOK:
		*dst = &v
	case coerceFailed:
		*failed = append(*failed, name)
	}
}

func bookFromFields(fields map[string]json.RawMessage) (books.BookRecord, []string) {
	var rec books.BookRecord
	var failed []string

	// числовые заголовки вроде 1984 апстрим отдаёт как JSON number
	setString(&rec.Title, fields["title"], true, "title", &failed)
	setString(&rec.AuthorName, fields["author_name"], false, "author_name", &failed)
	setString(&rec.AuthorKey, fields["author_key"], false, "author_key", &failed)
	setString(&rec.Language, fields["language"], false, "language", &failed)
	setInt(&rec.EditionCount, fields["edition_count"], false, "edition_count", &failed)
	setInt(&rec.FirstPublishYear, fields["first_publish_year"], true, "first_publish_year", &failed)

	return rec, failed
}

func authorFromFields(fields map[string]json.RawMessage) (books.AuthorRecord, []string) {
	var rec books.AuthorRecord
	var failed []string

	setString(&rec.Key, fields["key"], false, "key", &failed)
	setString(&rec.Name, fields["name"], false, "name", &failed)
	setString(&rec.BirthDate, fields["birth_date"], false, "birth_date", &failed)
	setString(&rec.TopWork, fields["top_work"], false, "top_work", &failed)
	setInt(&rec.WorkCount, fields["work_count"], false, "work_count", &failed)

	// /authors/{id}.json отдаёт key как "/authors/OL23919A", поиск — голый id
	if rec.Key != nil {
		key := strings.TrimPrefix(*rec.Key, "/authors/")
		rec.Key = &key
	}

	return rec, failed
}

func workFromFields(fields map[string]json.RawMessage) books.WorkRecord {
	var rec books.WorkRecord
	var failed []string

	setString(&rec.Title, fields["title"], true, "title", &failed)

	// у works.json год лежит в first_publish_date и бывает произвольной строкой;
	// нечисловые значения просто пропускаем
	yearRaw, ok := fields["first_publish_year"]
	if !ok {
		yearRaw = fields["first_publish_date"]
	}
	if v, state := coerceInt(yearRaw, true); state == coerceOK {
		rec.FirstPublishYear = &v
	}

	return rec
}

func normalizeBook(raw json.RawMessage, idx int, logger *zap.Logger) (books.BookRecord, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		logger.Warn("dropping undecodable record",
			zap.Int("position", idx),
			zap.Error(err))
		return books.BookRecord{}, false
	}

	rec, failed := bookFromFields(fields)
	if len(failed) > 0 {
		logger.Warn("field coercion failed",
			zap.Int("position", idx),
			zap.Strings("fields", failed))
	}
	return rec, true
}

func normalizeAuthor(raw json.RawMessage, idx int, logger *zap.Logger) (books.AuthorRecord, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		logger.Warn("dropping undecodable record",
			zap.Int("position", idx),
			zap.Error(err))
		return books.AuthorRecord{}, false
	}

	rec, failed := authorFromFields(fields)
	if len(failed) > 0 {
		logger.Warn("field coercion failed",
			zap.Int("position", idx),
			zap.Strings("fields", failed))
	}
	return rec, true
}

type batchStats struct {
	total      int
	incomplete int
	dropped    int
}

func decodeEnvelope(body []byte, listField string) (map[string]json.RawMessage, []json.RawMessage, error) {
	var env map[string]json.RawMessage
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", books.ErrBadPayload, err)
	}
	if env == nil {
		return nil, nil, fmt.Errorf("%w: body is not a JSON object", books.ErrBadPayload)
	}

	raw, ok := env[listField]
	if !ok {
		return env, nil, nil
	}

	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, nil, fmt.Errorf("%w: %q is not a list", books.ErrBadPayload, listField)
	}
	return env, list, nil
}

// envelopeCount достаёт num_found; апстрим шлёт оба написания.
func envelopeCount(env map[string]json.RawMessage, logger *zap.Logger) int {
	raw, ok := env["num_found"]
	if !ok {
		raw, ok = env["numFound"]
	}
	if !ok {
		logger.Warn("envelope has no num_found, defaulting to 0")
		return 0
	}

	n, state := coerceInt(raw, false)
	if state != coerceOK {
		logger.Warn("malformed num_found, defaulting to 0")
		return 0
	}
	return n
}

func normalizeSearch(body []byte, query string, logger *zap.Logger) (*books.SearchResult, batchStats, error) {
	env, rawDocs, err := decodeEnvelope(body, "docs")
	if err != nil {
		return nil, batchStats{}, err
	}

	stats := batchStats{total: len(rawDocs)}
	docs := make([]books.BookRecord, 0, len(rawDocs))
	for i, raw := range rawDocs {
		rec, ok := normalizeBook(raw, i, logger)
		if !ok {
			stats.dropped++
			continue
		}
		if rec.Incomplete() {
			stats.incomplete++
		}
		docs = append(docs, rec)
	}

	return &books.SearchResult{
		NumFound: envelopeCount(env, logger),
		Query:    query,
		Docs:     docs,
	}, stats, nil
}

func normalizeAuthors(body []byte, query string, logger *zap.Logger) (*books.AuthorResult, batchStats, error) {
	env, rawDocs, err := decodeEnvelope(body, "docs")
	if err != nil {
		return nil, batchStats{}, err
	}

	stats := batchStats{total: len(rawDocs)}
	docs := make([]books.AuthorRecord, 0, len(rawDocs))
	for i, raw := range rawDocs {
		rec, ok := normalizeAuthor(raw, i, logger)
		if !ok {
			stats.dropped++
			continue
		}
		if rec.Incomplete() {
			stats.incomplete++
		}
		docs = append(docs, rec)
	}

	return &books.AuthorResult{
		NumFound: envelopeCount(env, logger),
		Query:    query,
		Docs:     docs,
	}, stats, nil
}

func normalizeWorks(body []byte, logger *zap.Logger) ([]books.WorkRecord, batchStats, error) {
	_, entries, err := decodeEnvelope(body, "entries")
	if err != nil {
		return nil, batchStats{}, err
	}

	stats := batchStats{total: len(entries)}
	works := make([]books.WorkRecord, 0, len(entries))
	for i, raw := range entries {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(raw, &fields); err != nil {
			stats.dropped++
			logger.Warn("dropping undecodable record",
				zap.Int("position", i),
				zap.Error(err))
			continue
		}
		works = append(works, workFromFields(fields))
	}

	return works, stats, nil
}

func normalizeAuthorDetail(body []byte, logger *zap.Logger) (*books.AuthorRecord, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", books.ErrBadPayload, err)
	}
	if fields == nil {
		return nil, fmt.Errorf("%w: body is not a JSON object", books.ErrBadPayload)
	}

	rec, failed := authorFromFields(fields)
	if len(failed) > 0 {
		logger.Warn("field coercion failed", zap.Strings("fields", failed))
	}
	return &rec, nil
}
