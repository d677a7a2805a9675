package database

import (
	"cmp"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/quoteflex/quoteflex/app/quote"
)

var _ QuoteRepository = (*quoteRepository)(nil)

type quoteRepository struct {
	db *DB
}

func NewQuoteRepository(db *DB) QuoteRepository {
	return &quoteRepository{db: db}
}

const quoteColumns = `id, quote_text, author, author_description, source,
       source_type, api_source, category, status, date_added, date_modified`

// Sort fields accepted by List. Anything else silently falls back to
// date_added descending rather than being interpolated into the query.
var allowedQuoteOrderBy = map[string]string{
	"id":            "id",
	"text":          "quote_text",
	"quote_text":    "quote_text",
	"author":        "author",
	"date_added":    "date_added",
	"date_modified": "date_modified",
	"status":        "status",
}

// The stored text is normalized inside the query the same way quote.Normalize
// treats the input: lowercase, strip . , " ' ! ?, trim.
const normalizedTextExpr = `LOWER(TRIM(REPLACE(REPLACE(REPLACE(REPLACE(REPLACE(REPLACE(
	quote_text, '.', ''), ',', ''), '"', ''), '''', ''), '!', ''), '?', '')))`

func (r *quoteRepository) Create(in QuoteInput) (int64, error) {
	if strings.TrimSpace(in.Text) == "" || strings.TrimSpace(in.Author) == "" {
		return 0, fmt.Errorf("quote text and author are required")
	}

	sourceType := cmp.Or(in.SourceType, SourceTypeManual)
	status := cmp.Or(in.Status, StatusActive)

	now := time.Now().UTC()
	result, err := r.db.Exec(`
		INSERT INTO quotes (quote_text, author, author_description, source,
		                    source_type, api_source, category, status,
		                    date_added, date_modified)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, in.Text, in.Author, in.AuthorDescription, in.Source,
		sourceType, in.APISource, in.Category, status, now, now)
	if err != nil {
		return 0, fmt.Errorf("failed to create quote: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get quote ID: %w", err)
	}

	return id, nil
}

func (r *quoteRepository) Get(id int64) (*Quote, error) {
	row := r.db.QueryRow(`
		SELECT `+quoteColumns+`
		FROM quotes
		WHERE id = ?
	`, id)

	q, err := scanQuote(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get quote: %w", err)
	}

	return q, nil
}

func (r *quoteRepository) Update(id int64, upd QuoteUpdate) error {
	assignments := []string{}
	args := []interface{}{}

	appendField := func(column string, value *string) {
		if value != nil {
			assignments = append(assignments, column+" = ?")
			args = append(args, *value)
		}
	}

	appendField("quote_text", upd.Text)
	appendField("author", upd.Author)
	appendField("author_description", upd.AuthorDescription)
	appendField("source", upd.Source)
	appendField("category", upd.Category)
	appendField("status", upd.Status)

	if len(assignments) == 0 {
		return ErrNoFields
	}

	assignments = append(assignments, "date_modified = ?")
	args = append(args, time.Now().UTC(), id)

	_, err := r.db.Exec(
		"UPDATE quotes SET "+strings.Join(assignments, ", ")+" WHERE id = ?",
		args...)
	if err != nil {
		return fmt.Errorf("failed to update quote: %w", err)
	}

	return nil
}

func (r *quoteRepository) Delete(id int64) error {
	_, err := r.db.Exec(`DELETE FROM quotes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete quote: %w", err)
	}
	return nil
}

func (r *quoteRepository) DeleteMany(ids []int64) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	result, err := r.db.Exec(
		"DELETE FROM quotes WHERE id IN ("+placeholders(len(ids))+")",
		int64Args(ids)...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete quotes: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return int(affected), nil
}

func (r *quoteRepository) SetStatusMany(ids []int64, status string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	if status != StatusActive && status != StatusInactive {
		return 0, fmt.Errorf("invalid status: %s", status)
	}

	args := []interface{}{status, time.Now().UTC()}
	args = append(args, int64Args(ids)...)

	result, err := r.db.Exec(
		"UPDATE quotes SET status = ?, date_modified = ? WHERE id IN ("+placeholders(len(ids))+")",
		args...)
	if err != nil {
		return 0, fmt.Errorf("failed to update quote status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return int(affected), nil
}

func (r *quoteRepository) List(filter QuoteFilter) ([]Quote, error) {
	where, args := buildQuoteFilter(filter)

	query := "SELECT " + quoteColumns + " FROM quotes WHERE " + where

	orderBy, ok := allowedQuoteOrderBy[filter.OrderBy]
	order := "DESC"
	if !ok {
		orderBy = "date_added"
	} else if strings.EqualFold(filter.Order, "asc") {
		order = "ASC"
	}
	query += " ORDER BY " + orderBy + " " + order

	if filter.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list quotes: %w", err)
	}
	defer rows.Close()

	var quotes []Quote
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan quote row: %w", err)
		}
		quotes = append(quotes, *q)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating quote rows: %w", err)
	}

	return quotes, nil
}

func (r *quoteRepository) Count(filter QuoteFilter) (int, error) {
	where, args := buildQuoteFilter(filter)

	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM quotes WHERE "+where, args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count quotes: %w", err)
	}

	return count, nil
}

func (r *quoteRepository) GetStats() (int, int, int, error) {
	var total, active, imported int
	err := r.db.QueryRow(`
		SELECT COUNT(*),
		       COUNT(CASE WHEN status = 'active' THEN 1 END),
		       COUNT(CASE WHEN source_type = 'api' THEN 1 END)
		FROM quotes
	`).Scan(&total, &active, &imported)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("failed to get quote stats: %w", err)
	}

	return total, active, imported, nil
}

// DuplicateExists reports whether an already stored quote matches the given
// text and author after normalization. This is an exact comparison after
// punctuation stripping, not a similarity score.
func (r *quoteRepository) DuplicateExists(text, author string) (bool, error) {
	var count int
	err := r.db.QueryRow(`
		SELECT COUNT(*)
		FROM quotes
		WHERE `+normalizedTextExpr+` = ?
		  AND LOWER(author) = ?
	`, quote.Normalize(text), quote.NormalizeAuthor(author)).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check duplicate: %w", err)
	}

	return count > 0, nil
}

func (r *quoteRepository) RandomFromSet(setID int64) (*Quote, error) {
	row := r.db.QueryRow(`
		SELECT `+prefixedQuoteColumns("q")+`
		FROM quotes q
		INNER JOIN set_relationships r ON q.id = r.quote_id
		WHERE r.set_id = ? AND q.status = 'active'
		ORDER BY RANDOM()
		LIMIT 1
	`, setID)

	return randomResult(row)
}

func (r *quoteRepository) RandomFromCategory(category string) (*Quote, error) {
	row := r.db.QueryRow(`
		SELECT `+quoteColumns+`
		FROM quotes
		WHERE category = ? AND status = 'active'
		ORDER BY RANDOM()
		LIMIT 1
	`, category)

	return randomResult(row)
}

func (r *quoteRepository) Random() (*Quote, error) {
	row := r.db.QueryRow(`
		SELECT ` + quoteColumns + `
		FROM quotes
		WHERE status = 'active'
		ORDER BY RANDOM()
		LIMIT 1
	`)

	return randomResult(row)
}

// randomResult treats an empty selection as a valid absent outcome, not an error
func randomResult(row *sql.Row) (*Quote, error) {
	q, err := scanQuote(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to pick random quote: %w", err)
	}
	return q, nil
}

func buildQuoteFilter(filter QuoteFilter) (string, []interface{}) {
	where := []string{"1=1"}
	args := []interface{}{}

	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, filter.Status)
	}
	if filter.Category != "" {
		where = append(where, "category = ?")
		args = append(args, filter.Category)
	}
	if filter.SourceType != "" {
		where = append(where, "source_type = ?")
		args = append(args, filter.SourceType)
	}
	if filter.Search != "" {
		search := "%" + escapeLike(filter.Search) + "%"
		where = append(where, `(quote_text LIKE ? ESCAPE '\' OR author LIKE ? ESCAPE '\')`)
		args = append(args, search, search)
	}

	return strings.Join(where, " AND "), args
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanQuote(row rowScanner) (*Quote, error) {
	var q Quote
	err := row.Scan(
		&q.ID, &q.Text, &q.Author, &q.AuthorDescription, &q.Source,
		&q.SourceType, &q.APISource, &q.Category, &q.Status,
		&q.DateAdded, &q.DateModified,
	)
	if err != nil {
		return nil, err
	}
	return &q, nil
}

func prefixedQuoteColumns(alias string) string {
	columns := strings.Split(quoteColumns, ",")
	for i, c := range columns {
		columns[i] = alias + "." + strings.TrimSpace(c)
	}
	return strings.Join(columns, ", ")
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func int64Args(ids []int64) []interface{} {
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	s = strings.ReplaceAll(s, "_", `\_`)
	return s
}
