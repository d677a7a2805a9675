package database

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/quoteflex/quoteflex/app/quote"
)

// DefaultSetName is the set seeded on first startup so displays scoped to a
// set work out of the box.
const (
	DefaultSetName = "General"
	DefaultSetSlug = "general"
)

var _ SetRepository = (*setRepository)(nil)

type setRepository struct {
	db *DB
}

func NewSetRepository(db *DB) SetRepository {
	return &setRepository{db: db}
}

const setColumns = `id, set_name, set_slug, description, date_created, date_modified`

var allowedSetOrderBy = map[string]string{
	"id":            "id",
	"name":          "set_name",
	"set_name":      "set_name",
	"slug":          "set_slug",
	"set_slug":      "set_slug",
	"date_created":  "date_created",
	"date_modified": "date_modified",
}

func (r *setRepository) Create(in SetInput) (int64, error) {
	if strings.TrimSpace(in.Name) == "" {
		return 0, fmt.Errorf("set name is required")
	}

	slug := in.Slug
	if slug == "" {
		slug = in.Name
	}
	slug, err := r.uniqueSlug(quote.Slugify(slug), 0)
	if err != nil {
		return 0, err
	}

	now := time.Now().UTC()
	result, err := r.db.Exec(`
		INSERT INTO sets (set_name, set_slug, description, date_created, date_modified)
		VALUES (?, ?, ?, ?, ?)
	`, in.Name, slug, in.Description, now, now)
	if err != nil {
		return 0, fmt.Errorf("failed to create set: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get set ID: %w", err)
	}

	return id, nil
}

func (r *setRepository) Get(id int64) (*Set, error) {
	row := r.db.QueryRow(`
		SELECT `+setColumns+`
		FROM sets
		WHERE id = ?
	`, id)

	return setResult(row, "get set")
}

func (r *setRepository) GetBySlug(slug string) (*Set, error) {
	row := r.db.QueryRow(`
		SELECT `+setColumns+`
		FROM sets
		WHERE set_slug = ?
	`, slug)

	return setResult(row, "get set by slug")
}

func (r *setRepository) Update(id int64, upd SetUpdate) error {
	assignments := []string{}
	args := []interface{}{}

	if upd.Name != nil {
		assignments = append(assignments, "set_name = ?")
		args = append(args, *upd.Name)
	}
	if upd.Slug != nil {
		// Re-run collision resolution excluding this set's own row
		slug, err := r.uniqueSlug(quote.Slugify(*upd.Slug), id)
		if err != nil {
			return err
		}
		assignments = append(assignments, "set_slug = ?")
		args = append(args, slug)
	}
	if upd.Description != nil {
		assignments = append(assignments, "description = ?")
		args = append(args, *upd.Description)
	}

	if len(assignments) == 0 {
		return ErrNoFields
	}

	assignments = append(assignments, "date_modified = ?")
	args = append(args, time.Now().UTC(), id)

	_, err := r.db.Exec(
		"UPDATE sets SET "+strings.Join(assignments, ", ")+" WHERE id = ?",
		args...)
	if err != nil {
		return fmt.Errorf("failed to update set: %w", err)
	}

	return nil
}

// Delete removes a set. Membership rows cascade away; member quotes are untouched.
func (r *setRepository) Delete(id int64) error {
	_, err := r.db.Exec(`DELETE FROM sets WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete set: %w", err)
	}
	return nil
}

func (r *setRepository) List(orderBy, order string) ([]Set, error) {
	column, ok := allowedSetOrderBy[orderBy]
	if !ok {
		column = "set_name"
	}
	direction := "ASC"
	if strings.EqualFold(order, "desc") {
		direction = "DESC"
	}

	rows, err := r.db.Query(
		"SELECT " + setColumns + " FROM sets ORDER BY " + column + " " + direction)
	if err != nil {
		return nil, fmt.Errorf("failed to list sets: %w", err)
	}
	defer rows.Close()

	var sets []Set
	for rows.Next() {
		var s Set
		err := rows.Scan(&s.ID, &s.Name, &s.Slug, &s.Description, &s.DateCreated, &s.DateModified)
		if err != nil {
			return nil, fmt.Errorf("failed to scan set row: %w", err)
		}
		sets = append(sets, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating set rows: %w", err)
	}

	return sets, nil
}

func (r *setRepository) GetSetCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM sets").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get set count: %w", err)
	}
	return count, nil
}

func (r *setRepository) QuoteCount(setID int64) (int, error) {
	var count int
	err := r.db.QueryRow(`
		SELECT COUNT(*) FROM set_relationships WHERE set_id = ?
	`, setID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get quote count for set: %w", err)
	}
	return count, nil
}

// AssignQuote links a quote to a set. Assigning an existing pair is a no-op success.
func (r *setRepository) AssignQuote(quoteID, setID int64) error {
	_, err := r.db.Exec(`
		INSERT INTO set_relationships (quote_id, set_id, date_added)
		VALUES (?, ?, ?)
		ON CONFLICT (quote_id, set_id) DO NOTHING
	`, quoteID, setID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to assign quote to set: %w", err)
	}
	return nil
}

// UnassignQuote removes the pair if present; removing a missing pair succeeds.
func (r *setRepository) UnassignQuote(quoteID, setID int64) error {
	_, err := r.db.Exec(`
		DELETE FROM set_relationships WHERE quote_id = ? AND set_id = ?
	`, quoteID, setID)
	if err != nil {
		return fmt.Errorf("failed to unassign quote from set: %w", err)
	}
	return nil
}

func (r *setRepository) SetsForQuote(quoteID int64) ([]int64, error) {
	rows, err := r.db.Query(`
		SELECT set_id FROM set_relationships WHERE quote_id = ? ORDER BY set_id
	`, quoteID)
	if err != nil {
		return nil, fmt.Errorf("failed to get sets for quote: %w", err)
	}
	defer rows.Close()

	setIDs := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan set ID: %w", err)
		}
		setIDs = append(setIDs, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating set IDs: %w", err)
	}

	return setIDs, nil
}

// SyncQuoteSets rewrites a quote's memberships by diffing against the current
// state: only added and removed pairs are written.
func (r *setRepository) SyncQuoteSets(quoteID int64, setIDs []int64) error {
	current, err := r.SetsForQuote(quoteID)
	if err != nil {
		return err
	}

	currentSet := make(map[int64]bool, len(current))
	for _, id := range current {
		currentSet[id] = true
	}
	wantedSet := make(map[int64]bool, len(setIDs))
	for _, id := range setIDs {
		wantedSet[id] = true
	}

	for _, id := range setIDs {
		if !currentSet[id] {
			if err := r.AssignQuote(quoteID, id); err != nil {
				return err
			}
		}
	}
	for _, id := range current {
		if !wantedSet[id] {
			if err := r.UnassignQuote(quoteID, id); err != nil {
				return err
			}
		}
	}

	return nil
}

// EnsureDefaultSet seeds the default set if it does not exist yet and returns its ID.
func (r *setRepository) EnsureDefaultSet() (int64, error) {
	existing, err := r.GetBySlug(DefaultSetSlug)
	if err != nil {
		return 0, err
	}
	if existing != nil {
		return existing.ID, nil
	}

	return r.Create(SetInput{
		Name:        DefaultSetName,
		Slug:        DefaultSetSlug,
		Description: "Default quote set",
	})
}

func (r *setRepository) uniqueSlug(slug string, excludeID int64) (string, error) {
	if slug == "" {
		slug = "set"
	}

	base := slug
	for counter := 1; ; counter++ {
		var existingID int64
		err := r.db.QueryRow(`
			SELECT id FROM sets WHERE set_slug = ? AND id != ?
		`, slug, excludeID).Scan(&existingID)
		if err == sql.ErrNoRows {
			return slug, nil
		}
		if err != nil {
			return "", fmt.Errorf("failed to check slug uniqueness: %w", err)
		}

		slug = fmt.Sprintf("%s-%d", base, counter)
	}
}

func setResult(row *sql.Row, operation string) (*Set, error) {
	var s Set
	err := row.Scan(&s.ID, &s.Name, &s.Slug, &s.Description, &s.DateCreated, &s.DateModified)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to %s: %w", operation, err)
	}
	return &s, nil
}
