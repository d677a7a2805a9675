package quotable

import (
	"context"
	"time"
)

// SourceName is recorded as api_source on every imported quote.
const SourceName = "quotable"

// apiQuote is the raw shape returned by the quotable API.
type apiQuote struct {
	ID      string   `json:"_id"`
	Content string   `json:"content"`
	Author  string   `json:"author"`
	Tags    []string `json:"tags"`
	Length  int      `json:"length"`
}

type searchResponse struct {
	Results []apiQuote `json:"results"`
}

// Candidate is an API result translated to the internal quote shape, with
// duplicate annotation against the stored collection.
type Candidate struct {
	Text        string   `json:"text"`
	Author      string   `json:"author"`
	Tags        []string `json:"tags"`
	Length      int      `json:"length"`
	ExternalID  string   `json:"external_id"`
	IsDuplicate bool     `json:"is_duplicate"`
}

// ImportResult aggregates a bulk import. Errors holds a bounded list of
// human-readable failure descriptions.
type ImportResult struct {
	Success int      `json:"success"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors"`
}

// SearchCache is the expiring key-value store consulted before hitting the
// network. A nil cache disables caching entirely.
type SearchCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
}
