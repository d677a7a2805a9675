package quotable

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/quoteflex/quoteflex/app/database"
)

// ErrDuplicate is returned when an import candidate matches an already stored quote.
var ErrDuplicate = errors.New("quote already exists")

// Bulk import keeps at most this many per-item failure descriptions.
const maxImportErrors = 10

// QuoteStore is the slice of the quote repository the importer needs.
type QuoteStore interface {
	Create(in database.QuoteInput) (int64, error)
	DuplicateExists(text, author string) (bool, error)
}

// Importer translates quotable API results into stored quotes, annotating
// search results with duplicate flags and caching them between requests.
type Importer struct {
	client *Client
	quotes QuoteStore
	cache  SearchCache
	ttl    time.Duration
}

func NewImporter(client *Client, quotes QuoteStore, cache SearchCache, ttl time.Duration) *Importer {
	return &Importer{
		client: client,
		quotes: quotes,
		cache:  cache,
		ttl:    ttl,
	}
}

// Search returns translated candidates for a query, served from cache when a
// live entry exists. Duplicate flags are computed at fetch time and cached
// with the results.
func (im *Importer) Search(ctx context.Context, query string, limit int) ([]Candidate, error) {
	key := searchCacheKey(query, limit)

	if im.cache != nil {
		cached, err := im.cache.Get(ctx, key)
		if err != nil {
			slog.Warn("Cache read failed", "key", key, "error", err)
		} else if cached != "" {
			var candidates []Candidate
			if err := json.Unmarshal([]byte(cached), &candidates); err == nil {
				slog.Debug("Search served from cache", "query", query, "limit", limit, "results", len(candidates))
				return candidates, nil
			}
		}
	}

	results, err := im.client.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	candidates := make([]Candidate, 0, len(results))
	for _, raw := range results {
		candidate := translate(raw)

		isDuplicate, err := im.quotes.DuplicateExists(candidate.Text, candidate.Author)
		if err != nil {
			return nil, fmt.Errorf("failed to check duplicate: %w", err)
		}
		candidate.IsDuplicate = isDuplicate

		candidates = append(candidates, candidate)
	}

	if im.cache != nil {
		data, err := json.Marshal(candidates)
		if err == nil {
			if err := im.cache.Set(ctx, key, string(data), im.ttl); err != nil {
				slog.Warn("Cache write failed", "key", key, "error", err)
			}
		}
	}

	return candidates, nil
}

// Random fetches one random quote from the API with duplicate annotation.
func (im *Importer) Random(ctx context.Context) (*Candidate, error) {
	raw, err := im.client.Random(ctx)
	if err != nil {
		return nil, err
	}

	candidate := translate(*raw)

	isDuplicate, err := im.quotes.DuplicateExists(candidate.Text, candidate.Author)
	if err != nil {
		return nil, fmt.Errorf("failed to check duplicate: %w", err)
	}
	candidate.IsDuplicate = isDuplicate

	return &candidate, nil
}

// ImportOne stores a candidate as a quote with origin "api". Duplication is
// re-checked at import time; the check and the insert are separate
// statements, so two concurrent imports of the same candidate can both pass.
func (im *Importer) ImportOne(candidate Candidate) (int64, error) {
	isDuplicate, err := im.quotes.DuplicateExists(candidate.Text, candidate.Author)
	if err != nil {
		return 0, fmt.Errorf("failed to check duplicate: %w", err)
	}
	if isDuplicate {
		return 0, ErrDuplicate
	}

	return im.quotes.Create(database.QuoteInput{
		Text:       candidate.Text,
		Author:     candidate.Author,
		SourceType: database.SourceTypeAPI,
		APISource:  SourceName,
		Category:   strings.Join(candidate.Tags, ", "),
		Status:     database.StatusActive,
	})
}

// BulkImport imports candidates sequentially with no transactionality across
// the batch; earlier successes stand even if later items fail.
func (im *Importer) BulkImport(candidates []Candidate) ImportResult {
	result := ImportResult{Errors: []string{}}

	for _, candidate := range candidates {
		if _, err := im.ImportOne(candidate); err != nil {
			result.Failed++
			if len(result.Errors) < maxImportErrors {
				result.Errors = append(result.Errors,
					fmt.Sprintf("failed to import: %s", excerpt(candidate.Text, 10)))
			}
			continue
		}
		result.Success++
	}

	slog.Info("Bulk import completed",
		"total", len(candidates),
		"success", result.Success,
		"failed", result.Failed)

	return result
}

func translate(raw apiQuote) Candidate {
	tags := raw.Tags
	if tags == nil {
		tags = []string{}
	}
	return Candidate{
		Text:       raw.Content,
		Author:     raw.Author,
		Tags:       tags,
		Length:     raw.Length,
		ExternalID: raw.ID,
	}
}

func searchCacheKey(query string, limit int) string {
	hash := sha256.Sum256(fmt.Appendf(nil, "%s|%d", query, limit))
	return fmt.Sprintf("search:%x", hash[:8])
}

// excerpt returns the first maxWords words of text for failure descriptions.
func excerpt(text string, maxWords int) string {
	words := strings.Fields(text)
	if len(words) <= maxWords {
		return text
	}
	return strings.Join(words[:maxWords], " ") + "…"
}
