package api

import (
	"context"
	"time"

	"github.com/quoteflex/quoteflex/app/database"
	"github.com/quoteflex/quoteflex/app/display"
	"github.com/quoteflex/quoteflex/app/quotable"
)

// QuoteSource is the slice of the quotable importer the handlers use.
type QuoteSource interface {
	Search(ctx context.Context, query string, limit int) ([]quotable.Candidate, error)
	Random(ctx context.Context) (*quotable.Candidate, error)
	ImportOne(candidate quotable.Candidate) (int64, error)
	BulkImport(candidates []quotable.Candidate) quotable.ImportResult
}

var _ QuoteSource = (*quotable.Importer)(nil)

type Handler struct {
	quoteRepo database.QuoteRepository
	setRepo   database.SetRepository
	selector  *display.Selector
	source    QuoteSource
	settings  display.Settings
}

type createQuoteRequest struct {
	Text              string  `json:"text" binding:"required"`
	Author            string  `json:"author" binding:"required"`
	AuthorDescription string  `json:"author_description"`
	Source            string  `json:"source"`
	Category          string  `json:"category"`
	Status            string  `json:"status" binding:"omitempty,oneof=active inactive"`
	SetIDs            []int64 `json:"set_ids"`
}

type updateQuoteRequest struct {
	Text              *string  `json:"text"`
	Author            *string  `json:"author"`
	AuthorDescription *string  `json:"author_description"`
	Source            *string  `json:"source"`
	Category          *string  `json:"category"`
	Status            *string  `json:"status" binding:"omitempty,oneof=active inactive"`
	SetIDs            *[]int64 `json:"set_ids"`
}

type bulkQuoteActionRequest struct {
	Action string  `json:"action" binding:"required,oneof=delete activate deactivate"`
	IDs    []int64 `json:"ids" binding:"required,min=1"`
}

type createSetRequest struct {
	Name        string `json:"name" binding:"required"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
}

type updateSetRequest struct {
	Name        *string `json:"name"`
	Slug        *string `json:"slug"`
	Description *string `json:"description"`
}

type syncQuoteSetsRequest struct {
	SetIDs []int64 `json:"set_ids"`
}

type importQuoteRequest struct {
	Text       string   `json:"text" binding:"required"`
	Author     string   `json:"author" binding:"required"`
	Tags       []string `json:"tags"`
	Length     int      `json:"length"`
	ExternalID string   `json:"external_id"`
}

type bulkImportRequest struct {
	Quotes []importQuoteRequest `json:"quotes" binding:"required,min=1,dive"`
}

type quoteView struct {
	ID                int64     `json:"id"`
	Text              string    `json:"text"`
	Author            string    `json:"author"`
	AuthorDescription string    `json:"author_description,omitempty"`
	Source            string    `json:"source,omitempty"`
	SourceType        string    `json:"source_type"`
	APISource         string    `json:"api_source,omitempty"`
	Category          string    `json:"category,omitempty"`
	Status            string    `json:"status"`
	DateAdded         time.Time `json:"date_added"`
	DateModified      time.Time `json:"date_modified"`
}

type setView struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	Description  string    `json:"description,omitempty"`
	QuoteCount   int       `json:"quote_count"`
	DateCreated  time.Time `json:"date_created"`
	DateModified time.Time `json:"date_modified"`
}

func toQuoteView(q database.Quote) quoteView {
	return quoteView{
		ID:                q.ID,
		Text:              q.Text,
		Author:            q.Author,
		AuthorDescription: q.AuthorDescription,
		Source:            q.Source,
		SourceType:        q.SourceType,
		APISource:         q.APISource,
		Category:          q.Category,
		Status:            q.Status,
		DateAdded:         q.DateAdded,
		DateModified:      q.DateModified,
	}
}

func toSetView(s database.Set, quoteCount int) setView {
	return setView{
		ID:           s.ID,
		Name:         s.Name,
		Slug:         s.Slug,
		Description:  s.Description,
		QuoteCount:   quoteCount,
		DateCreated:  s.DateCreated,
		DateModified: s.DateModified,
	}
}

func toCandidate(req importQuoteRequest) quotable.Candidate {
	return quotable.Candidate{
		Text:       req.Text,
		Author:     req.Author,
		Tags:       req.Tags,
		Length:     req.Length,
		ExternalID: req.ExternalID,
	}
}
