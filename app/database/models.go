package database

import (
	"time"
)

const (
	SourceTypeManual = "manual"
	SourceTypeAPI    = "api"

	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Quote represents a quote record in the database
type Quote struct {
	ID                int64
	Text              string
	Author            string
	AuthorDescription string
	Source            string
	SourceType        string // "manual" or "api"
	APISource         string // External API name when SourceType is "api"
	Category          string
	Status            string // "active" or "inactive"
	DateAdded         time.Time
	DateModified      time.Time
}

// Set represents a named quote grouping in the database
type Set struct {
	ID           int64
	Name         string
	Slug         string
	Description  string
	DateCreated  time.Time
	DateModified time.Time
}

// QuoteInput carries the fields accepted when creating a quote. Text and
// Author are required; everything else falls back to defaults.
type QuoteInput struct {
	Text              string
	Author            string
	AuthorDescription string
	Source            string
	SourceType        string
	APISource         string
	Category          string
	Status            string
}

// QuoteUpdate is a partial update: nil means "field not supplied", a non-nil
// pointer to an empty string means "explicitly cleared".
type QuoteUpdate struct {
	Text              *string
	Author            *string
	AuthorDescription *string
	Source            *string
	Category          *string
	Status            *string
}

// QuoteFilter holds listing and counting criteria. Search matches quote text
// or author as a case-insensitive substring. Limit <= 0 disables pagination.
type QuoteFilter struct {
	Status     string
	Category   string
	SourceType string
	Search     string
	OrderBy    string
	Order      string
	Limit      int
	Offset     int
}

type SetInput struct {
	Name        string
	Slug        string
	Description string
}

type SetUpdate struct {
	Name        *string
	Slug        *string
	Description *string
}
