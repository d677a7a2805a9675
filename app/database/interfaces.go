package database

import (
	"errors"
)

// ErrNoFields is returned by partial updates that carry no fields at all.
var ErrNoFields = errors.New("no fields to update")

type QuoteRepository interface {
	Create(in QuoteInput) (int64, error)
	Get(id int64) (*Quote, error)
	Update(id int64, upd QuoteUpdate) error
	Delete(id int64) error
	DeleteMany(ids []int64) (int, error)
	SetStatusMany(ids []int64, status string) (int, error)

	List(filter QuoteFilter) ([]Quote, error)
	Count(filter QuoteFilter) (int, error)
	GetStats() (total int, active int, imported int, err error)

	DuplicateExists(text, author string) (bool, error)

	RandomFromSet(setID int64) (*Quote, error)
	RandomFromCategory(category string) (*Quote, error)
	Random() (*Quote, error)
}

type SetRepository interface {
	Create(in SetInput) (int64, error)
	Get(id int64) (*Set, error)
	GetBySlug(slug string) (*Set, error)
	Update(id int64, upd SetUpdate) error
	Delete(id int64) error
	List(orderBy, order string) ([]Set, error)
	GetSetCount() (int, error)

	QuoteCount(setID int64) (int, error)
	AssignQuote(quoteID, setID int64) error
	UnassignQuote(quoteID, setID int64) error
	SetsForQuote(quoteID int64) ([]int64, error)
	SyncQuoteSets(quoteID int64, setIDs []int64) error

	EnsureDefaultSet() (int64, error)
}
