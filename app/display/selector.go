package display

import (
	"github.com/quoteflex/quoteflex/app/database"
)

// Criteria narrows which quotes a display surface may draw from. SetSlug
// takes precedence over Category; with neither set any active quote qualifies.
type Criteria struct {
	SetSlug  string
	Category string
}

// Selector picks one active quote for rendering. Selection is uniformly
// random per invocation with no determinism across calls.
type Selector struct {
	quoteRepo database.QuoteRepository
	setRepo   database.SetRepository
}

func NewSelector(quoteRepo database.QuoteRepository, setRepo database.SetRepository) *Selector {
	return &Selector{
		quoteRepo: quoteRepo,
		setRepo:   setRepo,
	}
}

// Run resolves the criteria in order: set slug, then category, then
// unrestricted. A nil, nil return means no quote qualified, which callers
// must render as an empty state rather than an error.
func (s *Selector) Run(criteria Criteria) (*database.Quote, error) {
	if criteria.SetSlug != "" {
		set, err := s.setRepo.GetBySlug(criteria.SetSlug)
		if err != nil {
			return nil, err
		}
		if set == nil {
			// Unknown slug is an empty outcome, not an error
			return nil, nil
		}
		return s.quoteRepo.RandomFromSet(set.ID)
	}

	if criteria.Category != "" {
		return s.quoteRepo.RandomFromCategory(criteria.Category)
	}

	return s.quoteRepo.Random()
}
