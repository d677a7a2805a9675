package display

import (
	"testing"

	"github.com/quoteflex/quoteflex/app/database"
)

func newSelector(t *testing.T) (*Selector, database.QuoteRepository, database.SetRepository) {
	t.Helper()

	db, err := database.NewConnection(":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, _, err := database.RunMigrations(db); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	quoteRepo := database.NewQuoteRepository(db)
	setRepo := database.NewSetRepository(db)
	return NewSelector(quoteRepo, setRepo), quoteRepo, setRepo
}

func TestSelector_Run_Unrestricted(t *testing.T) {
	selector, quoteRepo, _ := newSelector(t)

	quoteRepo.Create(database.QuoteInput{Text: "Any quote", Author: "Author A"})

	q, err := selector.Run(Criteria{})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if q == nil {
		t.Fatal("Expected a quote, got nil")
	}
	if q.Text != "Any quote" {
		t.Errorf("Expected 'Any quote', got %q", q.Text)
	}
}

func TestSelector_Run_SetScoped(t *testing.T) {
	selector, quoteRepo, setRepo := newSelector(t)

	memberID, _ := quoteRepo.Create(database.QuoteInput{Text: "In the set", Author: "Author A"})
	quoteRepo.Create(database.QuoteInput{Text: "Outside the set", Author: "Author B"})

	setID, err := setRepo.Create(database.SetInput{Name: "Morning"})
	if err != nil {
		t.Fatalf("Create set failed: %v", err)
	}
	if err := setRepo.AssignQuote(memberID, setID); err != nil {
		t.Fatalf("AssignQuote failed: %v", err)
	}

	q, err := selector.Run(Criteria{SetSlug: "morning"})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if q == nil {
		t.Fatal("Expected a quote, got nil")
	}
	if q.Text != "In the set" {
		t.Errorf("Expected the set member, got %q", q.Text)
	}
}

func TestSelector_Run_UnknownSlug(t *testing.T) {
	selector, quoteRepo, _ := newSelector(t)

	quoteRepo.Create(database.QuoteInput{Text: "Any quote", Author: "Author A"})

	// An unknown slug yields an empty outcome, never a fallback to other quotes
	q, err := selector.Run(Criteria{SetSlug: "does-not-exist"})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if q != nil {
		t.Errorf("Expected nil for unknown slug, got %+v", q)
	}
}

func TestSelector_Run_SetSlugBeatsCategory(t *testing.T) {
	selector, quoteRepo, setRepo := newSelector(t)

	memberID, _ := quoteRepo.Create(database.QuoteInput{Text: "Set quote", Author: "Author A"})
	quoteRepo.Create(database.QuoteInput{Text: "Category quote", Author: "Author B", Category: "wisdom"})

	setID, _ := setRepo.Create(database.SetInput{Name: "Priority"})
	setRepo.AssignQuote(memberID, setID)

	// When both criteria are present, set slug wins
	q, err := selector.Run(Criteria{SetSlug: "priority", Category: "wisdom"})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if q == nil {
		t.Fatal("Expected a quote, got nil")
	}
	if q.Text != "Set quote" {
		t.Errorf("Expected set-scoped quote, got %q", q.Text)
	}
}

func TestSelector_Run_CategoryScoped(t *testing.T) {
	selector, quoteRepo, _ := newSelector(t)

	quoteRepo.Create(database.QuoteInput{Text: "Wisdom quote", Author: "Author A", Category: "wisdom"})
	quoteRepo.Create(database.QuoteInput{Text: "Humor quote", Author: "Author B", Category: "humor"})

	q, err := selector.Run(Criteria{Category: "humor"})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if q == nil {
		t.Fatal("Expected a quote, got nil")
	}
	if q.Category != "humor" {
		t.Errorf("Expected category 'humor', got %q", q.Category)
	}
}

func TestSelector_Run_EmptySet(t *testing.T) {
	selector, quoteRepo, setRepo := newSelector(t)

	quoteRepo.Create(database.QuoteInput{Text: "Loose quote", Author: "Author A"})
	setRepo.Create(database.SetInput{Name: "Empty"})

	q, err := selector.Run(Criteria{SetSlug: "empty"})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if q != nil {
		t.Errorf("Expected nil from empty set, got %+v", q)
	}
}
