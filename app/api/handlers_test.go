package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/quoteflex/quoteflex/app/database"
	"github.com/quoteflex/quoteflex/app/display"
	"github.com/quoteflex/quoteflex/app/quotable"
)

const testAPIKey = "test-key"

// fakeSource is a canned QuoteSource for handler tests.
type fakeSource struct {
	searchResults []quotable.Candidate
	searchErr     error
	importErr     error
}

func (s *fakeSource) Search(ctx context.Context, query string, limit int) ([]quotable.Candidate, error) {
	return s.searchResults, s.searchErr
}

func (s *fakeSource) Random(ctx context.Context) (*quotable.Candidate, error) {
	if len(s.searchResults) == 0 {
		return nil, s.searchErr
	}
	return &s.searchResults[0], nil
}

func (s *fakeSource) ImportOne(candidate quotable.Candidate) (int64, error) {
	if s.importErr != nil {
		return 0, s.importErr
	}
	return 1, nil
}

func (s *fakeSource) BulkImport(candidates []quotable.Candidate) quotable.ImportResult {
	return quotable.ImportResult{Success: len(candidates), Errors: []string{}}
}

type testEnv struct {
	server    *gin.Engine
	quoteRepo database.QuoteRepository
	setRepo   database.SetRepository
	source    *fakeSource
}

func newTestEnv(t *testing.T) *testEnv {
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
	source := &fakeSource{}

	handler := NewHandler(quoteRepo, setRepo,
		display.NewSelector(quoteRepo, setRepo), source, display.DefaultSettings())

	return &testEnv{
		server:    NewServer(handler, testAPIKey),
		quoteRepo: quoteRepo,
		setRepo:   setRepo,
		source:    source,
	}
}

func (e *testEnv) request(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", testAPIKey)

	w := httptest.NewRecorder()
	e.server.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode response body: %v", err)
	}
	return body
}

func TestAuthMiddleware_MissingKey(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest("GET", "/api/quotes", nil)
	w := httptest.NewRecorder()
	env.server.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 without API key, got %d", w.Code)
	}
}

func TestAuthMiddleware_WrongKey(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest("GET", "/api/quotes", nil)
	req.Header.Set("X-API-Key", "wrong-key")
	w := httptest.NewRecorder()
	env.server.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 with wrong API key, got %d", w.Code)
	}
}

func TestAuthMiddleware_BearerToken(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest("GET", "/api/quotes", nil)
	req.Header.Set("Authorization", "Bearer "+testAPIKey)
	w := httptest.NewRecorder()
	env.server.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected 200 with Bearer token, got %d", w.Code)
	}
}

func TestGetDisplayQuote_Empty(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest("GET", "/display", nil)
	w := httptest.NewRecorder()
	env.server.ServeHTTP(w, req)

	// No quotes is a valid empty state, not an error
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	body := decodeBody(t, w)
	if body["quote"] != nil {
		t.Errorf("Expected null quote, got %v", body["quote"])
	}
	if body["settings"] == nil {
		t.Error("Expected settings in response")
	}
}

func TestGetDisplayQuote_WithQuote(t *testing.T) {
	env := newTestEnv(t)

	env.quoteRepo.Create(database.QuoteInput{Text: "Displayed quote", Author: "Author A"})

	req := httptest.NewRequest("GET", "/display", nil)
	w := httptest.NewRecorder()
	env.server.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	body := decodeBody(t, w)
	quote, ok := body["quote"].(map[string]interface{})
	if !ok {
		t.Fatalf("Expected quote object, got %v", body["quote"])
	}
	if quote["text"] != "Displayed quote" {
		t.Errorf("Expected 'Displayed quote', got %v", quote["text"])
	}
}

func TestAPICreateQuote(t *testing.T) {
	env := newTestEnv(t)

	w := env.request(t, "POST", "/api/quotes",
		`{"text": "Created via API", "author": "Author A", "category": "wisdom"}`)

	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}

	body := decodeBody(t, w)
	id := int64(body["id"].(float64))

	q, err := env.quoteRepo.Get(id)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if q == nil {
		t.Fatal("Expected quote to be stored")
	}
	if q.Category != "wisdom" {
		t.Errorf("Expected category 'wisdom', got %q", q.Category)
	}
}

func TestAPICreateQuote_WithSets(t *testing.T) {
	env := newTestEnv(t)

	setID, err := env.setRepo.Create(database.SetInput{Name: "Assigned"})
	if err != nil {
		t.Fatalf("Create set failed: %v", err)
	}

	w := env.request(t, "POST", "/api/quotes",
		`{"text": "Quote with sets", "author": "Author A", "set_ids": [`+itoa(setID)+`]}`)

	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}

	body := decodeBody(t, w)
	id := int64(body["id"].(float64))

	sets, err := env.setRepo.SetsForQuote(id)
	if err != nil {
		t.Fatalf("SetsForQuote failed: %v", err)
	}
	if len(sets) != 1 || sets[0] != setID {
		t.Errorf("Expected membership in set %d, got %v", setID, sets)
	}
}

func TestAPICreateQuote_MissingAuthor(t *testing.T) {
	env := newTestEnv(t)

	w := env.request(t, "POST", "/api/quotes", `{"text": "No author"}`)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for missing author, got %d", w.Code)
	}
}

func TestAPIGetQuote_NotFound(t *testing.T) {
	env := newTestEnv(t)

	w := env.request(t, "GET", "/api/quotes/9999", "")

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", w.Code)
	}
}

func TestAPIUpdateQuote(t *testing.T) {
	env := newTestEnv(t)

	id, _ := env.quoteRepo.Create(database.QuoteInput{Text: "Before", Author: "Author A"})

	w := env.request(t, "PATCH", "/api/quotes/"+itoa(id), `{"text": "After"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	q, _ := env.quoteRepo.Get(id)
	if q.Text != "After" {
		t.Errorf("Expected updated text, got %q", q.Text)
	}
}

func TestAPIUpdateQuote_EmptyBody(t *testing.T) {
	env := newTestEnv(t)

	id, _ := env.quoteRepo.Create(database.QuoteInput{Text: "Unchanged", Author: "Author A"})

	w := env.request(t, "PATCH", "/api/quotes/"+itoa(id), `{}`)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for empty update, got %d", w.Code)
	}
}

func TestAPIBulkQuoteAction_Deactivate(t *testing.T) {
	env := newTestEnv(t)

	id1, _ := env.quoteRepo.Create(database.QuoteInput{Text: "Quote one", Author: "Author A"})
	id2, _ := env.quoteRepo.Create(database.QuoteInput{Text: "Quote two", Author: "Author B"})

	w := env.request(t, "POST", "/api/quotes/bulk",
		`{"action": "deactivate", "ids": [`+itoa(id1)+`, `+itoa(id2)+`]}`)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	body := decodeBody(t, w)
	if body["affected"].(float64) != 2 {
		t.Errorf("Expected 2 affected, got %v", body["affected"])
	}

	q, _ := env.quoteRepo.Get(id1)
	if q.Status != database.StatusInactive {
		t.Errorf("Expected status 'inactive', got %q", q.Status)
	}
}

func TestAPIBulkQuoteAction_UnknownAction(t *testing.T) {
	env := newTestEnv(t)

	w := env.request(t, "POST", "/api/quotes/bulk", `{"action": "archive", "ids": [1]}`)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for unknown action, got %d", w.Code)
	}
}

func TestAPISetLifecycle(t *testing.T) {
	env := newTestEnv(t)

	w := env.request(t, "POST", "/api/sets", `{"name": "Morning Motivation"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	setID := int64(decodeBody(t, w)["id"].(float64))

	w = env.request(t, "GET", "/api/sets/"+itoa(setID), "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	set := decodeBody(t, w)["set"].(map[string]interface{})
	if set["slug"] != "morning-motivation" {
		t.Errorf("Expected slug 'morning-motivation', got %v", set["slug"])
	}

	quoteID, _ := env.quoteRepo.Create(database.QuoteInput{Text: "Member", Author: "Author A"})

	w = env.request(t, "POST", "/api/sets/"+itoa(setID)+"/quotes/"+itoa(quoteID), "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 for assign, got %d", w.Code)
	}

	w = env.request(t, "GET", "/api/sets/"+itoa(setID), "")
	set = decodeBody(t, w)["set"].(map[string]interface{})
	if set["quote_count"].(float64) != 1 {
		t.Errorf("Expected quote_count 1, got %v", set["quote_count"])
	}

	w = env.request(t, "DELETE", "/api/sets/"+itoa(setID)+"/quotes/"+itoa(quoteID), "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 for unassign, got %d", w.Code)
	}

	w = env.request(t, "DELETE", "/api/sets/"+itoa(setID), "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 for delete, got %d", w.Code)
	}

	w = env.request(t, "GET", "/api/sets/"+itoa(setID), "")
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 after delete, got %d", w.Code)
	}
}

func TestAPISearchQuotes(t *testing.T) {
	env := newTestEnv(t)
	env.source.searchResults = []quotable.Candidate{
		{Text: "Found quote", Author: "Author A", Tags: []string{"wisdom"}},
	}

	w := env.request(t, "GET", "/api/search?query=wisdom", "")

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	body := decodeBody(t, w)
	results := body["results"].([]interface{})
	if len(results) != 1 {
		t.Errorf("Expected 1 result, got %d", len(results))
	}
}

func TestAPISearchQuotes_MissingQuery(t *testing.T) {
	env := newTestEnv(t)

	w := env.request(t, "GET", "/api/search", "")

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for missing query, got %d", w.Code)
	}
}

func TestAPISearchQuotes_UpstreamFailure(t *testing.T) {
	env := newTestEnv(t)
	env.source.searchErr = context.DeadlineExceeded

	w := env.request(t, "GET", "/api/search?query=any", "")

	if w.Code != http.StatusBadGateway {
		t.Errorf("Expected 502 for upstream failure, got %d", w.Code)
	}
}

func TestAPIImportQuote_Duplicate(t *testing.T) {
	env := newTestEnv(t)
	env.source.importErr = quotable.ErrDuplicate

	w := env.request(t, "POST", "/api/import",
		`{"text": "Existing quote", "author": "Author A"}`)

	if w.Code != http.StatusConflict {
		t.Errorf("Expected 409 for duplicate import, got %d", w.Code)
	}
}

func TestAPIImportQuote(t *testing.T) {
	env := newTestEnv(t)

	w := env.request(t, "POST", "/api/import",
		`{"text": "Imported quote", "author": "Author A", "tags": ["life"]}`)

	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
}

func TestGetStats(t *testing.T) {
	env := newTestEnv(t)

	env.quoteRepo.Create(database.QuoteInput{Text: "Quote one", Author: "Author A"})
	env.quoteRepo.Create(database.QuoteInput{Text: "Quote two", Author: "Author B", Status: database.StatusInactive})
	env.setRepo.Create(database.SetInput{Name: "Some Set"})

	req := httptest.NewRequest("GET", "/stats", nil)
	w := httptest.NewRecorder()
	env.server.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	body := decodeBody(t, w)
	quotes := body["quotes"].(map[string]interface{})
	if quotes["total"].(float64) != 2 {
		t.Errorf("Expected total 2, got %v", quotes["total"])
	}
	if quotes["active"].(float64) != 1 {
		t.Errorf("Expected 1 active, got %v", quotes["active"])
	}
	if body["sets"].(float64) != 1 {
		t.Errorf("Expected 1 set, got %v", body["sets"])
	}
}

func TestGetHealth(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	env.server.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	body := decodeBody(t, w)
	if body["status"] != "ok" {
		t.Errorf("Expected status 'ok', got %v", body["status"])
	}
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
