package quotable

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestClient_Search_SendsQueryParams(t *testing.T) {
	var gotQuery, gotLimit string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("query")
		gotLimit = r.URL.Query().Get("limit")
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"results": []}`)
	}))
	t.Cleanup(server.Close)

	client := NewClient(server.URL, 5*time.Second, "test-agent")

	results, err := client.Search(context.Background(), "courage", 25)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if gotQuery != "courage" {
		t.Errorf("Expected query 'courage', got %q", gotQuery)
	}
	if gotLimit != "25" {
		t.Errorf("Expected limit '25', got %q", gotLimit)
	}
	// Empty result list comes back as an empty slice, not nil or an error
	if results == nil || len(results) != 0 {
		t.Errorf("Expected empty slice, got %v", results)
	}
}

func TestClient_Search_SetsUserAgent(t *testing.T) {
	var gotAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"results": []}`)
	}))
	t.Cleanup(server.Close)

	client := NewClient(server.URL, 5*time.Second, "QuoteFlex/1.0")

	if _, err := client.Search(context.Background(), "any", 1); err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if gotAgent != "QuoteFlex/1.0" {
		t.Errorf("Expected configured user agent, got %q", gotAgent)
	}
}

func TestClient_Random_SingleObjectBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"_id": "s1", "content": "Single quote", "author": "Someone", "length": 12}`)
	}))
	t.Cleanup(server.Close)

	client := NewClient(server.URL, 5*time.Second, "test-agent")

	q, err := client.Random(context.Background())
	if err != nil {
		t.Fatalf("Random failed: %v", err)
	}
	if q.Content != "Single quote" {
		t.Errorf("Expected 'Single quote', got %q", q.Content)
	}
}

func TestClient_Random_ArrayBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `[{"_id": "a1", "content": "Array quote", "author": "Someone", "length": 11}]`)
	}))
	t.Cleanup(server.Close)

	client := NewClient(server.URL, 5*time.Second, "test-agent")

	q, err := client.Random(context.Background())
	if err != nil {
		t.Fatalf("Random failed: %v", err)
	}
	if q.Content != "Array quote" {
		t.Errorf("Expected 'Array quote', got %q", q.Content)
	}
}

func TestClient_Random_EmptyArray(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `[]`)
	}))
	t.Cleanup(server.Close)

	client := NewClient(server.URL, 5*time.Second, "test-agent")

	if _, err := client.Random(context.Background()); err == nil {
		t.Error("Expected error for empty response")
	}
}

func TestClient_Search_NonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	t.Cleanup(server.Close)

	client := NewClient(server.URL, 5*time.Second, "test-agent")

	if _, err := client.Search(context.Background(), "any", 1); err == nil {
		t.Error("Expected error for non-200 status")
	}
}
