package detail

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFetchDecodesProductPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("asin") != "B00TEST" {
			t.Errorf("unexpected asin: %q", r.URL.Query().Get("asin"))
		}
		if r.URL.Query().Get("type") != "product" {
			t.Errorf("unexpected type: %q", r.URL.Query().Get("type"))
		}
		fmt.Fprint(w, `{"product":{"title":"Test Desk","feature_bullets":["Dual motor","Steel frame"]}}`)
	}))
	defer srv.Close()

	c, err := NewClient("key", srv.URL)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	rec, err := c.Fetch(context.Background(), "B00TEST", "amazon.com")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if rec.Title != "Test Desk" {
		t.Fatalf("unexpected title: %q", rec.Title)
	}
	if len(rec.FeatureBullets) != 2 || rec.FeatureBullets[1] != "Steel frame" {
		t.Fatalf("unexpected bullets: %#v", rec.FeatureBullets)
	}
	if len(rec.Raw) == 0 {
		t.Fatalf("raw payload should be preserved")
	}
}

func TestFetchFailsOnAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad asin", http.StatusBadRequest)
	}))
	defer srv.Close()

	c, _ := NewClient("key", srv.URL)
	if _, err := c.Fetch(context.Background(), "NOPE", "amazon.com"); err == nil {
		t.Fatalf("expected error on non-success status")
	}
}

func TestNewClientRequiresKey(t *testing.T) {
	if _, err := NewClient("", ""); err == nil {
		t.Fatalf("expected error without api key")
	}
}
