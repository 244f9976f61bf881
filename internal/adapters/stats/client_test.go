package stats

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHTTPClient_Hit(t *testing.T) {
	var got endpointHit
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/hit" || r.Method != http.MethodPost {
			t.Errorf("unexpected call: %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode hit body: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.Client(), srv.URL)
	if err := c.Hit(context.Background(), "eventboard", "/events/e1", "10.0.0.1"); err != nil {
		t.Fatalf("Hit() error = %v", err)
	}
	if got.App != "eventboard" || got.URI != "/events/e1" || got.IP != "10.0.0.1" {
		t.Errorf("hit body = %+v", got)
	}
	if _, err := time.Parse(timeLayout, got.Timestamp); err != nil {
		t.Errorf("timestamp %q does not match layout: %v", got.Timestamp, err)
	}
}

func TestHTTPClient_Hit_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.Client(), srv.URL)
	if err := c.Hit(context.Background(), "eventboard", "/events", "10.0.0.1"); err == nil {
		t.Fatal("Hit() accepted a 500 response")
	}
}

func TestHTTPClient_GetStats(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/stats" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("unique") != "true" {
			t.Errorf("unique = %q, want true", q.Get("unique"))
		}
		if len(q["uris"]) != 2 {
			t.Errorf("uris = %v, want 2 entries", q["uris"])
		}
		if _, err := time.Parse(timeLayout, q.Get("start")); err != nil {
			t.Errorf("start %q does not match layout: %v", q.Get("start"), err)
		}
		_ = json.NewEncoder(w).Encode([]map[string]any{
			{"app": "eventboard", "uri": "/events/e1", "hits": 7},
		})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.Client(), srv.URL)
	stats, err := c.GetStats(context.Background(),
		time.Now().Add(-time.Hour), time.Now(),
		[]string{"/events/e1", "/events/e2"}, true)
	if err != nil {
		t.Fatalf("GetStats() error = %v", err)
	}
	if len(stats) != 1 || stats[0].Hits != 7 {
		t.Fatalf("stats = %+v", stats)
	}
}
