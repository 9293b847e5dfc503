package fpl

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestCurrentGameweek(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/bootstrap-static/" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"events":[
			{"id":25,"name":"Gameweek 25","deadline_time":"2025-02-08T17:30:00Z","is_current":false,"is_next":false,"finished":true},
			{"id":26,"name":"Gameweek 26","deadline_time":"2025-02-15T13:30:00Z","is_current":true,"is_next":false,"finished":false}
		]}`))
	}))
	defer ts.Close()

	client := NewClientWithBaseURL(ts.URL)
	epoch, err := client.Current(context.Background())
	if err != nil {
		t.Fatalf("Current failed: %v", err)
	}
	if epoch.Label != "GW26" {
		t.Fatalf("label = %q", epoch.Label)
	}
	want := time.Date(2025, 2, 8, 17, 30, 0, 0, time.UTC)
	if epoch.Start == nil || !epoch.Start.Equal(want) {
		t.Fatalf("start = %v, want %v", epoch.Start, want)
	}
}

func TestCurrentGameweekFirstWeek(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"events":[
			{"id":1,"name":"Gameweek 1","deadline_time":"2025-08-15T17:30:00Z","is_current":true,"is_next":false,"finished":false}
		]}`))
	}))
	defer ts.Close()

	client := NewClientWithBaseURL(ts.URL)
	epoch, err := client.Current(context.Background())
	if err != nil {
		t.Fatalf("Current failed: %v", err)
	}
	if epoch.Start != nil {
		t.Fatalf("gameweek 1 should have no prior boundary, got %v", epoch.Start)
	}
}

func TestCurrentGameweekNoCurrent(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"events":[]}`))
	}))
	defer ts.Close()

	client := NewClientWithBaseURL(ts.URL)
	if _, err := client.Current(context.Background()); err == nil {
		t.Fatal("expected error when no gameweek is current")
	}
}

func TestCurrentGameweekCached(t *testing.T) {
	hits := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte(`{"events":[
			{"id":26,"name":"Gameweek 26","deadline_time":"2025-02-15T13:30:00Z","is_current":true,"is_next":false,"finished":false}
		]}`))
	}))
	defer ts.Close()

	client := NewClientWithBaseURL(ts.URL)
	for i := 0; i < 3; i++ {
		if _, err := client.Current(context.Background()); err != nil {
			t.Fatalf("Current failed: %v", err)
		}
	}
	if hits != 1 {
		t.Fatalf("expected 1 upstream hit, got %d", hits)
	}
}
