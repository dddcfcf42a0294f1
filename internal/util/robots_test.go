package util

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func TestRobotsChecker_Allowed(t *testing.T) {
	var robotsHits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			robotsHits.Add(1)
			_, _ = fmt.Fprint(w, "User-agent: docket\nDisallow: /sealed/\n\nUser-agent: *\nDisallow: /\n")
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	checker := NewRobotsChecker("docket/0.1 (+https://example.org)", server.Client())
	ctx := context.Background()

	allowed, err := checker.Allowed(ctx, server.URL+"/cases/24CR00981.html")
	if err != nil {
		t.Fatalf("Allowed() error = %v", err)
	}
	if !allowed {
		t.Error("expected public case page to be allowed for docket")
	}

	allowed, err = checker.Allowed(ctx, server.URL+"/sealed/juvenile.html")
	if err != nil {
		t.Fatalf("Allowed() error = %v", err)
	}
	if allowed {
		t.Error("expected sealed path to be disallowed")
	}

	if robotsHits.Load() != 1 {
		t.Errorf("robots.txt fetched %d times, want 1", robotsHits.Load())
	}
}

func TestRobotsChecker_MissingRobotsAllowsAll(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	checker := NewRobotsChecker("docket", server.Client())
	allowed, err := checker.Allowed(context.Background(), server.URL+"/anything")
	if err != nil {
		t.Fatalf("Allowed() error = %v", err)
	}
	if !allowed {
		t.Error("expected allow when robots.txt is missing")
	}
}

func TestProductName(t *testing.T) {
	tests := map[string]string{
		"docket/0.1 (+https://example.org)": "docket",
		"docket":                            "docket",
		"":                                  "",
	}
	for in, want := range tests {
		if got := productName(in); got != want {
			t.Errorf("productName(%q) = %q, want %q", in, got, want)
		}
	}
}
