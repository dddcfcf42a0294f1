package util

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/temoto/robotstxt"
)

// RobotsChecker answers whether a court portal allows fetching a document
// URL. Parsed robots.txt files are kept per host for the checker's lifetime.
type RobotsChecker struct {
	mu         sync.RWMutex
	hosts      map[string]*robotstxt.RobotsData
	httpClient *http.Client
	userAgent  string
}

// NewRobotsChecker creates a checker that fetches robots.txt with client
func NewRobotsChecker(userAgent string, client *http.Client) *RobotsChecker {
	if client == nil {
		client = http.DefaultClient
	}
	return &RobotsChecker{
		hosts:      make(map[string]*robotstxt.RobotsData),
		httpClient: client,
		userAgent:  userAgent,
	}
}

// Allowed reports whether rawURL may be fetched. A robots.txt that cannot
// be retrieved allows everything; one that cannot be parsed is an error.
func (r *RobotsChecker) Allowed(ctx context.Context, rawURL string) (bool, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false, fmt.Errorf("parse URL: %w", err)
	}

	data, err := r.robots(ctx, parsed)
	if err != nil {
		return false, err
	}

	path := parsed.EscapedPath()
	if path == "" {
		path = "/"
	}
	return data.TestAgent(path, productName(r.userAgent)), nil
}

func (r *RobotsChecker) robots(ctx context.Context, target *url.URL) (*robotstxt.RobotsData, error) {
	host := target.Scheme + "://" + target.Host

	r.mu.RLock()
	data, ok := r.hosts[host]
	r.mu.RUnlock()
	if ok {
		return data, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, host+"/robots.txt", nil)
	if err != nil {
		return nil, fmt.Errorf("create robots request: %w", err)
	}
	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		// unreachable robots.txt: treat as allow-all, but do not remember it
		allowAll, _ := robotstxt.FromStatusAndBytes(http.StatusNotFound, nil)
		return allowAll, nil
	}
	defer func() { _ = resp.Body.Close() }()

	data, err = robotstxt.FromResponse(resp)
	if err != nil {
		return nil, fmt.Errorf("parse robots.txt for %s: %w", target.Host, err)
	}

	r.mu.Lock()
	r.hosts[host] = data
	r.mu.Unlock()
	return data, nil
}

// productName reduces "docket/0.1 (+https://...)" to "docket" for group matching
func productName(ua string) string {
	fields := strings.Fields(ua)
	if len(fields) == 0 {
		return ua
	}
	return strings.SplitN(fields[0], "/", 2)[0]
}
