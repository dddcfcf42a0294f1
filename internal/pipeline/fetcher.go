package pipeline

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/ppiankov/docket/internal/util"
)

const defaultMaxBytes = 5_000_000

// Fetcher downloads court documents published on portals as HTML or text
type Fetcher struct {
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
	robots     *util.RobotsChecker
}

// NewFetcher creates a Fetcher. With respectRobots set every URL is checked
// against the host's robots.txt before it is requested.
func NewFetcher(timeout time.Duration, userAgent string, maxBytes int64, respectRobots bool, httpProxy, httpsProxy string) *Fetcher {
	client := util.NewHTTPClient(timeout, httpProxy, httpsProxy)
	client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		if len(via) >= 3 {
			return fmt.Errorf("stopped after 3 redirects")
		}
		return nil
	}

	if maxBytes <= 0 {
		maxBytes = defaultMaxBytes
	}

	f := &Fetcher{
		httpClient: client,
		userAgent:  userAgent,
		maxBytes:   maxBytes,
	}
	if respectRobots {
		f.robots = util.NewRobotsChecker(userAgent, client)
	}
	return f
}

// FetchResult is a downloaded document
type FetchResult struct {
	Body        string
	ContentType string
	FinalURL    string

	// Filename is the last path segment of FinalURL, used in prompts and
	// parsing errors
	Filename string
}

// Fetch retrieves the document at rawURL
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*FetchResult, error) {
	if f.robots != nil {
		allowed, err := f.robots.Allowed(ctx, rawURL)
		if err != nil {
			return nil, fmt.Errorf("check robots.txt: %w", err)
		}
		if !allowed {
			return nil, fmt.Errorf("fetching %s is disallowed by robots.txt", rawURL)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,text/plain;q=0.9,*/*;q=0.5")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status: %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	finalURL := resp.Request.URL.String()
	return &FetchResult{
		Body:        string(body),
		ContentType: resp.Header.Get("Content-Type"),
		FinalURL:    finalURL,
		Filename:    documentName(finalURL),
	}, nil
}

// IsRemote reports whether a document reference is an http(s) URL
func IsRemote(ref string) bool {
	lower := strings.ToLower(ref)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

func documentName(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	name := path.Base(strings.TrimSuffix(parsed.Path, "/"))
	if name == "." || name == "/" || name == "" {
		return parsed.Host
	}
	return name
}
