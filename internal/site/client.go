// Package site wraps the HTTP client shared by every request made against the
// logo catalogue and its asset hosts.
package site

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/italolelis/football_logos/internal/logo"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	maxIdleConnsPerHost = 16
)

// Client issues browser-like GET requests. It is safe for concurrent use and
// pools connections across all callers.
type Client struct {
	httpClient *http.Client
	userAgent  string
	referer    string
}

// NewClient creates a client that sends the given referer on every request.
// An empty userAgent selects DefaultUserAgent.
func NewClient(referer, userAgent string) *Client {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	tr := http.DefaultTransport.(*http.Transport).Clone()
	tr.MaxIdleConnsPerHost = maxIdleConnsPerHost

	return &Client{
		httpClient: &http.Client{Transport: otelhttp.NewTransport(tr)},
		userAgent:  userAgent,
		referer:    referer,
	}
}

// NewClientWithHTTP creates a client on top of an existing *http.Client.
func NewClientWithHTTP(hc *http.Client, referer string) *Client {
	return &Client{httpClient: hc, userAgent: DefaultUserAgent, referer: referer}
}

// Get performs a GET request. The response is returned for every status code;
// the caller owns the body. timeout bounds the whole exchange including the
// body read and is ignored when zero.
func (c *Client) Get(ctx context.Context, url string, timeout time.Duration) (*http.Response, context.CancelFunc, error) {
	cancel := context.CancelFunc(func() {})
	if timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, timeout)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		cancel()

		return nil, nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	if c.referer != "" {
		req.Header.Set("Referer", c.referer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		cancel()

		return nil, nil, err
	}

	return resp, cancel, nil
}

// GetDocument fetches an HTML page and parses it. Non-2xx responses are
// returned as *logo.HTTPError.
func (c *Client) GetDocument(ctx context.Context, url string, timeout time.Duration) (*goquery.Document, error) {
	resp, cancel, err := c.Get(ctx, url, timeout)
	if err != nil {
		return nil, err
	}
	defer cancel()
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &logo.HTTPError{URL: url, StatusCode: resp.StatusCode, Status: resp.Status}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse html from %s: %w", url, err)
	}

	return doc, nil
}
