// Package lookup resolves scanned ISBNs against the Google Books volumes API.
package lookup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// ErrNoMatch is returned when the search yields no usable volume. The
// acquisition workflow treats every lookup failure the same way, so callers
// should not branch on anything more specific.
var ErrNoMatch = errors.New("no matching volume")

// Candidate is a lookup result proposed for acceptance, not yet a committed book.
type Candidate struct {
	Title    string `json:"title"`
	Author   string `json:"author"`
	ISBN     string `json:"isbn"`
	CoverURI string `json:"coverUri,omitempty"`
}

// GoogleBooksClient fetches book candidates from the Google Books volumes API.
type GoogleBooksClient struct {
	httpClient  *http.Client
	baseURL     string
	rateLimiter *rateLimiter
}

type rateLimiter struct {
	mu       sync.Mutex
	lastCall time.Time
	interval time.Duration
}

func newRateLimiter(interval time.Duration) *rateLimiter {
	return &rateLimiter{interval: interval}
}

func (r *rateLimiter) wait() {
	r.mu.Lock()
	defer r.mu.Unlock()

	since := time.Since(r.lastCall)
	if since < r.interval {
		time.Sleep(r.interval - since)
	}
	r.lastCall = time.Now()
}

// NewGoogleBooksClient creates a client with a request timeout and rate limiting.
func NewGoogleBooksClient(baseURL string, timeout time.Duration) *GoogleBooksClient {
	if baseURL == "" {
		baseURL = "https://www.googleapis.com"
	}
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &GoogleBooksClient{
		httpClient:  &http.Client{Timeout: timeout},
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		rateLimiter: newRateLimiter(time.Second),
	}
}

// NormalizeISBN strips the hyphens and spaces commonly typed into manual ISBN
// entry. Scanned barcodes are already bare digits and pass through unchanged.
func NormalizeISBN(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '-' || r == ' ' {
			return -1
		}
		return r
	}, strings.TrimSpace(s))
}

// Lookup issues a single volumes search filtered by ISBN and maps the first
// match into a Candidate. The decoded barcode string is used as the query term
// verbatim after trimming; no checksum or length validation is applied.
// No retries, no caching.
func (c *GoogleBooksClient) Lookup(ctx context.Context, isbn string) (*Candidate, error) {
	isbn = strings.TrimSpace(isbn)
	if isbn == "" {
		return nil, fmt.Errorf("empty ISBN: %w", ErrNoMatch)
	}

	c.rateLimiter.wait()

	searchURL := fmt.Sprintf("%s/books/v1/volumes?q=%s", c.baseURL, url.QueryEscape("isbn:"+isbn))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "Bookshelf/1.0 (https://github.com/hnedelkov/bookshelf)")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch volume data: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var result volumesResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if len(result.Items) == 0 {
		return nil, fmt.Errorf("isbn %s: %w", isbn, ErrNoMatch)
	}

	// Only the first match is consulted.
	return candidateFromVolume(&result.Items[0].VolumeInfo, isbn), nil
}

func candidateFromVolume(info *volumeInfo, isbn string) *Candidate {
	candidate := &Candidate{
		Title:  info.Title,
		Author: "Unknown Author",
		ISBN:   isbn,
	}
	if candidate.Title == "" {
		candidate.Title = "Unknown Title"
	}
	if len(info.Authors) > 0 {
		candidate.Author = info.Authors[0]
	}
	if info.ImageLinks != nil {
		// Prefer the larger thumbnail; always upgrade to a secure scheme.
		cover := info.ImageLinks.Thumbnail
		if cover == "" {
			cover = info.ImageLinks.SmallThumbnail
		}
		candidate.CoverURI = upgradeScheme(cover)
	}
	return candidate
}

func upgradeScheme(rawURL string) string {
	if strings.HasPrefix(rawURL, "http://") {
		return "https://" + strings.TrimPrefix(rawURL, "http://")
	}
	return rawURL
}

// Google Books API response types (internal)

type volumesResponse struct {
	TotalItems int      `json:"totalItems"`
	Items      []volume `json:"items"`
}

type volume struct {
	ID         string     `json:"id"`
	VolumeInfo volumeInfo `json:"volumeInfo"`
}

type volumeInfo struct {
	Title      string      `json:"title"`
	Authors    []string    `json:"authors"`
	ImageLinks *imageLinks `json:"imageLinks"`
}

type imageLinks struct {
	SmallThumbnail string `json:"smallThumbnail"`
	Thumbnail      string `json:"thumbnail"`
}
