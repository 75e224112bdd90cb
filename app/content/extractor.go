package content

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-shiori/go-readability"
)

// Extractor pulls the main article body out of a web page. The importer uses
// it when a feed entry carries neither description nor content.
type Extractor struct {
	client    *http.Client
	userAgent string
}

func NewExtractor(client *http.Client, userAgent string) *Extractor {
	if client == nil {
		client = http.DefaultClient
	}
	return &Extractor{
		client:    client,
		userAgent: userAgent,
	}
}

// Extract downloads pageURL and returns the readable HTML body
func (e *Extractor) Extract(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", e.userAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	parsed, _ := url.Parse(pageURL)
	return e.Run(data, parsed)
}

// Run extracts the readable HTML body from an already downloaded page
func (e *Extractor) Run(data []byte, pageURL *url.URL) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("HTML data is empty")
	}

	article, err := readability.FromReader(bytes.NewReader(data), pageURL)
	if err != nil {
		return "", fmt.Errorf("failed to extract content: %w", err)
	}

	if article.Content == "" {
		return "", fmt.Errorf("no content extracted from HTML data")
	}

	slog.Debug("Content extracted successfully",
		"title", article.Title,
		"content_length", len(article.Content))

	return article.Content, nil
}
