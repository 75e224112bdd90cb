package syndication

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/mmcdole/gofeed/atom"
	"github.com/mmcdole/gofeed/rss"
)

const fetchTimeout = 30 * time.Second

// Reader fetches one feed document and exposes its entries regardless of dialect.
// A Reader is not safe for concurrent use; create one per feed.
type Reader struct {
	client    *http.Client
	userAgent string

	kind   Format
	parsed format
}

func NewReader(client *http.Client, userAgent string) *Reader {
	if client == nil {
		client = &http.Client{Timeout: fetchTimeout}
	}
	return &Reader{
		client:    client,
		userAgent: userAgent,
	}
}

// Open downloads url and parses it. Any previously loaded document is discarded.
func (r *Reader) Open(ctx context.Context, url string) error {
	r.reset()

	if url == "" {
		return fmt.Errorf("%w: empty url", ErrFetch)
	}

	data, err := r.fetch(ctx, url)
	if err != nil {
		return err
	}

	return r.OpenBytes(data)
}

// OpenBytes parses an already fetched document
func (r *Reader) OpenBytes(data []byte) error {
	r.reset()

	switch gofeed.DetectFeedType(bytes.NewReader(data)) {
	case gofeed.FeedTypeRSS:
		feed, err := (&rss.Parser{}).Parse(bytes.NewReader(data))
		if err != nil {
			return fmt.Errorf("%w: %v", ErrParse, err)
		}
		r.kind = FormatRSS
		r.parsed = &rssFormat{feed: feed}
	case gofeed.FeedTypeAtom:
		feed, err := (&atom.Parser{}).Parse(bytes.NewReader(data))
		if err != nil {
			return fmt.Errorf("%w: %v", ErrParse, err)
		}
		r.kind = FormatAtom
		r.parsed = &atomFormat{feed: feed}
	case gofeed.FeedTypeJSON:
		return fmt.Errorf("%w: json feed", ErrUnsupportedFormat)
	default:
		root, err := rootElement(data)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrParse, err)
		}
		return fmt.Errorf("%w: root element <%s>", ErrUnsupportedFormat, root)
	}

	return nil
}

func (r *Reader) IsLoaded() bool {
	return r.parsed != nil
}

func (r *Reader) Format() Format {
	return r.kind
}

func (r *Reader) BaseTags() (Channel, error) {
	if !r.IsLoaded() {
		return nil, ErrNotLoaded
	}
	return r.parsed.baseTags(), nil
}

// Titles returns title/link pairs in document order. A limit of 0 means no limit.
func (r *Reader) Titles(limit int) ([]Title, error) {
	if !r.IsLoaded() {
		return nil, ErrNotLoaded
	}
	return r.parsed.titles(limit), nil
}

// Entries returns normalized entries in document order. A limit of 0 means no limit.
func (r *Reader) Entries(limit int) ([]Entry, error) {
	if !r.IsLoaded() {
		return nil, ErrNotLoaded
	}
	return r.parsed.entries(limit), nil
}

func (r *Reader) reset() {
	r.kind = FormatUnknown
	r.parsed = nil
}

func (r *Reader) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrFetch, err)
	}

	req.Header.Set("User-Agent", r.userAgent)
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml;q=0.9, text/xml;q=0.8, */*;q=0.5")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: HTTP error: %d %s", ErrFetch, resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response body: %v", ErrFetch, err)
	}

	return data, nil
}

// rootElement returns the local name of the first element, or an error when
// the document is not well-formed up to that point
func rootElement(data []byte) (string, error) {
	decoder := xml.NewDecoder(bytes.NewReader(data))
	decoder.Strict = false
	decoder.CharsetReader = func(_ string, input io.Reader) (io.Reader, error) { return input, nil }

	for {
		tok, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			return "", errors.New("document has no root element")
		}
		if err != nil {
			return "", err
		}
		if start, ok := tok.(xml.StartElement); ok {
			return start.Name.Local, nil
		}
	}
}
