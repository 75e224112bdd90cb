package syndication

import "errors"

var (
	ErrFetch             = errors.New("feed fetch failed")
	ErrParse             = errors.New("feed parse failed")
	ErrUnsupportedFormat = errors.New("unsupported feed format")
	ErrNotLoaded         = errors.New("feed not loaded")
)

type Format string

const (
	FormatUnknown Format = ""
	FormatRSS     Format = "rss"
	FormatAtom    Format = "atom"
)

// Channel holds non-empty feed-level metadata keyed by element name
type Channel map[string]string

// Title is the lightweight preview of an entry
type Title struct {
	Title string `json:"title"`
	Link  string `json:"link"`
}

// Entry is the normalized view of one RSS item or Atom entry.
// Empty fields mean the source did not carry the value.
type Entry struct {
	Title       string `json:"title"`
	Link        string `json:"link,omitempty"`
	Description string `json:"description,omitempty"`
	Content     string `json:"content,omitempty"`
	Image       string `json:"image,omitempty"`
	Thumbnail   string `json:"thumbnail,omitempty"`
	Enclosure   string `json:"enclosure,omitempty"`
	Keywords    string `json:"keywords,omitempty"` // comma separated
}

// format is the extraction schema of one document dialect
type format interface {
	baseTags() Channel
	titles(limit int) []Title
	entries(limit int) []Entry
}
