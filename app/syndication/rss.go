package syndication

import (
	"html"
	"net/url"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/mmcdole/gofeed/rss"
)

var textOnly = bluemonday.StrictPolicy()

type rssFormat struct {
	feed *rss.Feed
}

func (f *rssFormat) baseTags() Channel {
	feed := f.feed
	tags := Channel{}
	tags.set("title", feed.Title)
	tags.set("link", feed.Link)
	tags.set("description", feed.Description)
	tags.set("language", feed.Language)
	tags.set("copyright", feed.Copyright)
	tags.set("managingEditor", feed.ManagingEditor)
	tags.set("webMaster", feed.WebMaster)
	tags.set("pubDate", feed.PubDate)
	tags.set("lastBuildDate", feed.LastBuildDate)
	tags.set("generator", feed.Generator)
	tags.set("docs", feed.Docs)
	tags.set("ttl", feed.TTL)
	if feed.Image != nil {
		tags.set("image", feed.Image.URL)
	}
	return tags
}

func (f *rssFormat) titles(limit int) []Title {
	titles := []Title{}
	for i, item := range f.feed.Items {
		if limit > 0 && i >= limit {
			break
		}
		title := decode(item.Title)
		if title == "" {
			continue
		}
		titles = append(titles, Title{Title: title, Link: decode(item.Link)})
	}
	return titles
}

func (f *rssFormat) entries(limit int) []Entry {
	entries := []Entry{}
	for i, item := range f.feed.Items {
		if limit > 0 && i >= limit {
			break
		}

		entry := Entry{
			Title:       decode(item.Title),
			Link:        decode(item.Link),
			Description: decode(item.Description),
			Content:     decode(item.Content),
			Image:       itemImage(item.Custom["image"]),
			Thumbnail:   mediaThumbnail(item.Extensions),
			Keywords:    decode(mediaKeywords(item.Extensions)),
		}

		for _, enc := range enclosures(item) {
			if enc == nil || enc.URL == "" {
				continue
			}
			if strings.Contains(strings.ToLower(enc.Type), "image") {
				if entry.Thumbnail == "" {
					entry.Thumbnail = enc.URL
				}
			} else if entry.Enclosure == "" {
				entry.Enclosure = enc.URL
			}
		}

		entries = append(entries, entry)
	}
	return entries
}

func enclosures(item *rss.Item) []*rss.Enclosure {
	if len(item.Enclosures) > 0 {
		return item.Enclosures
	}
	if item.Enclosure != nil {
		return []*rss.Enclosure{item.Enclosure}
	}
	return nil
}

// itemImage reads the text of a non-standard <image> element, which may
// wrap the address in child tags. Anything but an absolute http(s) URL is dropped.
func itemImage(raw string) string {
	if strings.Contains(raw, "<") {
		raw = textOnly.Sanitize(raw)
	}
	value := decode(raw)
	if value == "" {
		return ""
	}

	u, err := url.Parse(value)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return ""
	}
	return value
}

func (c Channel) set(key, value string) {
	if value = decode(value); value != "" {
		c[key] = value
	}
}

func decode(s string) string {
	return strings.TrimSpace(html.UnescapeString(s))
}
