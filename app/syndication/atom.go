package syndication

import (
	"github.com/mmcdole/gofeed/atom"
)

type atomFormat struct {
	feed *atom.Feed
}

func (f *atomFormat) baseTags() Channel {
	feed := f.feed
	tags := Channel{}
	tags.set("title", feed.Title)
	tags.set("subtitle", feed.Subtitle)
	tags.set("id", feed.ID)
	tags.set("updated", feed.Updated)
	if len(feed.Links) > 0 && feed.Links[0] != nil {
		tags.set("link", feed.Links[0].Href)
		tags.set("rel", feed.Links[0].Rel)
	}
	if len(feed.Authors) > 0 && feed.Authors[0] != nil {
		tags.set("author", feed.Authors[0].Name)
		tags.set("email", feed.Authors[0].Email)
	}
	return tags
}

func (f *atomFormat) titles(limit int) []Title {
	titles := []Title{}
	for i, entry := range f.feed.Entries {
		if limit > 0 && i >= limit {
			break
		}
		title := decode(entry.Title)
		if title == "" {
			continue
		}
		titles = append(titles, Title{Title: title, Link: firstLink(entry.Links)})
	}
	return titles
}

// entries maps Atom entries onto Entry. Atom has no description element, so
// Description stays empty and the body lands in Content.
func (f *atomFormat) entries(limit int) []Entry {
	entries := []Entry{}
	for i, item := range f.feed.Entries {
		if limit > 0 && i >= limit {
			break
		}

		content := ""
		if item.Content != nil {
			content = decode(item.Content.Value)
		}
		if content == "" {
			content = decode(item.Summary)
		}

		entries = append(entries, Entry{
			Title:     decode(item.Title),
			Link:      firstLink(item.Links),
			Content:   content,
			Thumbnail: mediaThumbnail(item.Extensions),
			Keywords:  decode(mediaKeywords(item.Extensions)),
		})
	}
	return entries
}

func firstLink(links []*atom.Link) string {
	for _, link := range links {
		if link != nil && link.Href != "" {
			return decode(link.Href)
		}
	}
	return ""
}
