package syndication

import (
	ext "github.com/mmcdole/gofeed/extensions"
)

// mediaThumbnail returns the url attribute of the first media:thumbnail,
// looking inside media:group when the item has none at top level
func mediaThumbnail(extensions ext.Extensions) string {
	media, ok := extensions["media"]
	if !ok {
		return ""
	}

	if url := thumbnailURL(media["thumbnail"]); url != "" {
		return url
	}

	for _, group := range media["group"] {
		if url := thumbnailURL(group.Children["thumbnail"]); url != "" {
			return url
		}
	}

	return ""
}

func mediaKeywords(extensions ext.Extensions) string {
	media, ok := extensions["media"]
	if !ok {
		return ""
	}

	for _, keywords := range media["keywords"] {
		if keywords.Value != "" {
			return keywords.Value
		}
	}

	for _, group := range media["group"] {
		for _, keywords := range group.Children["keywords"] {
			if keywords.Value != "" {
				return keywords.Value
			}
		}
	}

	return ""
}

func thumbnailURL(thumbnails []ext.Extension) string {
	for _, thumbnail := range thumbnails {
		if url := thumbnail.Attrs["url"]; url != "" {
			return url
		}
	}
	return ""
}
