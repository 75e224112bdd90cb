package cache

import "fmt"

// ContentPrefix covers every key derived from imported content; it is dropped
// wholesale after each import
const ContentPrefix = KeyPrefix + "content:"

func ArticlesKey(limit int) string {
	return fmt.Sprintf("%sarticles:%d", ContentPrefix, limit)
}

func FeedXMLKey(limit int) string {
	return fmt.Sprintf("%sfeed-xml:%d", ContentPrefix, limit)
}

func CategoryTreeKey(language string) string {
	return fmt.Sprintf("%scategory-tree:%s", KeyPrefix, language)
}
