package source

import (
	"crypto/md5"
	"encoding/hex"
	"net/url"
	"strings"
)

// NormalizeURL returns the canonical form used for storage and lookups:
// lower-cased with trailing slashes and backslashes removed
func NormalizeURL(u string) string {
	u = strings.ToLower(strings.TrimSpace(u))
	return strings.TrimRight(u, `/\`)
}

// Fingerprint is the hex md5 of the canonical URL
func Fingerprint(u string) string {
	sum := md5.Sum([]byte(NormalizeURL(u)))
	return hex.EncodeToString(sum[:])
}

// ValidateURL accepts absolute http and https URLs with a host
func ValidateURL(u string) error {
	parsed, err := url.Parse(u)
	if err != nil {
		return ErrInvalidURL
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return ErrInvalidURL
	}
	if parsed.Host == "" {
		return ErrInvalidURL
	}
	return nil
}
