package shortener

import (
	"net/url"
	"strings"
)

// ValidateURL checks that rawURL is an absolute http(s) URL with a host.
// It returns the URL with surrounding whitespace removed; the rest is kept as given.
func ValidateURL(rawURL string) (string, error) {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return "", ErrInvalidURL
	}

	u, err := url.Parse(trimmed)
	if err != nil {
		return "", ErrInvalidURL
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	default:
		return "", ErrInvalidURL
	}

	if u.Host == "" {
		return "", ErrInvalidURL
	}

	return trimmed, nil
}
