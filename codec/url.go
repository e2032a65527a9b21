package codec

import (
	"errors"
	"net/url"
)

var errRelativeURL = errors.New("relative URL without a base")

// ParseURL parses an absolute URL. Relative references are rejected; the
// engine has no base to resolve them against.
func ParseURL(s string) (*url.URL, error) {
	u, err := url.Parse(s)
	if err != nil {
		return nil, err
	}
	if u.Scheme == "" {
		return nil, errRelativeURL
	}
	return u, nil
}

// FormatURL renders the URL in its serialized form.
func FormatURL(u *url.URL) string {
	return u.String()
}
