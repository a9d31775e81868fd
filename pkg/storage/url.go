package storage

import (
	"fmt"
	"net/url"
	"strings"
)

// URLBuilder turns object keys into public URLs. It needs no provider connection.
type URLBuilder struct {
	base *url.URL
}

// NewURLBuilder parses publicURL once. It fails with ErrConfiguration unless publicURL is absolute.
func NewURLBuilder(publicURL string) (*URLBuilder, error) {
	base, err := url.Parse(publicURL)
	if err != nil {
		return nil, newError("url", ErrConfiguration, "invalid public URL", err)
	}
	if !base.IsAbs() || base.Host == "" {
		return nil, newError("url", ErrConfiguration, fmt.Sprintf("public URL %q is not an absolute URL", publicURL), nil)
	}
	return &URLBuilder{base: base}, nil
}

// URL returns the base URL with its path replaced by key. Query and fragment are dropped.
func (b *URLBuilder) URL(key string) string {
	u := url.URL{
		Scheme: b.base.Scheme,
		User:   b.base.User,
		Host:   b.base.Host,
		Path:   "/" + strings.TrimLeft(key, "/"),
	}
	return u.String()
}
