package soundcloud

import (
	"net/url"
	"strings"
)

// ImageURLs derives the sized variants of an artwork or avatar URL.
//
// The API returns the "large" variant; the other sizes are obtained by
// substituting the size name in the URL.
type ImageURLs struct {
	base *url.URL
}

// NewImageURLs wraps a "large" image URL. base may be nil.
func NewImageURLs(base *url.URL) ImageURLs {
	return ImageURLs{base: base}
}

func imageURLsOf(j JSON) ImageURLs {
	u, _ := j.URLValue()
	return ImageURLs{base: u}
}

// IsZero reports whether there is no image.
func (i ImageURLs) IsZero() bool {
	return i.base == nil
}

// Mini is 16x16.
func (i ImageURLs) Mini() *url.URL { return i.withFormat("mini") }

// Tiny is 20x20 (18x18 for avatars).
func (i ImageURLs) Tiny() *url.URL { return i.withFormat("tiny") }

// Small is 32x32.
func (i ImageURLs) Small() *url.URL { return i.withFormat("small") }

// Badge is 47x47.
func (i ImageURLs) Badge() *url.URL { return i.withFormat("badge") }

// Large is 100x100, the variant returned by the API.
func (i ImageURLs) Large() *url.URL { return i.withFormat("large") }

// Crop is 400x400.
func (i ImageURLs) Crop() *url.URL { return i.withFormat("crop") }

// High is 500x500.
func (i ImageURLs) High() *url.URL { return i.withFormat("t500x500") }

func (i ImageURLs) withFormat(format string) *url.URL {
	if i.base == nil {
		return nil
	}
	u, err := url.Parse(strings.ReplaceAll(i.base.String(), "large", format))
	if err != nil {
		return nil
	}
	return u
}
