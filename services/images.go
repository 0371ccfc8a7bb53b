package services

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultImageBaseURL is the TMDB image CDN root; sizes are appended to it.
const DefaultImageBaseURL = "https://image.tmdb.org/t/p"

// ImageURLs builds CDN links for image paths returned by the metadata API
type ImageURLs struct {
	Base string
}

// NewImageURLs creates an image URL builder rooted at base
func NewImageURLs(base string) ImageURLs {
	if base == "" {
		base = DefaultImageBaseURL
	}
	return ImageURLs{Base: strings.TrimSuffix(base, "/")}
}

// URL returns the CDN link for path at size (e.g. "w500"), or a placeholder
// sized 1:1.5 when path is empty.
func (i ImageURLs) URL(path, size string) string {
	if path != "" {
		return fmt.Sprintf("%s/%s%s", i.Base, size, path)
	}
	width, err := strconv.Atoi(strings.TrimPrefix(size, "w"))
	if err != nil || width <= 0 {
		width = 500
	}
	return fmt.Sprintf("https://via.placeholder.com/%dx%d?text=No+Image", width, width*3/2)
}

// FlagURL returns a small flag image for an ISO 3166-1 country code
func FlagURL(code string) string {
	return fmt.Sprintf("https://flagcdn.com/w40/%s.png", strings.ToLower(code))
}
