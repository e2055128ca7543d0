package model

import "errors"

// Poster mirroring limits. OMDb poster URLs are third-party and may go
// away; the worker copies them into our own bucket at a bounded size.
const (
	MaxPosterSizeBytes = int64(10 * 1024 * 1024)

	PosterMaxWidth = 600

	PosterFolder = "posters"
	PosterExt    = ".jpg"

	ContentTypeJPEG = "image/jpeg"

	PosterCacheControl = "public, max-age=31536000"
)

var (
	ErrPosterTooLarge    = errors.New("poster exceeds size limit")
	ErrInvalidPosterType = errors.New("unsupported poster content type")
	ErrPosterFetchFailed = errors.New("failed to fetch poster from source")
)

// IsAllowedImageType reports whether a downloaded poster can be decoded.
func IsAllowedImageType(contentType string) bool {
	switch contentType {
	case "image/jpeg", "image/png", "image/gif", "image/webp":
		return true
	}
	return false
}
