package router

import "strings"

// contentTypeFor returns the MIME type spec.md §4.3 assigns by suffix,
// falling back to text/plain for anything else.
func contentTypeFor(path string) string {
	switch {
	case strings.HasSuffix(path, ".html"), strings.HasSuffix(path, ".htm"):
		return "text/html"
	case strings.HasSuffix(path, ".css"):
		return "text/css"
	case strings.HasSuffix(path, ".jpg"), strings.HasSuffix(path, ".jpeg"):
		return "image/jpeg"
	case strings.HasSuffix(path, ".png"):
		return "image/png"
	default:
		return "text/plain"
	}
}
