// Package config holds the server configuration data model (spec.md §3)
// and the nginx-like text-file lexer/parser that produces it.
package config

// DefaultMaxBodySize is applied to any virtual server that doesn't declare
// client_max_body_size.
const DefaultMaxBodySize int64 = 1 << 20 // 1 MiB

// VirtualServer is one configured `server { ... }` block.
type VirtualServer struct {
	Port              int
	Host              string
	ServerNames       []string
	Root              string
	ErrorPages        map[int]string
	ClientMaxBodySize int64
	Locations         []Location
}

// Location is one configured `location <prefix> { ... }` block.
type Location struct {
	Prefix         string
	Root           string // set to the enclosing server's root by Normalize when empty
	Index          string
	Autoindex      bool
	Methods        map[string]bool // empty means "GET only", per spec.md §3
	RedirectCode   int
	RedirectTarget string
	CGIExtensions  []string
}

// HasRedirect reports whether the location carries a `return` directive.
func (l *Location) HasRedirect() bool {
	return l.RedirectCode != 0
}

// AllowsMethod reports whether method is permitted by this location, per
// spec.md §4.3 step 3: an empty method list means GET-only.
func (l *Location) AllowsMethod(method string) bool {
	if len(l.Methods) == 0 {
		return method == "GET"
	}
	return l.Methods[method]
}

// CGIExtensionMatch returns true if path's suffix names one of the
// location's configured CGI extensions.
func (l *Location) CGIExtensionMatch(path string) bool {
	for _, ext := range l.CGIExtensions {
		if len(path) >= len(ext) && path[len(path)-len(ext):] == ext {
			return true
		}
	}
	return false
}
