// Package request implements the incremental HTTP/1.1 request parser: a
// state machine that is fed arbitrarily small byte slices as they arrive
// on a non-blocking socket and reports completion without ever blocking
// or re-examining a byte it has already consumed.
package request

import (
	"strconv"
	"strings"

	"github.com/nocturne-http/webserv/internal/headers"
)

// Request is the structured result of a completed parse. Malformed is set
// when the request line or headers could not be parsed; the router turns
// that into a 400-class response rather than the parser rejecting it
// outright, so that a connection in this state can still be torn down
// cleanly by the one code path that writes responses.
type Request struct {
	Method   string
	Target   string // raw request-target, query string included
	Path     string // request-target with any "?query" stripped
	Query    string
	Version  string
	Headers  *headers.Headers
	Body     []byte
	Malformed bool
}

// ContentLength returns the parsed Content-Length header value, or -1 if
// absent or invalid.
func (r *Request) ContentLength() int64 {
	v, ok := r.Headers.Get("Content-Length")
	if !ok {
		return -1
	}
	n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil || n < 0 {
		return -1
	}
	return n
}

// IsChunked reports whether Transfer-Encoding names "chunked", tolerating
// surrounding whitespace and mixed case the way real clients send it.
func (r *Request) IsChunked() bool {
	v, ok := r.Headers.Get("Transfer-Encoding")
	if !ok {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(v), "chunked")
}

// WantsClose reports whether the client asked for the connection to close
// via "Connection: close". It is accepted but, per spec, this engine does
// not have to honor it by actually closing (keep-alive is always offered).
func (r *Request) WantsClose() bool {
	v, ok := r.Headers.Get("Connection")
	return ok && strings.EqualFold(strings.TrimSpace(v), "close")
}

func splitTarget(target string) (path, query string) {
	if idx := strings.IndexByte(target, '?'); idx != -1 {
		return target[:idx], target[idx+1:]
	}
	return target, ""
}
