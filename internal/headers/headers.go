// Package headers implements incremental parsing and storage of HTTP
// header fields.
package headers

import (
	"bytes"
	"fmt"
	"strings"
)

var crlf = []byte("\r\n")

// Headers stores HTTP header fields. Lookups are case-insensitive per
// RFC 7230 §3.2, which lets Content-Length, Transfer-Encoding, Host and
// Content-Type always resolve regardless of how a client cased them.
type Headers struct {
	values map[string][]string
}

// New returns an empty header set.
func New() *Headers {
	return &Headers{values: make(map[string][]string)}
}

// Get returns the first value stored for key, if any.
func (h *Headers) Get(key string) (string, bool) {
	v := h.values[strings.ToLower(key)]
	if len(v) == 0 {
		return "", false
	}
	return v[0], true
}

// GetAll returns every value stored for key, in arrival order.
func (h *Headers) GetAll(key string) []string {
	return h.values[strings.ToLower(key)]
}

// All returns the underlying map for iteration (e.g. by a response writer
// that needs to emit every stored header).
func (h *Headers) All() map[string][]string {
	return h.values
}

// Set replaces all values for key with a single value.
func (h *Headers) Set(key, value string) {
	h.values[strings.ToLower(key)] = []string{value}
}

// Add appends value to key without discarding existing values.
func (h *Headers) Add(key, value string) {
	key = strings.ToLower(key)
	h.values[key] = append(h.values[key], value)
}

// Del removes all values stored for key.
func (h *Headers) Del(key string) {
	delete(h.values, strings.ToLower(key))
}

// Parse consumes CRLF-terminated header lines from data, adding each to h,
// stopping at the first empty line. It returns the number of bytes
// consumed and whether the empty-line terminator was found. Parse may be
// called repeatedly with successive slices as more data arrives; bytes
// already consumed are never re-examined by the caller.
func (h *Headers) Parse(data []byte) (consumed int, done bool, err error) {
	for {
		idx := bytes.Index(data[consumed:], crlf)
		if idx == -1 {
			return consumed, false, nil
		}

		if idx == 0 {
			return consumed + 2, true, nil
		}

		line := data[consumed : consumed+idx]
		if line[0] == ' ' || line[0] == '\t' {
			return consumed, false, fmt.Errorf("headers: obsolete line folding not supported")
		}

		name, value, err := parseLine(line)
		if err != nil {
			return consumed, false, err
		}
		h.Add(name, value)

		consumed += idx + 2
	}
}

// parseLine splits a single header line on the first colon. The key is
// returned verbatim (lower-cased for storage happens in Add); the value is
// left-trimmed of surrounding ASCII whitespace.
func parseLine(line []byte) (string, string, error) {
	colon := bytes.IndexByte(line, ':')
	if colon == -1 {
		return "", "", fmt.Errorf("headers: malformed line, no colon: %q", line)
	}

	name := line[:colon]
	if bytes.ContainsAny(name, " \t") {
		return "", "", fmt.Errorf("headers: whitespace in field name: %q", name)
	}

	value := bytes.TrimLeft(line[colon+1:], " \t")
	return string(name), string(value), nil
}
