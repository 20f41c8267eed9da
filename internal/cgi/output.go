package cgi

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/nocturne-http/webserv/internal/headers"
	"github.com/nocturne-http/webserv/internal/response"
)

// BuildResponse turns a CGI child's full stdout capture into an HTTP
// response message, per spec.md §4.4: a leading CGI-header block
// separated from the body by a blank line, or (if no blank line is found)
// the entire output treated as a text/plain body.
func BuildResponse(output []byte) []byte {
	sep := []byte("\r\n\r\n")
	idx := bytes.Index(output, sep)
	if idx == -1 {
		sep = []byte("\n\n")
		idx = bytes.Index(output, sep)
	}
	if idx == -1 {
		return response.Build(response.StatusOK, "text/plain", nil, output)
	}

	headerBlock := output[:idx]
	body := output[idx+len(sep):]

	h := headers.New()
	code := response.StatusOK
	contentType := ""

	for _, line := range bytes.Split(headerBlock, []byte("\n")) {
		line = bytes.TrimRight(line, "\r")
		if len(line) == 0 {
			continue
		}
		parts := bytes.SplitN(line, []byte(":"), 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(string(parts[0]))
		val := strings.TrimSpace(string(parts[1]))

		switch {
		case strings.EqualFold(key, "Status"):
			if fields := strings.Fields(val); len(fields) > 0 {
				if n, err := strconv.Atoi(fields[0]); err == nil {
					code = response.StatusCode(n)
				}
			}
		case strings.EqualFold(key, "Content-Type"):
			contentType = val
		default:
			h.Set(key, val)
		}
	}

	return response.Build(code, contentType, h, body)
}

// TimeoutResponse renders the fixed 504 response for a CGI script that
// exceeded its deadline, per spec.md §4.4.
func TimeoutResponse() []byte {
	return response.BuildError(response.StatusGatewayTimeout, "")
}
