// Package response builds and writes HTTP/1.1 response messages.
package response

import "strconv"

// StatusCode is an HTTP response status code.
type StatusCode int

const (
	StatusOK                  StatusCode = 200
	StatusCreated              StatusCode = 201
	StatusNoContent            StatusCode = 204
	StatusMovedPermanently     StatusCode = 301
	StatusFound                StatusCode = 302
	StatusBadRequest           StatusCode = 400
	StatusForbidden            StatusCode = 403
	StatusNotFound             StatusCode = 404
	StatusMethodNotAllowed     StatusCode = 405
	StatusPayloadTooLarge      StatusCode = 413
	StatusInternalServerError  StatusCode = 500
	StatusNotImplemented       StatusCode = 501
	StatusBadGateway           StatusCode = 502
	StatusGatewayTimeout       StatusCode = 504
)

var statusText = map[StatusCode]string{
	StatusOK:                 "OK",
	StatusCreated:            "Created",
	StatusNoContent:          "No Content",
	StatusMovedPermanently:   "Moved Permanently",
	StatusFound:              "Found",
	StatusBadRequest:         "Bad Request",
	StatusForbidden:          "Forbidden",
	StatusNotFound:           "Not Found",
	StatusMethodNotAllowed:   "Method Not Allowed",
	StatusPayloadTooLarge:    "Payload Too Large",
	StatusInternalServerError: "Internal Server Error",
	StatusNotImplemented:     "Not Implemented",
	StatusBadGateway:         "Bad Gateway",
	StatusGatewayTimeout:     "Gateway Timeout",
}

// Text returns the reason phrase for code, or "Unknown Status" if code is
// not one this engine emits.
func Text(code StatusCode) string {
	if t, ok := statusText[code]; ok {
		return t
	}
	return "Unknown Status"
}

func (c StatusCode) IsError() bool { return c >= 400 }

// ParseStatusCode extracts the numeric code from a rendered response
// message's status line, for callers (e.g. the event loop's metrics
// recording) that only have the finished bytes in hand. It returns 0 if
// data doesn't start with a well-formed "HTTP/1.1 <code> " status line.
func ParseStatusCode(data []byte) StatusCode {
	const prefix = "HTTP/1.1 "
	if len(data) < len(prefix)+3 || string(data[:len(prefix)]) != prefix {
		return 0
	}
	n, err := strconv.Atoi(string(data[len(prefix) : len(prefix)+3]))
	if err != nil {
		return 0
	}
	return StatusCode(n)
}
