package response

import (
	"bytes"
	"fmt"
	"net/textproto"
	"strconv"

	"github.com/nocturne-http/webserv/internal/headers"
)

type writerState int

const (
	stateStart writerState = iota
	stateStatusWritten
	stateHeadersWritten
	stateBodyWritten
)

// Writer assembles one HTTP/1.1 response message into an in-memory
// buffer. Unlike writing straight to a socket, the event loop never blocks
// on I/O, so every response is built fully in memory here and then handed
// to the connection's outbound buffer for the loop to drain as the socket
// allows.
type Writer struct {
	buf   bytes.Buffer
	state writerState
}

// NewWriter returns a Writer ready to build one response.
func NewWriter() *Writer {
	return &Writer{}
}

// WriteStatusLine writes "HTTP/1.1 <code> <reason>\r\n". It must be the
// first call made on a fresh Writer.
func (w *Writer) WriteStatusLine(code StatusCode) error {
	if w.state != stateStart {
		return fmt.Errorf("response: status line already written")
	}
	fmt.Fprintf(&w.buf, "HTTP/1.1 %d %s\r\n", code, Text(code))
	w.state = stateStatusWritten
	return nil
}

// WriteHeaders writes every stored header field followed by the blank
// line that ends the header block, with each name in canonical form
// ("Content-Type") even though Headers stores names lower-cased.
// Connection: keep-alive is always present, per spec.md §4.3.
func (w *Writer) WriteHeaders(h *headers.Headers) error {
	if w.state != stateStatusWritten {
		return fmt.Errorf("response: must write status line before headers")
	}

	if _, ok := h.Get("Connection"); !ok {
		h.Set("Connection", "keep-alive")
	}

	for key, values := range h.All() {
		name := textproto.CanonicalMIMEHeaderKey(key)
		for _, v := range values {
			fmt.Fprintf(&w.buf, "%s: %s\r\n", name, v)
		}
	}
	w.buf.WriteString("\r\n")
	w.state = stateHeadersWritten
	return nil
}

// WriteBody appends the response body. It may be empty.
func (w *Writer) WriteBody(body []byte) error {
	if w.state != stateHeadersWritten {
		return fmt.Errorf("response: must write headers before body")
	}
	w.buf.Write(body)
	w.state = stateBodyWritten
	return nil
}

// Bytes returns the assembled response message. Valid once the body (or
// headers, for a zero-length response) has been written.
func (w *Writer) Bytes() []byte {
	return w.buf.Bytes()
}

// Build assembles a complete response message in one call: status line,
// Content-Type and Content-Length headers plus any extra headers, and the
// body. This is the entry point the router and CGI subsystem use, since
// they always have the whole body in hand before any bytes reach the
// connection's outbound buffer.
func Build(code StatusCode, contentType string, extra *headers.Headers, body []byte) []byte {
	w := NewWriter()
	_ = w.WriteStatusLine(code)

	h := extra
	if h == nil {
		h = headers.New()
	}
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}
	h.Set("Content-Length", strconv.Itoa(len(body)))

	_ = w.WriteHeaders(h)
	_ = w.WriteBody(body)
	return w.Bytes()
}

// BuildError renders a built-in HTML error response for code, used
// whenever no usable custom error page is configured.
func BuildError(code StatusCode, message string) []byte {
	if message == "" {
		message = Text(code)
	}
	body := []byte(fmt.Sprintf("<html><head><title>%d %s</title></head>"+
		"<body><h1>%d %s</h1></body></html>", code, Text(code), code, message))
	return Build(code, "text/html", nil, body)
}

// BuildRedirect renders a redirect response with a Location header and a
// zero-length body, per spec.md §4.3 step 2.
func BuildRedirect(code StatusCode, location string) []byte {
	h := headers.New()
	h.Set("Location", location)
	return Build(code, "text/plain", h, nil)
}
