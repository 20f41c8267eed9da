package response

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nocturne-http/webserv/internal/headers"
)

func TestBuildProducesWellFormedResponse(t *testing.T) {
	raw := Build(StatusOK, "text/html", nil, []byte("hi\n"))
	s := string(raw)

	assert.True(t, strings.HasPrefix(s, "HTTP/1.1 200 OK\r\n"))
	assert.Contains(t, s, "Content-Type: text/html\r\n")
	assert.Contains(t, s, "Content-Length: 3\r\n")
	assert.Contains(t, s, "Connection: keep-alive\r\n")
	assert.True(t, strings.HasSuffix(s, "\r\n\r\nhi\n"))
}

func TestBuildRedirectHasLocationAndNoBody(t *testing.T) {
	raw := BuildRedirect(StatusFound, "/new-place")
	s := string(raw)
	assert.Contains(t, s, "HTTP/1.1 302 Found\r\n")
	assert.Contains(t, s, "Location: /new-place\r\n")
	assert.Contains(t, s, "Content-Length: 0\r\n")
}

func TestBuildErrorUsesStatusText(t *testing.T) {
	raw := BuildError(StatusNotFound, "")
	assert.Contains(t, string(raw), "404 Not Found")
}

func TestWriterRejectsOutOfOrderWrites(t *testing.T) {
	w := NewWriter()
	err := w.WriteHeaders(headers.New())
	require.Error(t, err)
}

func TestWriterSetsDefaultKeepAlive(t *testing.T) {
	w := NewWriter()
	require.NoError(t, w.WriteStatusLine(StatusOK))
	require.NoError(t, w.WriteHeaders(headers.New()))
	require.NoError(t, w.WriteBody(nil))
	assert.Contains(t, string(w.Bytes()), "Connection: keep-alive")
}
