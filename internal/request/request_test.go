package request

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseAll(t *testing.T, maxBody int64, raw []byte) *Request {
	t.Helper()
	p := New(maxBody)
	_, err := p.Parse(raw)
	require.NoError(t, err)
	require.True(t, p.Complete())
	return p.Request()
}

func TestSimpleGetNoBody(t *testing.T) {
	raw := []byte("GET /index.html HTTP/1.1\r\nHost: x\r\n\r\n")
	req := parseAll(t, 1<<20, raw)

	assert.Equal(t, "GET", req.Method)
	assert.Equal(t, "/index.html", req.Path)
	assert.Equal(t, "HTTP/1.1", req.Version)
	assert.False(t, req.Malformed)
	assert.Empty(t, req.Body)
}

func TestContentLengthZeroSkipsBodyState(t *testing.T) {
	p := New(1 << 20)
	raw := []byte("POST /x HTTP/1.1\r\nContent-Length: 0\r\n\r\n")
	_, err := p.Parse(raw)
	require.NoError(t, err)
	assert.True(t, p.Complete())
	assert.Empty(t, p.Request().Body)
}

func TestFixedLengthBody(t *testing.T) {
	raw := []byte("POST /x HTTP/1.1\r\nContent-Length: 5\r\n\r\nhello")
	req := parseAll(t, 1<<20, raw)
	assert.Equal(t, "hello", string(req.Body))
}

func TestChunkedBody(t *testing.T) {
	raw := []byte("POST /x HTTP/1.1\r\nTransfer-Encoding: chunked\r\n\r\n5\r\nhello\r\n6\r\n world\r\n0\r\n\r\n")
	req := parseAll(t, 1<<20, raw)
	assert.Equal(t, "hello world", string(req.Body))
	assert.Equal(t, 11, len(req.Body))
}

func TestChunkedSingleZeroChunkYieldsEmptyBody(t *testing.T) {
	raw := []byte("POST /x HTTP/1.1\r\nTransfer-Encoding: chunked\r\n\r\n0\r\n\r\n")
	req := parseAll(t, 1<<20, raw)
	assert.Empty(t, req.Body)
}

func TestMalformedRequestLineCompletesWithoutError(t *testing.T) {
	p := New(1 << 20)
	_, err := p.Parse([]byte("GET\r\n\r\n"))
	require.NoError(t, err)
	assert.True(t, p.Complete())
	assert.True(t, p.Request().Malformed)
}

func TestResetClearsState(t *testing.T) {
	p := New(1 << 20)
	_, _ = p.Parse([]byte("GET /a HTTP/1.1\r\n\r\n"))
	require.True(t, p.Complete())

	p.Reset()
	assert.Equal(t, StateRequestLine, p.State())
	assert.False(t, p.Complete())
	assert.Empty(t, p.Request().Method)
}

// Monotonic parsing: any partition of the same byte stream into chunks,
// fed sequentially, yields the same final request as feeding it whole.
func TestParseIsInvariantUnderArbitraryChunking(t *testing.T) {
	raw := []byte("POST /upload HTTP/1.1\r\nHost: x\r\nTransfer-Encoding: chunked\r\n\r\n" +
		"4\r\ntest\r\n3\r\ning\r\n0\r\n\r\n")

	whole := New(1 << 20)
	_, err := whole.Parse(raw)
	require.NoError(t, err)
	require.True(t, whole.Complete())
	want := whole.Request()

	rng := rand.New(rand.NewSource(1))
	for trial := 0; trial < 20; trial++ {
		p := New(1 << 20)
		pos := 0
		for pos < len(raw) {
			n := 1 + rng.Intn(3)
			if pos+n > len(raw) {
				n = len(raw) - pos
			}
			_, err := p.Parse(raw[pos : pos+n])
			require.NoError(t, err)
			pos += n
		}
		require.True(t, p.Complete())
		got := p.Request()
		assert.Equal(t, want.Method, got.Method)
		assert.Equal(t, want.Path, got.Path)
		assert.Equal(t, string(want.Body), string(got.Body))
	}
}

func TestBodyExceedingMaxIsMalformed(t *testing.T) {
	p := New(4)
	_, err := p.Parse([]byte("POST /x HTTP/1.1\r\nContent-Length: 10\r\n\r\n"))
	require.NoError(t, err)
	assert.True(t, p.Complete())
	assert.True(t, p.Request().Malformed)
}
