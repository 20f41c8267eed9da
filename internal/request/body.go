package request

import (
	"bytes"
	"errors"
	"strconv"
)

// chunkState is the sub-state machine for Transfer-Encoding: chunked
// bodies, per spec.md §4.2 CHUNKED.
type chunkState int

const (
	chunkSize chunkState = iota
	chunkData
	chunkDataCRLF
	chunkTrailer
)

var (
	errInvalidChunkSize   = errors.New("request: invalid chunk size")
	errInvalidChunkFormat = errors.New("request: malformed chunk terminator")
	errChunkSizeLineTooLong = errors.New("request: chunk size line too long")
	errBodyTooLarge       = errors.New("request: body exceeds configured maximum")
)

const maxChunkSizeLine = 1024 // bytes, guards against an unbounded size line

// chunkDecoder holds the sub-state that must survive across Parse calls:
// a chunk boundary can land anywhere a non-blocking read happens to stop.
type chunkDecoder struct {
	state     chunkState
	size      int
	read      int
	totalRead int64
}

// decode advances the chunked decoder using bytes from data, appending
// decoded body bytes to *body. It returns the number of input bytes
// consumed and whether the terminating zero-length chunk (and its
// trailing CRLF) has been seen.
func (c *chunkDecoder) decode(data []byte, body *[]byte, maxBodySize int64) (consumed int, done bool, err error) {
	for consumed < len(data) {
		switch c.state {
		case chunkSize:
			n, err := c.parseSizeLine(data[consumed:])
			if err != nil {
				return consumed, false, err
			}
			if n == 0 {
				return consumed, false, nil
			}
			consumed += n
			if c.size == 0 {
				c.state = chunkTrailer
			} else {
				c.state = chunkData
				c.read = 0
			}

		case chunkData:
			remaining := c.size - c.read
			available := len(data) - consumed
			take := remaining
			if available < take {
				take = available
			}

			if c.totalRead+int64(take) > maxBodySize {
				return consumed, false, errBodyTooLarge
			}

			*body = append(*body, data[consumed:consumed+take]...)
			consumed += take
			c.read += take
			c.totalRead += int64(take)

			if c.read == c.size {
				c.state = chunkDataCRLF
			} else {
				return consumed, false, nil
			}

		case chunkDataCRLF:
			if len(data)-consumed < 2 {
				return consumed, false, nil
			}
			if data[consumed] != '\r' || data[consumed+1] != '\n' {
				return consumed, false, errInvalidChunkFormat
			}
			consumed += 2
			c.state = chunkSize

		case chunkTrailer:
			// Optional trailer headers followed by a final CRLF. We don't
			// surface trailers to the request (spec doesn't require it),
			// just consume up through the blank line that ends them.
			if len(data)-consumed >= 2 && data[consumed] == '\r' && data[consumed+1] == '\n' {
				return consumed + 2, true, nil
			}
			end := bytes.Index(data[consumed:], []byte("\r\n\r\n"))
			if end == -1 {
				if len(data)-consumed > maxChunkSizeLine {
					return consumed, false, errors.New("request: trailer too large")
				}
				return consumed, false, nil
			}
			return consumed + end + 4, true, nil
		}
	}
	return consumed, false, nil
}

// parseSizeLine reads a CRLF-terminated "SIZE[;ext]" line and stores the
// parsed size in c.size. It returns 0 when more data is needed.
func (c *chunkDecoder) parseSizeLine(data []byte) (int, error) {
	limit := len(data)
	if limit > maxChunkSizeLine {
		limit = maxChunkSizeLine
	}

	idx := bytes.Index(data[:limit], crlf)
	if idx == -1 {
		if len(data) >= maxChunkSizeLine {
			return 0, errChunkSizeLineTooLong
		}
		return 0, nil
	}

	sizeField := data[:idx]
	if semi := bytes.IndexByte(sizeField, ';'); semi != -1 {
		sizeField = sizeField[:semi]
	}

	size, err := strconv.ParseInt(string(bytes.TrimSpace(sizeField)), 16, 64)
	if err != nil || size < 0 {
		return 0, errInvalidChunkSize
	}

	c.size = int(size)
	return idx + 2, nil
}
