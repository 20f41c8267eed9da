package request

import "github.com/nocturne-http/webserv/internal/headers"

var crlf = []byte("\r\n")

// State is the parser's position in the spec.md §4.2 state machine:
// REQUEST_LINE -> HEADERS -> (BODY | CHUNKED | COMPLETE).
type State int

const (
	StateRequestLine State = iota
	StateHeaders
	StateBody
	StateChunked
	StateComplete
)

// Parser incrementally decodes one HTTP request from a byte stream. It
// never re-examines a consumed byte and never blocks: Parse is driven by
// the event loop each time more bytes arrive on the connection, in chunks
// of whatever size happened to be available to read(2).
type Parser struct {
	state       State
	req         *Request
	maxBodySize int64

	bodyWant int64 // remaining bytes to fill Content-Length body
	chunk    chunkDecoder
	pending  []byte // received bytes no state has consumed yet
}

// New returns a parser ready to read a request, enforcing maxBodySize as
// the cap on any Content-Length or chunked body.
func New(maxBodySize int64) *Parser {
	p := &Parser{maxBodySize: maxBodySize}
	p.Reset()
	return p
}

// Reset returns the parser to REQUEST_LINE with all fields cleared. Any
// bytes received past the previous request's completion are not preserved
// (pipelining is not supported, per spec.md §4.2).
func (p *Parser) Reset() {
	p.state = StateRequestLine
	p.req = &Request{Headers: headers.New()}
	p.bodyWant = 0
	p.chunk = chunkDecoder{}
	p.pending = nil
}

// State reports the parser's current state.
func (p *Parser) State() State { return p.state }

// Complete reports whether a full request has been parsed.
func (p *Parser) Complete() bool { return p.state == StateComplete }

// Request returns the request built so far. It is only meaningful once
// Complete reports true.
func (p *Parser) Request() *Request { return p.req }

// Parse feeds data to the state machine, advancing through as many states
// as the available bytes allow. Bytes that do not yet form a whole line or
// chunk are kept and examined again together with the next call's data, so
// Parse always takes all of data and returns len(data); bytes that arrive
// past the end of a completed request are dropped. Calling Parse
// repeatedly with arbitrarily small slices of the same overall stream
// yields the same final request as calling it once with the whole stream.
func (p *Parser) Parse(data []byte) (int, error) {
	p.pending = append(p.pending, data...)
	consumed := 0

	for consumed < len(p.pending) {
		n, err := p.step(p.pending[consumed:])
		if err != nil {
			p.pending = p.pending[consumed:]
			return len(data), err
		}
		if n == 0 {
			break
		}
		consumed += n
		if p.state == StateComplete {
			break
		}
	}

	if p.state == StateComplete {
		p.pending = nil
	} else {
		p.pending = p.pending[consumed:]
	}
	return len(data), nil
}

func (p *Parser) step(data []byte) (int, error) {
	switch p.state {
	case StateRequestLine:
		return p.stepRequestLine(data)
	case StateHeaders:
		return p.stepHeaders(data)
	case StateBody:
		return p.stepBody(data)
	case StateChunked:
		return p.stepChunked(data)
	default: // StateComplete
		return 0, nil
	}
}

func (p *Parser) stepRequestLine(data []byte) (int, error) {
	method, target, version, consumed, found, ok := parseRequestLine(data)
	if !found {
		return 0, nil
	}
	if !ok {
		p.req.Malformed = true
		p.state = StateComplete
		return consumed, nil
	}

	p.req.Method = method
	p.req.Target = target
	p.req.Version = version
	p.req.Path, p.req.Query = splitTarget(target)

	p.state = StateHeaders
	return consumed, nil
}

func (p *Parser) stepHeaders(data []byte) (int, error) {
	consumed, done, err := p.req.Headers.Parse(data)
	if err != nil {
		p.req.Malformed = true
		p.state = StateComplete
		return consumed, nil
	}
	if !done {
		return consumed, nil
	}

	switch {
	case p.req.IsChunked():
		p.state = StateChunked
	case p.req.ContentLength() > 0:
		cl := p.req.ContentLength()
		if cl > p.maxBodySize {
			p.req.Malformed = true
			p.state = StateComplete
			break
		}
		p.bodyWant = cl
		p.state = StateBody
	default:
		// Content-Length absent, zero, or invalid: no body.
		p.state = StateComplete
	}

	return consumed, nil
}

func (p *Parser) stepBody(data []byte) (int, error) {
	take := p.bodyWant
	if int64(len(data)) < take {
		take = int64(len(data))
	}
	if take == 0 {
		p.state = StateComplete
		return 0, nil
	}

	p.req.Body = append(p.req.Body, data[:take]...)
	p.bodyWant -= take

	if p.bodyWant == 0 {
		p.state = StateComplete
	}
	return int(take), nil
}

func (p *Parser) stepChunked(data []byte) (int, error) {
	consumed, done, err := p.chunk.decode(data, &p.req.Body, p.maxBodySize)
	if err != nil {
		p.req.Malformed = true
		p.state = StateComplete
		return consumed, nil
	}
	if done {
		p.state = StateComplete
	}
	return consumed, nil
}
