// Package conn holds the per-client connection record the event loop
// drives (spec.md §3) and the CGI sub-state that hangs off it while a
// script runs.
package conn

import (
	"os"
	"os/exec"
	"time"

	"github.com/nocturne-http/webserv/internal/request"
)

// CGIState is the sub-state attached to a Connection while a CGI script
// runs on its behalf. It is nil whenever no CGI is in flight.
type CGIState struct {
	Cmd       *exec.Cmd
	StdoutFd  int // read end of the child's stdout pipe, registered with the loop
	StdoutR   *os.File
	Output    []byte
	StartedAt time.Time
	Reaped    bool
	TimedOut  bool
}

// Connection is one accepted client socket and everything the loop needs
// to drive it: parser progress, the outbound buffer, and (transiently) a
// CGI sub-state. A Connection is in at most one of two modes at a time —
// reading/parsing, or writing/awaiting CGI — per spec.md §3's invariant.
type Connection struct {
	Fd           int
	ListenPort   int
	Parser       *request.Parser
	Outbound     []byte
	ReadyToWrite bool
	CGI          *CGIState
	LastActivity time.Time
}

// New returns a Connection ready to read its first request.
func New(fd, listenPort int, maxBodySize int64) *Connection {
	return &Connection{
		Fd:           fd,
		ListenPort:   listenPort,
		Parser:       request.New(maxBodySize),
		LastActivity: time.Now(),
	}
}

// BeginResponse installs data as the outbound buffer and marks the
// connection writable. It is an error to call this while a CGI is active;
// callers are expected to have cleared CGI state first.
func (c *Connection) BeginResponse(data []byte) {
	c.Outbound = data
	c.ReadyToWrite = true
}

// ResetForNextRequest clears parser state so the connection can read the
// next pipelined-free request, per spec.md §4.5 keep-alive.
func (c *Connection) ResetForNextRequest() {
	c.Parser.Reset()
	c.LastActivity = time.Now()
}
