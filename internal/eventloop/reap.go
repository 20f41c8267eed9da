//go:build linux
// +build linux

package eventloop

import (
	"time"

	"github.com/nocturne-http/webserv/internal/cgi"
	"github.com/nocturne-http/webserv/internal/response"
	"github.com/nocturne-http/webserv/internal/server"
)

// drainReaps consumes every completed reap report without blocking, the
// single-threaded loop's only interaction with the reap goroutines
// (spec.md §5).
func (l *Loop) drainReaps() {
	for {
		select {
		case res := <-l.reapCh:
			l.completeCGI(res)
		default:
			return
		}
	}
}

// completeCGI turns a reaped child's accumulated output (or, if it timed
// out, the fixed 504) into the connection's response.
func (l *Loop) completeCGI(res cgi.ReapResult) {
	c, ok := l.conns.Get(res.ConnFd)
	if !ok || c.CGI == nil {
		return
	}

	if res.Err != nil {
		l.log.Warn("cgi child exited with error", server.Field{Key: "error", Value: res.Err.Error()})
	}

	var data []byte
	if c.CGI.TimedOut {
		l.metrics.CGITimedOut.Add(1)
		data = cgi.TimeoutResponse()
	} else {
		data = cgi.BuildResponse(c.CGI.Output)
	}

	duration := time.Since(c.CGI.StartedAt)
	l.metrics.RecordRequest(int(response.ParseStatusCode(data)), duration)

	c.CGI = nil
	l.beginWrite(c, data)
}
