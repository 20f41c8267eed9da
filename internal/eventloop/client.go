//go:build linux
// +build linux

package eventloop

import (
	"time"

	"golang.org/x/sys/unix"

	"github.com/nocturne-http/webserv/internal/config"
	"github.com/nocturne-http/webserv/internal/conn"
	"github.com/nocturne-http/webserv/internal/response"
	"github.com/nocturne-http/webserv/internal/router"
	"github.com/nocturne-http/webserv/internal/server"
)

// handleReadable drains a client socket's read readiness, level-triggered
// style: read(2) until EAGAIN, EOF, or the parser reports a complete
// request, feeding every chunk straight into the connection's resumable
// parser (spec.md §4.2).
func (l *Loop) handleReadable(c *conn.Connection) {
	for {
		buf := server.GetBuffer()
		n, err := unix.Read(c.Fd, buf)

		if n > 0 {
			c.LastActivity = time.Now()
			_, perr := c.Parser.Parse(buf[:n])
			server.PutBuffer(buf)

			if perr != nil {
				l.closeConn(c)
				return
			}
			if c.Parser.Complete() {
				l.dispatch(c)
				return
			}
			continue
		}

		server.PutBuffer(buf)

		if n == 0 {
			l.closeConn(c)
			return
		}
		if err == unix.EAGAIN {
			return
		}
		l.log.Error("client read failed", server.Field{Key: "error", Value: err.Error()})
		l.closeConn(c)
		return
	}
}

// dispatch routes a completed request and either begins writing a
// response or hands the connection off to the CGI subsystem.
func (l *Loop) dispatch(c *conn.Connection) {
	vs := config.SelectVirtualServer(l.servers, c.ListenPort)
	req := c.Parser.Request()

	out := router.Route(req, vs, l.metrics)
	switch out.Kind {
	case router.Respond:
		l.metrics.RecordRequest(int(response.ParseStatusCode(out.Response)), 0)
		l.beginWrite(c, out.Response)
	case router.StartCGI:
		l.startCGI(c, req, out, vs)
	}
}

// beginWrite installs data as the outbound buffer and switches the
// connection's epoll interest to writable.
func (l *Loop) beginWrite(c *conn.Connection, data []byte) {
	c.BeginResponse(data)
	ev := unix.EpollEvent{Events: unix.EPOLLOUT, Fd: int32(c.Fd)}
	if err := unix.EpollCtl(l.epfd, unix.EPOLL_CTL_MOD, c.Fd, &ev); err != nil {
		l.log.Error("epoll_ctl mod writable failed", server.Field{Key: "error", Value: err.Error()})
		l.closeConn(c)
	}
}

// handleWritable drains the connection's outbound buffer. Once it is
// fully flushed the connection resets for the next request (keep-alive,
// spec.md §4.5) and goes back to read interest.
func (l *Loop) handleWritable(c *conn.Connection) {
	for len(c.Outbound) > 0 {
		n, err := unix.Write(c.Fd, c.Outbound)
		if n > 0 {
			c.Outbound = c.Outbound[n:]
		}
		if err != nil {
			if err == unix.EAGAIN {
				return
			}
			l.closeConn(c)
			return
		}
		if n == 0 {
			return
		}
	}

	c.ReadyToWrite = false
	c.ResetForNextRequest()

	ev := unix.EpollEvent{Events: unix.EPOLLIN, Fd: int32(c.Fd)}
	if err := unix.EpollCtl(l.epfd, unix.EPOLL_CTL_MOD, c.Fd, &ev); err != nil {
		l.closeConn(c)
	}
}

// closeConn deregisters and closes a client socket, dropping it from the
// connection table.
func (l *Loop) closeConn(c *conn.Connection) {
	unix.EpollCtl(l.epfd, unix.EPOLL_CTL_DEL, c.Fd, nil)
	unix.Close(c.Fd)
	l.conns.Remove(c.Fd)
	l.metrics.ActiveConnections.Add(-1)
}
