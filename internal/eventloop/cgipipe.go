//go:build linux
// +build linux

package eventloop

import (
	"golang.org/x/sys/unix"

	"github.com/nocturne-http/webserv/internal/cgi"
	"github.com/nocturne-http/webserv/internal/config"
	"github.com/nocturne-http/webserv/internal/conn"
	"github.com/nocturne-http/webserv/internal/request"
	"github.com/nocturne-http/webserv/internal/response"
	"github.com/nocturne-http/webserv/internal/router"
	"github.com/nocturne-http/webserv/internal/server"
)

// startCGI launches the script a routing decision handed off and
// registers its stdout pipe with epoll. The router returns without
// setting the connection writable (spec.md §4.4's launch protocol).
func (l *Loop) startCGI(c *conn.Connection, req *request.Request, out router.Outcome, vs *config.VirtualServer) {
	state, err := cgi.Launch(req, out.ScriptPath, out.PathInfo, vs.Port)
	if err != nil {
		l.log.Error("cgi launch failed", server.Field{Key: "error", Value: err.Error()})
		l.beginWrite(c, response.BuildError(response.StatusInternalServerError, ""))
		return
	}

	c.CGI = state
	l.cgiPipes[state.StdoutFd] = c.Fd
	l.metrics.CGILaunched.Add(1)

	ev := unix.EpollEvent{Events: unix.EPOLLIN, Fd: int32(state.StdoutFd)}
	if err := unix.EpollCtl(l.epfd, unix.EPOLL_CTL_ADD, state.StdoutFd, &ev); err != nil {
		l.log.Error("epoll_ctl add cgi pipe failed", server.Field{Key: "error", Value: err.Error()})
		delete(l.cgiPipes, state.StdoutFd)
		cgi.Kill(state)
		state.StdoutR.Close()
		c.CGI = nil
		l.beginWrite(c, response.BuildError(response.StatusInternalServerError, ""))
	}
}

// handleCGIReadable drains one readiness event on a CGI child's stdout
// pipe, accumulating into the connection's CGI output buffer until EOF.
func (l *Loop) handleCGIReadable(pipeFd int) {
	connFd, ok := l.cgiPipes[pipeFd]
	if !ok {
		return
	}
	c, ok := l.conns.Get(connFd)
	if !ok || c.CGI == nil {
		return
	}

	for {
		buf := server.GetBuffer()
		n, err := unix.Read(pipeFd, buf)
		if n > 0 {
			c.CGI.Output = append(c.CGI.Output, buf[:n]...)
		}
		server.PutBuffer(buf)

		if n == 0 {
			l.retirePipe(c)
			return
		}
		if err == unix.EAGAIN {
			return
		}
		if err != nil {
			l.retirePipe(c)
			return
		}
	}
}

// retirePipe deregisters a CGI child's stdout pipe once EOF is observed
// and starts the dedicated reap goroutine, per spec.md §4.4 / §5: Wait()
// is only ever called once EOF or a kill has already been seen, so it is
// known to return without blocking the loop's own goroutine.
func (l *Loop) retirePipe(c *conn.Connection) {
	pipeFd := c.CGI.StdoutFd
	unix.EpollCtl(l.epfd, unix.EPOLL_CTL_DEL, pipeFd, nil)
	delete(l.cgiPipes, pipeFd)
	c.CGI.StdoutR.Close()
	l.startReap(c)
}

// killTimedOutCGI implements the 3 s CGI deadline of spec.md §4.4: the
// child is killed and its pipe torn down exactly as on a normal EOF, but
// the eventual response is the fixed 504 rather than the script's own
// output.
func (l *Loop) killTimedOutCGI(c *conn.Connection) {
	c.CGI.TimedOut = true
	pipeFd := c.CGI.StdoutFd
	unix.EpollCtl(l.epfd, unix.EPOLL_CTL_DEL, pipeFd, nil)
	delete(l.cgiPipes, pipeFd)
	c.CGI.StdoutR.Close()
	cgi.Kill(c.CGI)
	l.startReap(c)
}

func (l *Loop) startReap(c *conn.Connection) {
	if c.CGI.Reaped {
		return
	}
	c.CGI.Reaped = true
	go cgi.Reap(c.Fd, c.CGI, l.reapCh)
}
