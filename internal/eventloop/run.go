//go:build linux
// +build linux

package eventloop

import (
	"time"

	"golang.org/x/sys/unix"
)

// Run executes the loop: drain completed CGI reaps, run the timeout pass
// (CGI deadlines and idle connections), wait on epoll with a bounded
// timeout, then dispatch every ready descriptor — the exact ordering
// spec.md §4.1 describes, repeated until the process is killed.
func (l *Loop) Run() error {
	events := make([]unix.EpollEvent, maxEvents)

	for {
		l.drainReaps()
		l.runTimeouts()

		n, err := unix.EpollWait(l.epfd, events, epollTimeoutMs)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return err
		}

		for i := 0; i < n; i++ {
			l.handleEvent(events[i])
		}
	}
}

// runTimeouts closes connections idle past the timeout and kills any CGI
// child that has exceeded its deadline. The idle timeout never fires
// while a CGI child is attached to the connection or a response is still
// being written.
func (l *Loop) runTimeouts() {
	now := time.Now()

	for _, c := range l.conns.All() {
		if c.CGI != nil {
			if !c.CGI.TimedOut && now.Sub(c.CGI.StartedAt) > cgiDeadline {
				l.killTimedOutCGI(c)
			}
			continue
		}
		if c.ReadyToWrite {
			continue
		}
		if now.Sub(c.LastActivity) > idleTimeout {
			l.closeConn(c)
		}
	}
}

// handleEvent dispatches one ready descriptor to the listener, CGI-pipe,
// or client-connection path, whichever registry it belongs to.
func (l *Loop) handleEvent(ev unix.EpollEvent) {
	fd := int(ev.Fd)

	if port, ok := l.listeners[fd]; ok {
		l.acceptAll(fd, port)
		return
	}

	if _, ok := l.cgiPipes[fd]; ok {
		l.handleCGIReadable(fd)
		return
	}

	c, ok := l.conns.Get(fd)
	if !ok {
		return
	}

	if ev.Events&(unix.EPOLLHUP|unix.EPOLLERR) != 0 && ev.Events&unix.EPOLLIN == 0 {
		l.closeConn(c)
		return
	}

	if ev.Events&unix.EPOLLOUT != 0 {
		l.handleWritable(c)
		return
	}
	if ev.Events&unix.EPOLLIN != 0 {
		l.handleReadable(c)
	}
}
