//go:build linux
// +build linux

package eventloop

import (
	"golang.org/x/sys/unix"

	"github.com/nocturne-http/webserv/internal/config"
	"github.com/nocturne-http/webserv/internal/conn"
	"github.com/nocturne-http/webserv/internal/server"
)

// acceptAll drains the accept queue for a ready listener, following the
// level-triggered "read until EAGAIN" idiom used throughout this loop.
func (l *Loop) acceptAll(listenFd, port int) {
	for {
		connFd, _, err := unix.Accept(listenFd)
		if err != nil {
			if err == unix.EAGAIN {
				return
			}
			l.log.Error("accept failed", server.Field{Key: "error", Value: err.Error()})
			return
		}

		if err := unix.SetNonblock(connFd, true); err != nil {
			unix.Close(connFd)
			continue
		}

		vs := config.SelectVirtualServer(l.servers, port)
		c := conn.New(connFd, port, vs.ClientMaxBodySize)

		ev := unix.EpollEvent{Events: unix.EPOLLIN, Fd: int32(connFd)}
		if err := unix.EpollCtl(l.epfd, unix.EPOLL_CTL_ADD, connFd, &ev); err != nil {
			l.log.Error("epoll_ctl add conn failed", server.Field{Key: "error", Value: err.Error()})
			unix.Close(connFd)
			continue
		}

		l.conns.Add(c)
		l.metrics.ActiveConnections.Add(1)
	}
}
