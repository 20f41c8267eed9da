//go:build linux
// +build linux

package eventloop

import (
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/nocturne-http/webserv/internal/config"
	"github.com/nocturne-http/webserv/internal/server"
)

// Init binds one non-blocking listening socket per distinct port declared
// across the loop's virtual servers and registers each with epoll, per
// spec.md §3 ("records with the same port share a listening socket").
func (l *Loop) Init() error {
	for _, port := range config.Ports(l.servers) {
		fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM, 0)
		if err != nil {
			return fmt.Errorf("eventloop: socket: %w", err)
		}

		if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
			unix.Close(fd)
			return fmt.Errorf("eventloop: setsockopt SO_REUSEADDR: %w", err)
		}

		if err := unix.Bind(fd, &unix.SockaddrInet4{Port: port}); err != nil {
			unix.Close(fd)
			return fmt.Errorf("eventloop: bind port %d: %w", port, err)
		}

		if err := unix.Listen(fd, 1024); err != nil {
			unix.Close(fd)
			return fmt.Errorf("eventloop: listen port %d: %w", port, err)
		}

		if err := unix.SetNonblock(fd, true); err != nil {
			unix.Close(fd)
			return fmt.Errorf("eventloop: set listener nonblocking: %w", err)
		}

		ev := unix.EpollEvent{Events: unix.EPOLLIN, Fd: int32(fd)}
		if err := unix.EpollCtl(l.epfd, unix.EPOLL_CTL_ADD, fd, &ev); err != nil {
			unix.Close(fd)
			return fmt.Errorf("eventloop: epoll_ctl add listener: %w", err)
		}

		l.listeners[fd] = port
		l.log.Info("listening", server.Field{Key: "port", Value: port})
	}

	if len(l.listeners) == 0 {
		return fmt.Errorf("eventloop: no listening ports configured")
	}
	return nil
}
