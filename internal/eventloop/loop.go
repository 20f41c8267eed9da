//go:build linux
// +build linux

// Package eventloop drives the single-threaded, non-blocking engine of
// spec.md §4.1: one epoll instance multiplexes listening sockets, client
// connections, and CGI pipe descriptors, with a bounded wait so CGI
// deadlines and idle timeouts are re-checked every iteration.
package eventloop

import (
	"fmt"
	"time"

	"golang.org/x/sys/unix"

	"github.com/nocturne-http/webserv/internal/cgi"
	"github.com/nocturne-http/webserv/internal/config"
	"github.com/nocturne-http/webserv/internal/conn"
	"github.com/nocturne-http/webserv/internal/server"
)

const (
	epollTimeoutMs = 1000
	maxEvents      = 128

	idleTimeout = 60 * time.Second
	cgiDeadline = 3 * time.Second
)

// Loop is the engine. The zero value is not usable; construct with New.
type Loop struct {
	epfd int

	listeners map[int]int // listen fd -> port
	servers   []*config.VirtualServer

	conns    *conn.Table
	cgiPipes map[int]int // cgi stdout fd -> owning connection fd

	reapCh chan cgi.ReapResult

	log     server.Logger
	metrics *server.Metrics
}

// New creates an epoll instance and the loop state around it. Init must
// be called before Run to bind and register listeners.
func New(servers []*config.VirtualServer, log server.Logger, metrics *server.Metrics) (*Loop, error) {
	epfd, err := unix.EpollCreate1(0)
	if err != nil {
		return nil, fmt.Errorf("eventloop: epoll_create1: %w", err)
	}

	if log == nil {
		log = server.NullLogger{}
	}
	if metrics == nil {
		metrics = server.NewMetrics()
	}

	return &Loop{
		epfd:      epfd,
		listeners: make(map[int]int),
		servers:   servers,
		conns:     conn.NewTable(),
		cgiPipes:  make(map[int]int),
		reapCh:    make(chan cgi.ReapResult, 32),
		log:       log,
		metrics:   metrics,
	}, nil
}

// Close releases the epoll fd and every listener. Connections already
// accepted are not individually closed; the process exiting reclaims
// them.
func (l *Loop) Close() {
	for fd := range l.listeners {
		unix.Close(fd)
	}
	unix.Close(l.epfd)
}
