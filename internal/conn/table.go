package conn

import "fmt"

// Table is the loop's registry of live connections, keyed by socket file
// descriptor. It is the single owner referred to in spec.md §5: no other
// component mutates it directly.
type Table struct {
	byFd map[int]*Connection
}

func NewTable() *Table {
	return &Table{byFd: make(map[int]*Connection)}
}

// Add registers c. It panics on a duplicate fd, which would violate the
// "no descriptor appears twice" invariant (spec.md §8) — a bug in the
// caller, not a runtime condition to recover from.
func (t *Table) Add(c *Connection) {
	if _, exists := t.byFd[c.Fd]; exists {
		panic(fmt.Sprintf("conn: fd %d already registered", c.Fd))
	}
	t.byFd[c.Fd] = c
}

// Get returns the connection for fd, if any.
func (t *Table) Get(fd int) (*Connection, bool) {
	c, ok := t.byFd[fd]
	return c, ok
}

// Remove drops fd from the table. It is a no-op if fd isn't present.
func (t *Table) Remove(fd int) {
	delete(t.byFd, fd)
}

// Len reports the number of live connections.
func (t *Table) Len() int {
	return len(t.byFd)
}

// All returns every live connection as a freshly built slice, so callers
// may add or remove connections while iterating the result — eventloop's
// timeout pass closes connections during exactly such an iteration.
func (t *Table) All() []*Connection {
	out := make([]*Connection, 0, len(t.byFd))
	for _, c := range t.byFd {
		out = append(out, c)
	}
	return out
}
