// Package server carries the ambient concerns shared by the event loop:
// structured logging, metrics, and the read-buffer pool.
package server

import "sync"

// readBufferSize matches spec.md §4.1: the loop reads client and CGI
// pipe readiness into a fixed-size 4 KiB buffer per event.
const readBufferSize = 4096

var readBufferPool = sync.Pool{
	New: func() interface{} {
		buf := make([]byte, readBufferSize)
		return &buf
	},
}

// GetBuffer borrows a 4 KiB buffer from the pool.
func GetBuffer() []byte {
	buf := readBufferPool.Get().(*[]byte)
	return (*buf)[:readBufferSize]
}

// PutBuffer returns a buffer obtained from GetBuffer to the pool.
func PutBuffer(buf []byte) {
	if cap(buf) != readBufferSize {
		return // non-standard size, let the GC reclaim it
	}
	full := buf[:readBufferSize]
	readBufferPool.Put(&full)
}
