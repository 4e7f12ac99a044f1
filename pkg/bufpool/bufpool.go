// Package bufpool provides pooled transfer buffers.
//
// Every GET and PUT streams file content through a fixed-size chunk buffer.
// With many concurrent sessions the buffers are short-lived and uniform, so
// they are recycled through sync.Pool instead of being allocated per transfer.
//
// Three size classes exist:
//   - Chunk (default 4KB): the configured transfer chunk size
//   - Wide (default 64KB): larger chunk sizes set by operators
//   - Frame (1MB): the largest payload frame the wire format allows
//
// Requests above the frame class are allocated directly and never pooled.
//
// Usage:
//
//	buf := bufpool.Get(chunkSize)
//	defer bufpool.Put(buf)
package bufpool

import (
	"sync"
)

// Size classes.
const (
	ChunkSize = 4 << 10
	WideSize  = 64 << 10
	FrameSize = 1 << 20
)

// Pool recycles byte slices in three size classes.
type Pool struct {
	classes [3]class
}

type class struct {
	size int
	pool sync.Pool
}

// Config overrides the size classes of a Pool. Zero fields keep the default.
type Config struct {
	ChunkSize int
	WideSize  int
	FrameSize int
}

// NewPool creates a buffer pool. A nil cfg uses the default classes.
func NewPool(cfg *Config) *Pool {
	sizes := [3]int{ChunkSize, WideSize, FrameSize}
	if cfg != nil {
		for i, v := range []int{cfg.ChunkSize, cfg.WideSize, cfg.FrameSize} {
			if v > 0 {
				sizes[i] = v
			}
		}
	}

	p := &Pool{}
	for i := range p.classes {
		size := sizes[i]
		p.classes[i].size = size
		p.classes[i].pool.New = func() any {
			buf := make([]byte, size)
			return &buf
		}
	}
	return p
}

// Get returns a slice of length size. Its capacity may be larger when it is
// backed by a pooled buffer. Return it with Put once the transfer is done.
func (p *Pool) Get(size int) []byte {
	for i := range p.classes {
		c := &p.classes[i]
		if size <= c.size {
			buf := *c.pool.Get().(*[]byte)
			return buf[:size]
		}
	}
	// Oversized: not pooled.
	return make([]byte, size)
}

// Put returns buf to its size class. Slices whose capacity does not match a
// class exactly are left to the garbage collector.
func (p *Pool) Put(buf []byte) {
	if buf == nil {
		return
	}
	for i := range p.classes {
		c := &p.classes[i]
		if cap(buf) == c.size {
			full := buf[:c.size]
			c.pool.Put(&full)
			return
		}
	}
}

var globalPool = NewPool(nil)

// Get returns a buffer of length size from the shared pool.
func Get(size int) []byte {
	return globalPool.Get(size)
}

// Put returns a buffer to the shared pool.
func Put(buf []byte) {
	globalPool.Put(buf)
}
