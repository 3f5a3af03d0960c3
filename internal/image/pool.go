// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package image

import "sync"

// Pool reuses ImageBuf instances of identical size and format.
//
// The run controller allocates a full-area scratch image every generation
// cycle; restarts would otherwise churn through large allocations.
//
// Thread safety: All methods are safe for concurrent use.
type Pool struct {
	mu      sync.Mutex
	buckets map[poolKey][]*ImageBuf
	maxSize int // max buffers per bucket
}

type poolKey struct {
	width  int
	height int
	format Format
}

// NewPool creates a pool retaining at most maxPerBucket buffers per
// size/format. Zero means unlimited.
func NewPool(maxPerBucket int) *Pool {
	return &Pool{
		buckets: make(map[poolKey][]*ImageBuf),
		maxSize: maxPerBucket,
	}
}

// Get returns a zeroed buffer at origin (0,0), reusing a pooled one when
// available. It fails only for invalid dimensions or format.
func (p *Pool) Get(width, height int, format Format) (*ImageBuf, error) {
	key := poolKey{width: width, height: height, format: format}

	p.mu.Lock()
	bucket := p.buckets[key]
	if n := len(bucket); n > 0 {
		buf := bucket[n-1]
		p.buckets[key] = bucket[:n-1]
		p.mu.Unlock()

		buf.Clear()
		buf.SetOrigin(0, 0)
		return buf, nil
	}
	p.mu.Unlock()

	return NewImageBuf(width, height, format)
}

// Put returns buf to the pool. Buffers beyond the bucket limit are dropped.
// Buffers created with FromRaw must not be put: the pool would hand out
// memory the caller still owns.
func (p *Pool) Put(buf *ImageBuf) {
	if buf == nil || buf.IsEmpty() {
		return
	}

	key := poolKey{width: buf.width, height: buf.height, format: buf.format}

	p.mu.Lock()
	defer p.mu.Unlock()

	bucket := p.buckets[key]
	if p.maxSize > 0 && len(bucket) >= p.maxSize {
		return
	}
	p.buckets[key] = append(bucket, buf)
}

// Len returns the number of pooled buffers.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := 0
	for _, b := range p.buckets {
		n += len(b)
	}
	return n
}
