// Package audit keeps a bounded, append-only byte log of registry events.
package audit

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sync"
)

// DefaultCapacity matches the size of the historical audit buffer.
const DefaultCapacity = 4096

// ErrResourceExhausted is returned by a PolicyReject log that cannot fit a write.
var ErrResourceExhausted = errors.New("audit log full")

// IsResourceExhausted reports whether err indicates a full log.
func IsResourceExhausted(err error) bool { return errors.Is(err, ErrResourceExhausted) }

// Policy decides what happens when a write does not fit.
type Policy string

const (
	// PolicyDropOldest evicts whole lines from the front until the write fits.
	// A single write larger than the capacity keeps only its tail.
	PolicyDropOldest Policy = "drop-oldest"
	// PolicyReject refuses the whole write and leaves the log unchanged.
	PolicyReject Policy = "reject"
)

// ParsePolicy maps a config string to a Policy. Empty means PolicyDropOldest.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case "", PolicyDropOldest:
		return PolicyDropOldest, nil
	case PolicyReject:
		return PolicyReject, nil
	}
	return "", fmt.Errorf("unknown audit policy %q", s)
}

// Log is a fixed-capacity byte log safe for concurrent use.
type Log struct {
	mu       sync.Mutex
	buf      []byte
	capacity int
	policy   Policy
	dropped  uint64
	rejected uint64
}

// New returns a Log holding at most capacity bytes (DefaultCapacity if <= 0).
func New(capacity int, policy Policy) *Log {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if policy == "" {
		policy = PolicyDropOldest
	}
	return &Log{buf: make([]byte, 0, capacity), capacity: capacity, policy: policy}
}

// Write appends p according to the log's policy.
func (l *Log) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.buf)+len(p) <= l.capacity {
		l.buf = append(l.buf, p...)
		return len(p), nil
	}
	if l.policy == PolicyReject {
		l.rejected += uint64(len(p))
		return 0, fmt.Errorf("%w: %d bytes used of %d, write of %d", ErrResourceExhausted, len(l.buf), l.capacity, len(p))
	}
	if len(p) >= l.capacity {
		l.dropped += uint64(len(l.buf) + len(p) - l.capacity)
		l.buf = append(l.buf[:0], p[len(p)-l.capacity:]...)
		return len(p), nil
	}
	cut := len(l.buf) + len(p) - l.capacity
	if cut > 0 && l.buf[cut-1] != '\n' {
		if i := bytes.IndexByte(l.buf[cut:], '\n'); i >= 0 {
			cut += i + 1
		} else {
			cut = len(l.buf)
		}
	}
	l.dropped += uint64(cut)
	n := copy(l.buf, l.buf[cut:])
	l.buf = append(l.buf[:n], p...)
	return len(p), nil
}

// Bytes returns a copy of the current contents.
func (l *Log) Bytes() []byte {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]byte(nil), l.buf...)
}

func (l *Log) String() string { return string(l.Bytes()) }

// WriteTo copies the current contents to w.
func (l *Log) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(l.Bytes())
	return int64(n), err
}

// Len returns the number of bytes held.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buf)
}

func (l *Log) Cap() int       { return l.capacity }
func (l *Log) Policy() Policy { return l.policy }

// Dropped returns how many old bytes were evicted under PolicyDropOldest.
func (l *Log) Dropped() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.dropped
}

// Rejected returns how many bytes were refused under PolicyReject.
func (l *Log) Rejected() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rejected
}
