// Package transmit drives the page pipeline: queued pages are encoded
// to codewords, rendered to PCM, and written to the configured audio
// sink with a silence gap between transmissions.
package transmit

import (
	"context"
	"errors"
	"sync"

	"github.com/dbehnke/pocsag-nexus/pkg/pocsag"
)

var (
	// ErrQueueFull is returned when a non-blocking enqueue finds no room
	ErrQueueFull = errors.New("transmit queue full")
	// ErrQueueClosed is returned when enqueueing after Close
	ErrQueueClosed = errors.New("transmit queue closed")
)

// Page is a validated page waiting to be transmitted
type Page struct {
	Message pocsag.Message
	Source  string // stdin, tcp, or http
}

// Queue is a bounded FIFO of pending pages. The underlying channel is
// never closed; Close signals the done channel so blocked senders and
// the draining transmitter can observe shutdown safely.
type Queue struct {
	ch        chan Page
	done      chan struct{}
	closeOnce sync.Once
}

// NewQueue creates a queue holding at most size pending pages
func NewQueue(size int) *Queue {
	return &Queue{
		ch:   make(chan Page, size),
		done: make(chan struct{}),
	}
}

// Enqueue adds a page without blocking
func (q *Queue) Enqueue(page Page) error {
	select {
	case <-q.done:
		return ErrQueueClosed
	default:
	}

	select {
	case q.ch <- page:
		return nil
	default:
		return ErrQueueFull
	}
}

// EnqueueWait adds a page, blocking until there is room, the queue is
// closed, or the context is cancelled
func (q *Queue) EnqueueWait(ctx context.Context, page Page) error {
	select {
	case <-q.done:
		return ErrQueueClosed
	default:
	}

	select {
	case q.ch <- page:
		return nil
	case <-q.done:
		return ErrQueueClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// C returns the receive side of the queue
func (q *Queue) C() <-chan Page {
	return q.ch
}

// Closed returns a channel that is closed once the queue stops
// accepting pages
func (q *Queue) Closed() <-chan struct{} {
	return q.done
}

// Close stops the queue from accepting new pages. Pages already queued
// remain readable from C.
func (q *Queue) Close() {
	q.closeOnce.Do(func() {
		close(q.done)
	})
}

// Depth returns the number of pages currently waiting
func (q *Queue) Depth() int {
	return len(q.ch)
}
