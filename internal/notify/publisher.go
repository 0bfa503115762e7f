// Package notify delivers change notifications to readers of the ledger.
//
// A Publisher replays the latest value to every new subscriber and batches
// bursts of publications: values published within the debounce window are
// merged and delivered once. Slow subscribers never block the publisher;
// an undelivered value is merged with the next one instead.
package notify

import (
	"context"
	"sync"
	"time"
)

// Publisher is a latest-value, debounced broadcast of T.
type Publisher[T any] struct {
	mu       sync.Mutex
	merge    func(a, b T) T
	debounce time.Duration

	latest    T
	hasLatest bool

	queued    T
	hasQueued bool
	timer     *time.Timer

	subs   map[int]chan T
	nextID int
	closed bool

	done     chan struct{}
	watchers sync.WaitGroup
}

// NewPublisher builds a publisher. merge combines two undelivered values;
// debounce of zero delivers synchronously on Publish.
func NewPublisher[T any](merge func(a, b T) T, debounce time.Duration) *Publisher[T] {
	return &Publisher[T]{
		merge:    merge,
		debounce: debounce,
		subs:     make(map[int]chan T),
		done:     make(chan struct{}),
	}
}

// Publish queues v for delivery.
func (p *Publisher[T]) Publish(v T) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}

	if p.hasQueued {
		p.queued = p.merge(p.queued, v)
	} else {
		p.queued = v
		p.hasQueued = true
	}

	if p.debounce <= 0 {
		p.flushLocked()
		return
	}
	if p.timer == nil {
		p.timer = time.AfterFunc(p.debounce, p.flush)
	}
}

// Subscribe returns a channel receiving every delivered value, starting with
// the latest one if anything was delivered before. The channel is closed when
// ctx is done or the publisher is closed.
func (p *Publisher[T]) Subscribe(ctx context.Context) <-chan T {
	ch := make(chan T, 1)

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		close(ch)
		return ch
	}
	id := p.nextID
	p.nextID++
	p.subs[id] = ch
	if p.hasLatest {
		ch <- p.latest
	}
	p.watchers.Add(1)
	p.mu.Unlock()

	go func() {
		defer p.watchers.Done()
		select {
		case <-ctx.Done():
		case <-p.done:
		}
		p.mu.Lock()
		defer p.mu.Unlock()
		if sub, ok := p.subs[id]; ok {
			delete(p.subs, id)
			close(sub)
		}
	}()

	return ch
}

// Latest returns the last delivered value.
func (p *Publisher[T]) Latest() (T, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.latest, p.hasLatest
}

// Close flushes anything queued, closes every subscription and returns once
// no subscription goroutine is left running.
func (p *Publisher[T]) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.flushLocked()
	p.closed = true
	for id, ch := range p.subs {
		delete(p.subs, id)
		close(ch)
	}
	close(p.done)
	p.mu.Unlock()

	p.watchers.Wait()
}

func (p *Publisher[T]) flush() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.flushLocked()
}

func (p *Publisher[T]) flushLocked() {
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	if !p.hasQueued || p.closed {
		return
	}

	v := p.queued
	var zero T
	p.queued = zero
	p.hasQueued = false
	p.latest = v
	p.hasLatest = true

	for _, ch := range p.subs {
		deliver(ch, v, p.merge)
	}
}

// deliver sends v without blocking. The caller holds the publisher lock, so
// it is the only sender on ch.
func deliver[T any](ch chan T, v T, merge func(a, b T) T) {
	select {
	case ch <- v:
		return
	default:
	}
	select {
	case old := <-ch:
		v = merge(old, v)
	default:
	}
	ch <- v
}
