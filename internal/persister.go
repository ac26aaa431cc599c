package internal

import (
	"context"
	"sync"
	"sync/atomic"
)

// Persister writes snapshots to the codec from a single goroutine.
// Snapshots submitted while a write is in flight are coalesced and only
// the latest one is written.
type Persister struct {
	codec *SnapshotCodec

	mu      sync.Mutex
	pending *Snapshot
	waiters []chan struct{}
	closed  bool

	wake      chan struct{}
	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once

	writes atomic.Int64
}

// NewPersister creates a persister over codec and starts its goroutine
func NewPersister(codec *SnapshotCodec) *Persister {
	p := &Persister{
		codec: codec,
		wake:  make(chan struct{}, 1),
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
	}
	go p.run()
	return p
}

// Submit queues a snapshot, replacing any snapshot not yet written
func (p *Persister) Submit(snapshot Snapshot) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		LogDebug("Dropping snapshot submitted after close")
		return
	}
	p.pending = &snapshot
	p.mu.Unlock()

	p.poke()
}

// Flush blocks until every snapshot submitted before the call is written
func (p *Persister) Flush(ctx context.Context) error {
	ch := make(chan struct{})

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrStoreClosed
	}
	p.waiters = append(p.waiters, ch)
	p.mu.Unlock()

	p.poke()

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close writes any pending snapshot and stops the goroutine
func (p *Persister) Close() {
	p.closeOnce.Do(func() {
		p.mu.Lock()
		p.closed = true
		close(p.stop)
		p.mu.Unlock()
	})
	<-p.done
}

// Writes returns how many snapshots reached the codec
func (p *Persister) Writes() int64 {
	return p.writes.Load()
}

func (p *Persister) poke() {
	select {
	case p.wake <- struct{}{}:
	default:
	}
}

func (p *Persister) run() {
	defer close(p.done)

	for {
		select {
		case <-p.wake:
			p.drain()
		case <-p.stop:
			p.drain()
			return
		}
	}
}

func (p *Persister) drain() {
	p.mu.Lock()
	pending := p.pending
	waiters := p.waiters
	p.pending = nil
	p.waiters = nil
	p.mu.Unlock()

	if pending != nil {
		p.codec.Write(context.Background(), *pending)
		p.writes.Add(1)
	}
	for _, ch := range waiters {
		close(ch)
	}
}
