// Package pool implements a bounded connection pool with FIFO waiters,
// round-robin host selection and idle reaping.
//
// A pooled entry owns the transport and its client handle as a single unit:
// Acquire hands both out together and Release/Discard take them back
// together, so a handle can never outlive its connection.
package pool

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

var (
	// ErrExhausted is returned when no connection became free within the
	// configured acquire wait. Callers map it to a 503.
	ErrExhausted = errors.New("pool: exhausted, no connection available")

	// ErrClosed is returned by Acquire after Close.
	ErrClosed = errors.New("pool: closed")

	// ErrNoHosts indicates an empty backend host list.
	ErrNoHosts = errors.New("pool: no backend hosts configured")
)

// DialFunc creates the connection unit for one backend host.
type DialFunc[T any] func(ctx context.Context, host string) (T, error)

// CloseFunc tears the connection unit down.
type CloseFunc[T any] func(T) error

// Config drives pool construction.
type Config[T any] struct {
	// Hosts are the backend addresses, dialed round-robin.
	Hosts []string
	// Max bounds the number of live connections (idle + in use).
	Max int
	// AcquireTimeout bounds how long Acquire waits for a free connection.
	AcquireTimeout time.Duration
	// IdleTimeout is how long an unused connection survives before reaping.
	IdleTimeout time.Duration
	// ReapInterval is the period of the background reaper sweep.
	ReapInterval time.Duration
	// Dial creates a connection unit.
	Dial DialFunc[T]
	// Close destroys a connection unit.
	Close CloseFunc[T]
}

// Conn is one pooled connection unit.
type Conn[T any] struct {
	// Host is the backend address this connection was dialed to.
	Host string
	// Value is the connection unit (transport plus client handle).
	Value T

	idleSince time.Time
}

// waiters receive either an idle connection or nil, where nil means
// "capacity is free, dial for yourself".
type waiter[T any] struct {
	ch        chan *Conn[T]
	cancelled bool
}

// Pool is a bounded pool of backend connections.
//
// All bookkeeping (idle list, live count, waiter queue and the round-robin
// cursor) is guarded by one mutex; nothing blocking happens while it is held.
type Pool[T any] struct {
	cfg Config[T]

	mu      sync.Mutex
	idle    []*Conn[T]
	live    int
	waiters []*waiter[T]
	next    int
	closed  bool

	stopReap chan struct{}
	reapDone chan struct{}
}

// New validates the config and starts the reaper.
func New[T any](cfg Config[T]) (*Pool[T], error) {
	if len(cfg.Hosts) == 0 {
		return nil, ErrNoHosts
	}
	if cfg.Dial == nil {
		return nil, errors.New("pool: Dial is required")
	}
	if cfg.Max <= 0 {
		cfg.Max = 10
	}
	if cfg.AcquireTimeout <= 0 {
		cfg.AcquireTimeout = 5 * time.Second
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = 30 * time.Second
	}
	if cfg.ReapInterval <= 0 {
		cfg.ReapInterval = time.Minute
	}

	p := &Pool[T]{
		cfg:      cfg,
		stopReap: make(chan struct{}),
		reapDone: make(chan struct{}),
	}
	go p.reapLoop()

	return p, nil
}

// Acquire returns a connection, dialing a new one when under capacity or
// queueing FIFO behind other callers when at capacity. It fails with
// ErrExhausted once the acquire timeout elapses.
func (p *Pool[T]) Acquire(ctx context.Context) (*Conn[T], error) {
	deadline := time.NewTimer(p.cfg.AcquireTimeout)
	defer deadline.Stop()

	wasHead := false
	for {
		p.mu.Lock()
		if p.closed {
			p.mu.Unlock()
			return nil, ErrClosed
		}

		if n := len(p.idle); n > 0 {
			conn := p.idle[n-1]
			p.idle = p.idle[:n-1]
			p.mu.Unlock()
			return conn, nil
		}

		if p.live < p.cfg.Max {
			p.live++
			host := p.cfg.Hosts[p.next%len(p.cfg.Hosts)]
			p.next++
			p.mu.Unlock()
			return p.dial(ctx, host)
		}

		w := &waiter[T]{ch: make(chan *Conn[T], 1)}
		if wasHead {
			// This caller was already at the front of the queue and lost the
			// freed slot to a faster caller; re-queue at the head so it keeps
			// its turn.
			p.waiters = append([]*waiter[T]{w}, p.waiters...)
		} else {
			p.waiters = append(p.waiters, w)
		}
		p.mu.Unlock()

		select {
		case conn := <-w.ch:
			if conn != nil {
				return conn, nil
			}
			// Capacity freed up; loop and take it.
			wasHead = true

		case <-ctx.Done():
			p.abandon(w)
			return nil, fmt.Errorf("pool: acquire cancelled: %w", ctx.Err())

		case <-deadline.C:
			p.abandon(w)
			return nil, ErrExhausted
		}
	}
}

// Release returns a connection to the pool, handing it directly to the
// oldest waiter when one is queued.
func (p *Pool[T]) Release(conn *Conn[T]) {
	if conn == nil {
		return
	}

	p.mu.Lock()
	if p.closed {
		p.live--
		p.mu.Unlock()
		p.close(conn)
		return
	}

	if w := p.popWaiterLocked(); w != nil {
		// The channel is buffered and has exactly one sender, so handing the
		// connection over under the lock cannot block. Delivering while
		// locked closes the race against a waiter timing out concurrently.
		w.ch <- conn
		p.mu.Unlock()
		return
	}

	conn.idleSince = time.Now()
	p.idle = append(p.idle, conn)
	p.mu.Unlock()
}

// Discard destroys a connection instead of returning it, freeing its
// capacity slot. Use it when the connection is suspected broken.
func (p *Pool[T]) Discard(conn *Conn[T]) {
	if conn == nil {
		return
	}
	p.close(conn)

	p.mu.Lock()
	p.live--
	if w := p.popWaiterLocked(); w != nil {
		// The slot is free but there is no connection to hand over; tell the
		// waiter to dial for itself.
		w.ch <- nil
	}
	p.mu.Unlock()
}

// Close stops the reaper and tears down all idle connections. In-flight
// connections are destroyed as they are released.
func (p *Pool[T]) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	idle := p.idle
	p.idle = nil
	p.live -= len(idle)
	waiters := p.waiters
	p.waiters = nil
	p.mu.Unlock()

	close(p.stopReap)
	<-p.reapDone

	for _, w := range waiters {
		close(w.ch)
	}
	for _, conn := range idle {
		p.close(conn)
	}
}

// Stats reports live and idle connection counts, mostly for tests and the
// heartbeat log line.
func (p *Pool[T]) Stats() (live, idle int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.live, len(p.idle)
}

func (p *Pool[T]) dial(ctx context.Context, host string) (*Conn[T], error) {
	value, err := p.cfg.Dial(ctx, host)
	if err != nil {
		p.mu.Lock()
		p.live--
		if w := p.popWaiterLocked(); w != nil {
			w.ch <- nil
		}
		p.mu.Unlock()
		return nil, fmt.Errorf("pool: dial %s: %w", host, err)
	}
	return &Conn[T]{Host: host, Value: value}, nil
}

func (p *Pool[T]) close(conn *Conn[T]) {
	if p.cfg.Close == nil {
		return
	}
	if err := p.cfg.Close(conn.Value); err != nil {
		slog.Warn("pool: failed to close backend connection", "host", conn.Host, "error", err)
	}
}

// popWaiterLocked removes and returns the oldest non-cancelled waiter.
func (p *Pool[T]) popWaiterLocked() *waiter[T] {
	for len(p.waiters) > 0 {
		w := p.waiters[0]
		p.waiters = p.waiters[1:]
		if !w.cancelled {
			return w
		}
	}
	return nil
}

// abandon marks a waiter cancelled and drains anything that raced into its
// channel so nothing leaks: a stray connection goes back through Release, a
// stray capacity token is handed to the next queued waiter.
func (p *Pool[T]) abandon(w *waiter[T]) {
	p.mu.Lock()
	w.cancelled = true

	var stray *Conn[T]
	received := false
	select {
	case conn := <-w.ch:
		stray = conn
		received = true
	default:
	}
	if received && stray == nil {
		if next := p.popWaiterLocked(); next != nil {
			next.ch <- nil
		}
	}
	p.mu.Unlock()

	if stray != nil {
		p.Release(stray)
	}
}

func (p *Pool[T]) reapLoop() {
	defer close(p.reapDone)

	ticker := time.NewTicker(p.cfg.ReapInterval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stopReap:
			return
		case <-ticker.C:
			p.reap()
		}
	}
}

// reap closes idle connections that outlived the idle timeout.
func (p *Pool[T]) reap() {
	cutoff := time.Now().Add(-p.cfg.IdleTimeout)

	p.mu.Lock()
	kept := p.idle[:0]
	var expired []*Conn[T]
	for _, conn := range p.idle {
		if conn.idleSince.Before(cutoff) {
			expired = append(expired, conn)
		} else {
			kept = append(kept, conn)
		}
	}
	p.idle = kept
	p.live -= len(expired)
	p.mu.Unlock()

	for _, conn := range expired {
		p.close(conn)
	}
}
