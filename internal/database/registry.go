// Package database owns the per-tenant connection cache. Each tenant has an
// isolated database; the registry creates a connection handle lazily on first
// use, reuses it across requests, evicts it when the connection dies, and
// drains everything at shutdown.
package database

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	tenantRepo "github.com/Yespecom/server-updated-sub001/internal/repository/tenant"
)

// State is the lifecycle state of a tenant connection handle.
type State int32

const (
	StateConnecting State = iota
	StateReady
	StateDisconnected
)

// Conn is one live connection to a tenant database, carrying the repository
// set built for it. Repositories are constructed once per connection, not per
// request.
type Conn interface {
	Ping(ctx context.Context) error
	Close()
	Identities() tenantRepo.IdentityStore
	Customers() tenantRepo.CustomerStore
	Products() tenantRepo.ProductStore
}

// Dialer establishes connections to tenant databases. Production uses the
// pgx pool dialer; tests inject fakes.
type Dialer interface {
	Dial(ctx context.Context, tenantID string) (Conn, error)
}

// ConnectionError reports a failed tenant connection attempt.
type ConnectionError struct {
	TenantID string
	Err      error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("tenant %s connection failed: %v", e.TenantID, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// Handle is the registry's cached entry for one tenant. At most one handle
// per tenant ID exists at any time.
type Handle struct {
	TenantID string
	conn     Conn
	state    atomic.Int32
}

func newHandle(tenantID string, conn Conn) *Handle {
	h := &Handle{TenantID: tenantID, conn: conn}
	h.state.Store(int32(StateReady))
	return h
}

func (h *Handle) State() State { return State(h.state.Load()) }
func (h *Handle) Ready() bool  { return h.State() == StateReady }

func (h *Handle) Identities() tenantRepo.IdentityStore { return h.conn.Identities() }
func (h *Handle) Customers() tenantRepo.CustomerStore  { return h.conn.Customers() }
func (h *Handle) Products() tenantRepo.ProductStore    { return h.conn.Products() }

// Registry maps tenant ID to live connection handle. It is constructed once
// in main and passed to everything that needs tenant data access.
type Registry struct {
	dialer         Dialer
	log            *zap.Logger
	dialTimeout    time.Duration
	healthInterval time.Duration

	group   singleflight.Group
	mu      sync.RWMutex
	handles map[string]*Handle
	closed  bool
}

type Option func(*Registry)

func WithDialTimeout(d time.Duration) Option {
	return func(r *Registry) { r.dialTimeout = d }
}

func WithHealthInterval(d time.Duration) Option {
	return func(r *Registry) { r.healthInterval = d }
}

func NewRegistry(dialer Dialer, log *zap.Logger, opts ...Option) *Registry {
	r := &Registry{
		dialer:         dialer,
		log:            log,
		dialTimeout:    12 * time.Second,
		healthInterval: 30 * time.Second,
		handles:        make(map[string]*Handle),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the tenant's connection handle, creating it on first use.
// Concurrent calls for an uncached tenant share one dial: the first caller
// starts it, the rest wait on the same in-flight result. A caller whose ctx
// is cancelled abandons the wait without aborting the shared dial.
func (r *Registry) Resolve(ctx context.Context, tenantID string) (*Handle, error) {
	if h := r.lookup(tenantID); h != nil && h.Ready() {
		return h, nil
	}

	ch := r.group.DoChan(tenantID, func() (interface{}, error) {
		return r.connect(tenantID)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Handle), nil
	case <-ctx.Done():
		return nil, &ConnectionError{TenantID: tenantID, Err: ctx.Err()}
	}
}

// connect runs under the singleflight guard. The dial gets its own timeout
// context detached from any request, so one client disconnecting cannot
// poison the handle every waiter shares. The singleflight key is released on
// return either way, so a failed dial never blocks a retry.
func (r *Registry) connect(tenantID string) (*Handle, error) {
	// A concurrent caller may have finished connecting while this one was
	// queued on the flight group.
	if h := r.lookup(tenantID); h != nil && h.Ready() {
		return h, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.dialTimeout)
	defer cancel()

	conn, err := r.dialer.Dial(ctx, tenantID)
	if err != nil {
		return nil, &ConnectionError{TenantID: tenantID, Err: err}
	}

	h := newHandle(tenantID, conn)

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		conn.Close()
		return nil, &ConnectionError{TenantID: tenantID, Err: context.Canceled}
	}
	r.handles[tenantID] = h
	r.mu.Unlock()

	r.log.Info("tenant connection established", zap.String("tenant_id", tenantID))
	go r.watch(h)

	return h, nil
}

func (r *Registry) lookup(tenantID string) *Handle {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.handles[tenantID]
}

// watch pings the handle until it dies or is replaced. On a failed ping the
// handle is marked disconnected and evicted, so the next Resolve dials fresh.
func (r *Registry) watch(h *Handle) {
	ticker := time.NewTicker(r.healthInterval)
	defer ticker.Stop()

	for range ticker.C {
		if r.lookup(h.TenantID) != h {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := h.conn.Ping(ctx)
		cancel()

		if err != nil {
			r.log.Warn("tenant connection lost, evicting",
				zap.String("tenant_id", h.TenantID),
				zap.Error(err))
			h.state.Store(int32(StateDisconnected))
			r.evict(h)
			return
		}
	}
}

// evict removes h if it is still the current handle for its tenant. Identity
// comparison keeps a stale watcher from removing a successor handle.
func (r *Registry) evict(h *Handle) {
	r.mu.Lock()
	current, ok := r.handles[h.TenantID]
	if ok && current == h {
		delete(r.handles, h.TenantID)
	}
	r.mu.Unlock()
	h.conn.Close()
}

// Close shuts down one tenant's handle if present. Idempotent.
func (r *Registry) Close(tenantID string) {
	r.mu.Lock()
	h, ok := r.handles[tenantID]
	if ok {
		delete(r.handles, tenantID)
	}
	r.mu.Unlock()

	if ok {
		h.state.Store(int32(StateDisconnected))
		h.conn.Close()
		r.log.Info("tenant connection closed", zap.String("tenant_id", tenantID))
	}
}

// CloseAll drains the registry, closing every handle concurrently and
// waiting for completion. Used at process shutdown.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	r.closed = true
	handles := make([]*Handle, 0, len(r.handles))
	for _, h := range r.handles {
		handles = append(handles, h)
	}
	r.handles = make(map[string]*Handle)
	r.mu.Unlock()

	var wg sync.WaitGroup
	for _, h := range handles {
		wg.Add(1)
		go func(h *Handle) {
			defer wg.Done()
			h.state.Store(int32(StateDisconnected))
			h.conn.Close()
			r.log.Info("tenant connection closed", zap.String("tenant_id", h.TenantID))
		}(h)
	}
	wg.Wait()
}

// Len reports the number of cached handles.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handles)
}
