package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/beatbox/internal/logging"
	"github.com/aretw0/beatbox/pkg/domain"
	"github.com/aretw0/beatbox/pkg/expand"
	"github.com/aretw0/beatbox/pkg/grammar"
	"github.com/aretw0/beatbox/pkg/ports"
)

// DefaultLockTTL bounds how long a crashed holder can block a session.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates session access, ensuring safe concurrent operations.
// It uses reference counting to garbage collect unused locks.
type Manager struct {
	store ports.CheckpointStore
	table *grammar.Table

	mu    sync.Mutex
	locks map[string]*lockEntry

	locker   ports.DistributedLocker
	lockTTL  time.Duration
	maxSteps int
	hooks    domain.LifecycleHooks
	logger   *slog.Logger
}

// Step is the outcome of one Next call.
type Step struct {
	Checkpoint *domain.Checkpoint
	Terminals  string
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets the expiry of distributed locks.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.lockTTL = ttl
	}
}

// WithMaxSteps bounds the transitions a single Next call may perform. Zero means unbounded.
func WithMaxSteps(n int) Option {
	return func(m *Manager) {
		m.maxSteps = n
	}
}

// WithHooks attaches lifecycle hooks to every cursor the manager drives.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(m *Manager) {
		m.hooks = hooks
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a session manager over store. Sessions expand rules from table.
func NewManager(store ports.CheckpointStore, table *grammar.Table, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		table:   table,
		locks:   make(map[string]*lockEntry),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller must lock entry.mu, and call release(id) after unlocking.
func (m *Manager) acquire(id string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[id]
	if !exists {
		entry = &lockEntry{}
		m.locks[id] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[id]
	if !exists {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, id)
	}
}

// Table returns the rule table sessions expand.
func (m *Manager) Table() *grammar.Table {
	return m.table
}

// Store returns the underlying checkpoint store.
func (m *Manager) Store() ports.CheckpointStore {
	return m.store
}

// Start begins a traversal of root and persists it under id, replacing any previous one.
func (m *Manager) Start(ctx context.Context, id, root string) (*domain.Checkpoint, error) {
	var cp *domain.Checkpoint
	err := m.WithLock(ctx, id, func(ctx context.Context) error {
		cur := expand.New(m.table)
		if err := cur.Start(root); err != nil {
			return err
		}
		cp = cur.Snapshot(id)
		if err := m.store.Save(ctx, id, cp); err != nil {
			return fmt.Errorf("failed to initialize session: %w", err)
		}
		return nil
	})
	return cp, err
}

// Next pulls up to n terminals from the session and persists the new position.
// If the step budget runs out first, the progress made so far is saved and returned
// together with domain.ErrStepBudgetExceeded.
func (m *Manager) Next(ctx context.Context, id string, n int) (*Step, error) {
	var step *Step
	err := m.WithLock(ctx, id, func(ctx context.Context) error {
		cp, err := m.store.Load(ctx, id)
		if err != nil {
			return err
		}
		cur := expand.New(m.table, expand.WithHooks(m.hooks))
		if err := cur.Restore(cp); err != nil {
			return err
		}

		out := make([]byte, 0, max(n, 0))
		var budgetErr error
		for steps := 0; !cur.Done() && len(out) < n; steps++ {
			if m.maxSteps > 0 && steps >= m.maxSteps {
				budgetErr = fmt.Errorf("%w: %d steps", domain.ErrStepBudgetExceeded, m.maxSteps)
				break
			}
			if sym, ok := cur.Advance(); ok {
				out = append(out, byte(sym))
			}
		}

		next := cur.Snapshot(id)
		if err := m.store.Save(ctx, id, next); err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}
		step = &Step{Checkpoint: next, Terminals: string(out)}
		return budgetErr
	})
	return step, err
}

// Load retrieves a session's checkpoint.
func (m *Manager) Load(ctx context.Context, id string) (*domain.Checkpoint, error) {
	var cp *domain.Checkpoint
	err := m.WithLock(ctx, id, func(ctx context.Context) error {
		var err error
		cp, err = m.store.Load(ctx, id)
		return err
	})
	return cp, err
}

// Delete removes the session.
func (m *Manager) Delete(ctx context.Context, id string) error {
	return m.WithLock(ctx, id, func(ctx context.Context) error {
		return m.store.Delete(ctx, id)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// WithLock executes fn while holding the lock for the session.
func (m *Manager) WithLock(ctx context.Context, id string, fn func(context.Context) error) error {
	entry := m.acquire(id)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(id)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, id, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			// Use a fresh context: ctx may be cancelled by now.
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				m.logger.Warn("failed to release distributed lock (will expire via TTL)",
					"session_id", id,
					"error", err,
				)
			}
		}()
	}

	return fn(ctx)
}

// IsNotFound reports whether err means the session does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, domain.ErrCheckpointNotFound)
}
