package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"storefront/internal/logger"
	"storefront/internal/metric"
)

// Factory builds the per-session components for a new id
type Factory func(id string) *Session

type entry struct {
	mu       sync.Mutex
	session  *Session
	lastSeen time.Time
}

// MemorySessions in-memory session store
type MemorySessions struct {
	mu      sync.RWMutex
	byID    map[string]*entry
	factory Factory
	now     func() time.Time
	log     *zap.Logger
}

func NewMemorySessions(factory Factory, log *zap.Logger) *MemorySessions {
	return &MemorySessions{
		byID:    make(map[string]*entry),
		factory: factory,
		now:     time.Now,
		log:     logger.OrNop(log).Named("sessions"),
	}
}

var _ SessionRepository = (*MemorySessions)(nil)

// context marker of the session already held by WithSession
type heldKey struct{}

func isHeld(ctx context.Context, id string) bool {
	v, ok := ctx.Value(heldKey{}).(string)
	return ok && v == id
}

func (m *MemorySessions) Create(ctx context.Context) (*Session, error) {
	id := uuid.NewString()
	s := m.factory(id)
	s.ID = id
	if s.CreatedAt.IsZero() {
		s.CreatedAt = m.now()
	}

	m.mu.Lock()
	m.byID[id] = &entry{session: s, lastSeen: m.now()}
	n := len(m.byID)
	m.mu.Unlock()

	metric.SessionsActive.Set(float64(n))
	m.log.Debug("session created", zap.String("session_id", id))
	return s, nil
}

// Get returns the session and marks it as used
func (m *MemorySessions) Get(ctx context.Context, id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	e.lastSeen = m.now()
	return e.session, nil
}

func (m *MemorySessions) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	e, ok := m.byID[id]
	if ok {
		delete(m.byID, id)
	}
	n := len(m.byID)
	m.mu.Unlock()
	if !ok {
		return ErrNotFound
	}
	closeSession(e.session)
	metric.SessionsActive.Set(float64(n))
	return nil
}

func (m *MemorySessions) WithSession(ctx context.Context, id string, fn func(ctx context.Context, s *Session) error) error {
	m.mu.Lock()
	e, ok := m.byID[id]
	if ok {
		e.lastSeen = m.now()
	}
	m.mu.Unlock()
	if !ok {
		return ErrNotFound
	}

	// nested calls for the same session reuse the held lock
	if isHeld(ctx, id) {
		return fn(ctx, e.session)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(context.WithValue(ctx, heldKey{}, id), e.session)
}

// Sweep evicts sessions idle for longer than idle and returns how many went
func (m *MemorySessions) Sweep(ctx context.Context, idle time.Duration) int {
	cutoff := m.now().Add(-idle)
	var evicted []*Session

	m.mu.Lock()
	for id, e := range m.byID {
		if e.lastSeen.Before(cutoff) {
			evicted = append(evicted, e.session)
			delete(m.byID, id)
		}
	}
	n := len(m.byID)
	m.mu.Unlock()

	for _, s := range evicted {
		closeSession(s)
	}
	metric.SessionsActive.Set(float64(n))
	if len(evicted) > 0 {
		m.log.Info("idle sessions evicted", zap.Int("count", len(evicted)), zap.Int("active", n))
	}
	return len(evicted)
}

// RunSweeper sweeps every interval until ctx is done
func (m *MemorySessions) RunSweeper(ctx context.Context, interval, idle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			m.Sweep(ctx, idle)
		case <-ctx.Done():
			return
		}
	}
}

func (m *MemorySessions) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byID)
}

func closeSession(s *Session) {
	if s.Checkout != nil {
		s.Checkout.Close()
	}
}
