package session

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Memory store defaults.
const (
	DefaultIdleTimeout     = 24 * time.Hour
	DefaultCleanupInterval = 10 * time.Minute
)

type memorySession struct {
	values     map[string][]byte
	lastAccess time.Time
}

// MemoryStore keeps session state in process. Sessions idle for longer than the
// idle timeout are removed by a background ticker.
type MemoryStore struct {
	sessions    map[string]*memorySession
	mu          sync.Mutex
	idleTimeout time.Duration
	ticker      *time.Ticker
	done        chan struct{}
	closeOnce   sync.Once
	logger      *slog.Logger
	now         func() time.Time
}

// NewMemoryStore creates a MemoryStore. Non-positive durations select the defaults.
func NewMemoryStore(idleTimeout, cleanupInterval time.Duration, logger *slog.Logger) *MemoryStore {
	if idleTimeout <= 0 {
		idleTimeout = DefaultIdleTimeout
	}
	if cleanupInterval <= 0 {
		cleanupInterval = DefaultCleanupInterval
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &MemoryStore{
		sessions:    make(map[string]*memorySession),
		idleTimeout: idleTimeout,
		ticker:      time.NewTicker(cleanupInterval),
		done:        make(chan struct{}),
		logger:      logger,
		now:         time.Now,
	}
	go s.cleanupLoop()
	return s
}

// Session returns the state for id.
func (s *MemoryStore) Session(id string) State {
	if id == "" {
		id = DefaultID
	}
	return &memoryState{store: s, id: id}
}

// Drop removes the session.
func (s *MemoryStore) Drop(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// Len returns the number of live sessions.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Close stops the cleanup goroutine.
func (s *MemoryStore) Close() error {
	s.closeOnce.Do(func() {
		s.ticker.Stop()
		close(s.done)
	})
	return nil
}

func (s *MemoryStore) cleanupLoop() {
	for {
		select {
		case <-s.ticker.C:
			if n := s.expireIdle(); n > 0 {
				s.logger.Info("Cleaned up idle sessions", "count", n)
			}
		case <-s.done:
			return
		}
	}
}

func (s *MemoryStore) expireIdle() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	expired := 0
	for id, sess := range s.sessions {
		if now.Sub(sess.lastAccess) > s.idleTimeout {
			delete(s.sessions, id)
			expired++
		}
	}
	return expired
}

// touch returns the session for id, creating it if create is set. The caller holds mu.
func (s *MemoryStore) touch(id string, create bool) *memorySession {
	sess, ok := s.sessions[id]
	if !ok {
		if !create {
			return nil
		}
		sess = &memorySession{values: make(map[string][]byte)}
		s.sessions[id] = sess
	}
	sess.lastAccess = s.now()
	return sess
}

type memoryState struct {
	store *MemoryStore
	id    string
}

func (m *memoryState) ID() string { return m.id }

func (m *memoryState) Load(ctx context.Context, ns string, dst any) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	m.store.mu.Lock()
	var data []byte
	if sess := m.store.touch(m.id, false); sess != nil {
		data = sess.values[ns]
	}
	m.store.mu.Unlock()

	if data == nil {
		return false, nil
	}
	return true, decode(ns, data, dst)
}

func (m *memoryState) StoreOnce(ctx context.Context, ns string, v any) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	data, err := encode(ns, v)
	if err != nil {
		return false, err
	}

	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	sess := m.store.touch(m.id, true)
	if _, exists := sess.values[ns]; exists {
		return false, nil
	}
	sess.values[ns] = data
	return true, nil
}
