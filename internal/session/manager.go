package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Elite-tch/privacycart/internal/sequencer"

	"github.com/google/uuid"
	"github.com/labstack/gommon/log"
)

var ErrNotFound = errors.New("session not found")

const DefaultTTL = 30 * time.Minute

type Manager struct {
	settings Settings
	sched    sequencer.Scheduler
	logger   *log.Logger
	ttl      time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.RWMutex
	sessions  map[string]*Session
	onSettled SettlementHandler
}

func NewManager(settings Settings, sched sequencer.Scheduler, ttl time.Duration, logger *log.Logger) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		settings: settings,
		sched:    sched,
		logger:   logger,
		ttl:      ttl,
		ctx:      ctx,
		cancel:   cancel,
		sessions: make(map[string]*Session),
	}
}

// OnSettled registers the handler given to sessions created afterwards.
func (m *Manager) OnSettled(h SettlementHandler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onSettled = h
}

func (m *Manager) Create() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := uuid.NewString()
	s := newSession(m.ctx, id, m.settings, m.sched, m.logger, m.onSettled)
	m.sessions[id] = s

	m.logger.Infoj(log.JSON{"msg": "session created", "session_id": id, "active": len(m.sessions)})
	return s
}

func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s, nil
}

func (m *Manager) Close(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	s.Close()
	m.logger.Infoj(log.JSON{"msg": "session closed", "session_id": id})
	return nil
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep closes sessions idle for longer than the TTL and reports how many.
func (m *Manager) Sweep() int {
	cutoff := m.sched.Now().Add(-m.ttl)

	m.mu.Lock()
	var expired []*Session
	for id, s := range m.sessions {
		if s.LastSeen().Before(cutoff) {
			expired = append(expired, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range expired {
		s.Close()
	}
	if len(expired) > 0 {
		m.logger.Infoj(log.JSON{"msg": "expired idle sessions", "count": len(expired)})
	}
	return len(expired)
}

// Run sweeps idle sessions until ctx is done.
func (m *Manager) Run(ctx context.Context) {
	ticker := time.NewTicker(m.ttl / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep()
		}
	}
}

// CloseAll cancels every session; used on shutdown.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
	m.cancel()
}
