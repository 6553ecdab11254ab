package service

import (
	"context"
	"sync"
	"time"

	"github.com/Katyxel/add-basket/internal/basket"
	"github.com/Katyxel/add-basket/internal/store"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultSessionIdleTTL = 30 * time.Minute
	sessionLoadTimeout    = 30 * time.Second
)

type sessionEntry struct {
	cart     *CartService
	lastUsed time.Time
}

// Sessions hands out one CartService per browser session, loading each
// session's cart from the slot the first time it is asked for. Carts idle for
// longer than idleTTL are dropped; the slot keeps their durable copy.
type Sessions struct {
	mu       sync.RWMutex
	carts    map[string]*sessionEntry
	sfg      singleflight.Group // one Load per session under concurrent first requests
	slot     store.Slot
	notifier Notifier
	logger   *zap.Logger
	policy   DuplicatePolicy
	idleTTL  time.Duration
	now      func() time.Time
}

func NewSessions(slot store.Slot, notifier Notifier, logger *zap.Logger, policy DuplicatePolicy, idleTTL time.Duration) *Sessions {
	if logger == nil {
		logger = zap.NewNop()
	}
	if idleTTL <= 0 {
		idleTTL = DefaultSessionIdleTTL
	}
	return &Sessions{
		carts:    make(map[string]*sessionEntry),
		slot:     slot,
		notifier: notifier,
		logger:   logger,
		policy:   policy,
		idleTTL:  idleTTL,
		now:      time.Now,
	}
}

func (s *Sessions) Get(ctx context.Context, sessionID string) (*CartService, error) {
	if cart, ok := s.touch(sessionID); ok {
		return cart, nil
	}

	v, err, _ := s.sfg.Do(sessionID, func() (interface{}, error) {
		if existing, ok := s.touch(sessionID); ok {
			return existing, nil
		}

		// shared by every waiter, so one caller going away must not fail the rest
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sessionLoadTimeout)
		defer cancel()

		l := s.logger.With(zap.String("session_id", sessionID))
		cs := store.NewCartStore(s.slot, store.SessionKey(sessionID), l)
		cart := NewCartService(cs, basket.New(), s.notifier, l, s.policy)
		if err := cart.Load(loadCtx); err != nil {
			return nil, err
		}

		s.mu.Lock()
		s.carts[sessionID] = &sessionEntry{cart: cart, lastUsed: s.now()}
		s.mu.Unlock()
		return cart, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*CartService), nil
}

func (s *Sessions) touch(sessionID string) (*CartService, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.carts[sessionID]
	if !ok {
		return nil, false
	}
	entry.lastUsed = s.now()
	return entry.cart, true
}

// Forget drops the in-memory cart so the next Get reloads it from the slot,
// like a page reload.
func (s *Sessions) Forget(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, sessionID)
}

func (s *Sessions) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.carts)
}

// EvictIdle forgets every cart not used within idleTTL and reports how many
// were dropped.
func (s *Sessions) EvictIdle() int {
	cutoff := s.now().Add(-s.idleTTL)

	s.mu.Lock()
	defer s.mu.Unlock()
	evicted := 0
	for id, entry := range s.carts {
		if entry.lastUsed.Before(cutoff) {
			delete(s.carts, id)
			evicted++
		}
	}
	return evicted
}

// RunJanitor evicts idle carts every interval until ctx is done.
func (s *Sessions) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.EvictIdle(); n > 0 {
				s.logger.Debug("evicted idle carts", zap.Int("count", n), zap.Int("remaining", s.Len()))
			}
		}
	}
}
