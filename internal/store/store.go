package store

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/rovshanmuradov/coinwatch/internal/domain"
	"go.uber.org/zap"
)

// Store owns the tracked tokens. Every exported method is atomic with respect
// to every other one, and readers only ever receive deep copies.
type Store struct {
	mu     sync.RWMutex
	tokens map[domain.TokenID]*domain.TrackedToken
	order  []domain.TokenID
	logger *zap.Logger

	// Statistics (accessed atomically)
	reads  uint64
	writes uint64
}

// New creates an empty store.
func New(logger *zap.Logger) *Store {
	return &Store{
		tokens: make(map[domain.TokenID]*domain.TrackedToken),
		logger: logger.Named("store"),
	}
}

// Load replaces the whole content of the store, e.g. with the persisted
// snapshot at startup. Orphaned entries are dropped and duplicate ids rejected.
func (s *Store) Load(tokens []domain.TrackedToken) error {
	next := make(map[domain.TokenID]*domain.TrackedToken, len(tokens))
	order := make([]domain.TokenID, 0, len(tokens))
	for _, t := range tokens {
		id := domain.NormalizeID(string(t.ID))
		if id == "" {
			return &domain.ValidationError{Field: "name", Msg: "must not be empty"}
		}
		if _, dup := next[id]; dup {
			return &domain.ValidationError{Field: "name", Msg: "duplicate token " + id.String()}
		}
		if t.Orphaned() {
			s.logger.Debug("Skipping token without membership", zap.String("token", id.String()))
			continue
		}
		c := t.Clone()
		c.ID = id
		next[id] = &c
		order = append(order, id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = next
	s.order = order
	atomic.AddUint64(&s.writes, 1)
	return nil
}

// GetAll returns a snapshot of every token in insertion order.
func (s *Store) GetAll() []domain.TrackedToken {
	s.mu.RLock()
	defer s.mu.RUnlock()

	atomic.AddUint64(&s.reads, 1)
	snapshot := make([]domain.TrackedToken, 0, len(s.order))
	for _, id := range s.order {
		snapshot = append(snapshot, s.tokens[id].Clone())
	}
	return snapshot
}

// Get returns a copy of one token.
func (s *Store) Get(id domain.TokenID) (domain.TrackedToken, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	atomic.AddUint64(&s.reads, 1)
	t, ok := s.tokens[id]
	if !ok {
		return domain.TrackedToken{}, false
	}
	return t.Clone(), true
}

// IDs returns the identifiers of all tracked tokens in insertion order.
func (s *Store) IDs() []domain.TokenID {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]domain.TokenID, len(s.order))
	copy(ids, s.order)
	return ids
}

// Len returns the number of tracked tokens.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// UpsertMembership sets the membership of id to exactly m. A holding is
// required iff m contains Portfolio and replaces any previous one. The token is
// created when absent and deleted in the same step when m is empty, so no
// reader ever sees a token with both flags false.
//
// An empty m on an absent token is rejected: there is nothing to create.
func (s *Store) UpsertMembership(id domain.TokenID, m domain.Membership, holding *domain.Holding) (token domain.TrackedToken, removed bool, err error) {
	if id == "" {
		return domain.TrackedToken{}, false, &domain.ValidationError{Field: "id", Msg: "must not be empty"}
	}
	if m.Has(domain.Portfolio) {
		if holding == nil {
			return domain.TrackedToken{}, false, &domain.ValidationError{Field: "holding", Msg: "required for portfolio membership"}
		}
		if _, err := domain.NewHolding(holding.Amount, holding.AvgBuyPrice); err != nil {
			return domain.TrackedToken{}, false, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, exists := s.tokens[id]
	if !exists && m == domain.NoMembership {
		return domain.TrackedToken{}, false, &domain.ValidationError{Field: "membership", Msg: "would leave absent token " + id.String() + " without any list"}
	}

	next := domain.TrackedToken{ID: id}
	if exists {
		next = current.Clone()
	}
	next.InWatchlist = m.Has(domain.Watchlist)
	next.Holding = nil
	if m.Has(domain.Portfolio) {
		h := *holding
		next.Holding = &h
	}

	atomic.AddUint64(&s.writes, 1)
	if next.Orphaned() {
		s.deleteLocked(id)
		return next, true, nil
	}

	s.tokens[id] = &next
	if !exists {
		s.order = append(s.order, id)
	}
	return next.Clone(), false, nil
}

// RemoveIfOrphaned deletes id when it belongs to neither list.
func (s *Store) RemoveIfOrphaned(id domain.TokenID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tokens[id]
	if !ok || !t.Orphaned() {
		return false
	}
	s.deleteLocked(id)
	atomic.AddUint64(&s.writes, 1)
	return true
}

// ApplyMarket replaces the market fields of id and stamps the update time.
// Unknown ids are ignored and reported with false.
func (s *Store) ApplyMarket(id domain.TokenID, fields domain.MarketFields, at time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tokens[id]
	if !ok {
		return false
	}
	next := t.Clone()
	next.Market = &fields
	next.UpdatedAt = at
	s.tokens[id] = &next
	atomic.AddUint64(&s.writes, 1)
	return true
}

func (s *Store) deleteLocked(id domain.TokenID) {
	delete(s.tokens, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// GetStats returns store statistics
func (s *Store) GetStats() (tokens, reads, writes uint64) {
	s.mu.RLock()
	tokens = uint64(len(s.order))
	s.mu.RUnlock()

	reads = atomic.LoadUint64(&s.reads)
	writes = atomic.LoadUint64(&s.writes)
	return tokens, reads, writes
}
