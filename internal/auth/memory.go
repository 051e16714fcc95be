package auth

import (
	"context"
	"sync"
	"time"

	"leadsyncflow.app/internal/ids"
)

var _ Store = (*InMemory)(nil)

// InMemory implements Store with in-process concurrency safety. It backs
// tests and local runs without Postgres; the semantics mirror PGStore,
// including read-time filtering of expired PENDING rows.
type InMemory struct {
	mu       sync.RWMutex
	accounts map[string]*Account // id -> record
	byEmail  map[string]string   // email -> id
	revoked  map[string]time.Time
	now      func() time.Time
}

// NewInMemory creates an empty store.
func NewInMemory() *InMemory {
	return &InMemory{
		accounts: make(map[string]*Account),
		byEmail:  make(map[string]string),
		revoked:  make(map[string]time.Time),
		now:      time.Now,
	}
}

func (s *InMemory) Accounts(context.Context) AccountStore         { return (*memAccounts)(s) }
func (s *InMemory) RevokedTokens(context.Context) RevocationStore { return (*memRevoked)(s) }

// expired reports whether a PENDING record has outlived its retention.
func (s *InMemory) expired(a *Account) bool {
	return a.Status == StatusPending && !a.CreatedAt.After(s.now().Add(-PendingRetention))
}

func clone(a *Account) *Account {
	cp := *a
	return &cp
}

type memAccounts InMemory

func (s *memAccounts) Create(ctx context.Context, a *Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.byEmail[a.Email]; ok {
		existing := s.accounts[id]
		if existing != nil && !(*InMemory)(s).expired(existing) {
			return ErrEmailTaken
		}
		delete(s.accounts, id)
		delete(s.byEmail, a.Email)
	}
	if a.ID == "" {
		a.ID = ids.New()
	}
	now := s.now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now
	s.accounts[a.ID] = clone(a)
	s.byEmail[a.Email] = a.ID
	return nil
}

func (s *memAccounts) Find(ctx context.Context, id string) (*Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[id]
	if !ok || (*InMemory)(s).expired(a) {
		return nil, ErrNotFound
	}
	return clone(a), nil
}

func (s *memAccounts) FindByEmail(ctx context.Context, email string) (*Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	a, ok := s.accounts[id]
	if !ok || (*InMemory)(s).expired(a) {
		return nil, ErrNotFound
	}
	return clone(a), nil
}

func (s *memAccounts) ListPending(ctx context.Context) ([]*Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var res []*Account
	for _, a := range s.accounts {
		if a.Status != StatusPending || (*InMemory)(s).expired(a) {
			continue
		}
		cp := clone(a)
		cp.PasswordHash = ""
		res = append(res, cp)
	}
	// Newest first.
	for i := 0; i < len(res); i++ {
		for j := i + 1; j < len(res); j++ {
			if res[j].CreatedAt.After(res[i].CreatedAt) {
				res[i], res[j] = res[j], res[i]
			}
		}
	}
	return res, nil
}

func (s *memAccounts) Approve(ctx context.Context, id, role, approvedBy string) (*Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok || a.Status != StatusPending || (*InMemory)(s).expired(a) {
		return nil, ErrNotFound
	}
	now := s.now().UTC()
	a.Status = StatusApproved
	a.Role = role
	a.ApprovedBy = approvedBy
	a.ApprovedAt = now
	a.UpdatedAt = now
	return clone(a), nil
}

func (s *memAccounts) DeletePending(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok || a.Status != StatusPending || (*InMemory)(s).expired(a) {
		return ErrNotFound
	}
	delete(s.byEmail, a.Email)
	delete(s.accounts, id)
	return nil
}

func (s *memAccounts) Promote(ctx context.Context, id string) (*Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok || a.Status != StatusApproved {
		return nil, ErrNotFound
	}
	a.Role = RoleSuperAdmin
	a.UpdatedAt = s.now().UTC()
	return clone(a), nil
}

func (s *memAccounts) HasSuperAdmin(ctx context.Context) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.accounts {
		if a.Status == StatusApproved && a.Role == RoleSuperAdmin {
			return true, nil
		}
	}
	return false, nil
}

func (s *memAccounts) PurgeExpiredPending(ctx context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, a := range s.accounts {
		if a.Status == StatusPending && !a.CreatedAt.After(before) {
			delete(s.byEmail, a.Email)
			delete(s.accounts, id)
			n++
		}
	}
	return n, nil
}

type memRevoked InMemory

func (s *memRevoked) Record(ctx context.Context, token string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.revoked[token]; ok {
		return nil
	}
	s.revoked[token] = expiresAt
	return nil
}

func (s *memRevoked) IsRevoked(ctx context.Context, token string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	exp, ok := s.revoked[token]
	if !ok {
		return false, nil
	}
	return exp.After(s.now()), nil
}

func (s *memRevoked) PurgeExpired(ctx context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for tok, exp := range s.revoked {
		if !exp.After(before) {
			delete(s.revoked, tok)
			n++
		}
	}
	return n, nil
}
