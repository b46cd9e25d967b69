package auth

import (
	"context"
	"sync"
)

type memCredentialStore struct {
	mu      sync.Mutex
	byID    map[string]Principal
	lookups int
	err     error
}

func newMemCredentialStore(principals ...Principal) *memCredentialStore {
	s := &memCredentialStore{byID: make(map[string]Principal)}
	for _, p := range principals {
		s.byID[p.ID] = p
	}
	return s
}

func (s *memCredentialStore) FindByID(_ context.Context, id string) (*Principal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lookups++
	if s.err != nil {
		return nil, s.err
	}
	p, ok := s.byID[id]
	if !ok {
		return nil, ErrPrincipalNotFound
	}
	return &p, nil
}

func (s *memCredentialStore) FindByUsername(_ context.Context, username string) (*Principal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.byID {
		if p.Username == username {
			p := p
			return &p, nil
		}
	}
	return nil, ErrPrincipalNotFound
}

func (s *memCredentialStore) UpdateBanState(_ context.Context, id string, banned bool, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.byID[id]
	if !ok {
		return ErrPrincipalNotFound
	}
	p.Banned = banned
	p.BanReason = reason
	s.byID[id] = p
	return nil
}

func (s *memCredentialStore) setRole(id string, role Role) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.byID[id]
	p.Role = role
	s.byID[id] = p
}

func (s *memCredentialStore) lookupCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lookups
}
