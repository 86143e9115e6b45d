package session

import (
	"context"
	"sort"
	"sync"

	"github.com/syrjfsih/TwoNCafe/internal/domain/model"
	repo "github.com/syrjfsih/TwoNCafe/internal/repository"
)

// プロセス内のセッション置き場
// 再起動で消えるが、業務データには影響しない。
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]model.TableSession
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]model.TableSession)}
}

func (s *MemoryStore) Get(_ context.Context, id string) (model.TableSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return model.TableSession{}, repo.ErrNotFound
	}
	return clone(sess), nil
}

func (s *MemoryStore) Save(_ context.Context, sess model.TableSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[sess.ID] = clone(sess)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, id)
	return nil
}

// ID順で返す
func (s *MemoryStore) List(_ context.Context) ([]model.TableSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.TableSession, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, clone(sess))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// カートのスライスを共有しない
func clone(s model.TableSession) model.TableSession {
	if s.Cart != nil {
		s.Cart = append([]model.CartLine(nil), s.Cart...)
	}
	return s
}
