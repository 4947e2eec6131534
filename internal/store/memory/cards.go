package memory

import (
	"context"
	"sort"

	"github.com/dropDatabas3/usercards/internal/domain/repository"
)

type cards Store

func (r *cards) s() *Store { return (*Store)(r) }

func (r *cards) Create(_ context.Context, c repository.Card) (*repository.Card, error) {
	s := r.s()
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[c.UserID]; !ok {
		return nil, repository.ErrNotFound
	}
	out := s.insertCard(c)
	return &out, nil
}

func (r *cards) GetByID(_ context.Context, id int64) (*repository.Card, error) {
	s := r.s()
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.cards[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

func (r *cards) ListByUser(_ context.Context, userID int64) ([]repository.Card, error) {
	s := r.s()
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cardsOf(userID), nil
}

func (r *cards) List(_ context.Context, f repository.PageFilter) ([]repository.Card, error) {
	s := r.s()
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]repository.Card, 0, len(s.cards))
	for _, c := range s.cards {
		all = append(all, c)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return append([]repository.Card{}, page(all, f)...), nil
}

func (r *cards) Count(context.Context) (int64, error) {
	s := r.s()
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.cards)), nil
}

func (r *cards) Update(_ context.Context, c repository.Card) (*repository.Card, error) {
	s := r.s()
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.cards[c.ID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cur.Number, cur.Holder, cur.ExpirationDate = c.Number, c.Holder, c.ExpirationDate
	s.cards[c.ID] = cur
	return &cur, nil
}

func (r *cards) Delete(_ context.Context, id int64) error {
	s := r.s()
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.cards[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.cards, id)
	return nil
}

func (r *cards) OwnerEmail(_ context.Context, cardID int64) (string, error) {
	s := r.s()
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.cards[cardID]
	if !ok {
		return "", repository.ErrNotFound
	}
	u, ok := s.users[c.UserID]
	if !ok {
		return "", repository.ErrNotFound
	}
	return u.Email, nil
}
