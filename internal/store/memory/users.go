package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/dropDatabas3/usercards/internal/domain/repository"
)

type users Store

func (r *users) s() *Store { return (*Store)(r) }

func (r *users) Create(_ context.Context, in repository.CreateUserInput) (*repository.User, error) {
	s := r.s()
	s.mu.Lock()
	defer s.mu.Unlock()

	key := emailKey(in.Email)
	if _, dup := s.byEmail[key]; dup {
		return nil, repository.ErrConflict
	}
	s.nextUser++
	u := repository.User{
		ID:        s.nextUser,
		Name:      in.Name,
		Surname:   in.Surname,
		BirthDate: in.BirthDate,
		Email:     strings.TrimSpace(in.Email),
	}
	s.users[u.ID] = u
	s.byEmail[key] = u.ID
	for _, c := range in.Cards {
		c.UserID = u.ID
		s.insertCard(c)
	}
	out := s.withCards(u)
	return &out, nil
}

func (r *users) GetByID(_ context.Context, id int64) (*repository.User, error) {
	s := r.s()
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := s.withCards(u)
	return &out, nil
}

func (r *users) GetByEmail(_ context.Context, email string) (*repository.User, error) {
	s := r.s()
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[emailKey(email)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := s.withCards(s.users[id])
	return &out, nil
}

func (r *users) GetByIDs(_ context.Context, ids []int64) ([]repository.User, error) {
	s := r.s()
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[int64]struct{}, len(ids))
	out := []repository.User{}
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if u, ok := s.users[id]; ok {
			out = append(out, s.withCards(u))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *users) List(_ context.Context, f repository.PageFilter) ([]repository.User, error) {
	s := r.s()
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]repository.User, 0, len(s.users))
	for _, u := range s.users {
		all = append(all, u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	pg := page(all, f)
	out := make([]repository.User, len(pg))
	for i, u := range pg {
		out[i] = s.withCards(u)
	}
	return out, nil
}

func (r *users) Count(context.Context) (int64, error) {
	s := r.s()
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.users)), nil
}

func (r *users) EmailByID(_ context.Context, id int64) (string, error) {
	s := r.s()
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return "", repository.ErrNotFound
	}
	return u.Email, nil
}

func (r *users) SaveProfile(_ context.Context, up repository.ProfileUpdate) (*repository.User, error) {
	s := r.s()
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[up.UserID]
	if !ok {
		return nil, repository.ErrNotFound
	}

	// validar antes de mutar: todo o nada
	if up.ReplaceCards {
		for _, c := range up.Cards {
			if c.ID == 0 {
				continue
			}
			cur, ok := s.cards[c.ID]
			if !ok || cur.UserID != up.UserID {
				return nil, fmt.Errorf("%w: card %d", repository.ErrStaleCard, c.ID)
			}
		}
	}

	u.Name, u.Surname, u.BirthDate = up.Name, up.Surname, up.BirthDate
	s.users[u.ID] = u

	if up.ReplaceCards {
		for _, id := range up.DeleteCardIDs {
			if c, ok := s.cards[id]; ok && c.UserID == up.UserID {
				delete(s.cards, id)
			}
		}
		for _, c := range up.Cards {
			c.UserID = up.UserID
			if c.ID > 0 {
				s.cards[c.ID] = c
			} else {
				s.insertCard(c)
			}
		}
	}

	out := s.withCards(u)
	return &out, nil
}

func (r *users) Delete(_ context.Context, id int64) error {
	s := r.s()
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	for cid, c := range s.cards {
		if c.UserID == id {
			delete(s.cards, cid)
		}
	}
	delete(s.byEmail, emailKey(u.Email))
	delete(s.users, id)
	return nil
}
