// Package memory implementa repository.Store en memoria con la misma semántica
// que el store Postgres: email único case-insensitive, borrado en cascada y
// SaveProfile atómico. Se usa en tests y con storage.driver=memory.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/dropDatabas3/usercards/internal/domain/repository"
)

// Store guarda usuarios y tarjetas en maps protegidos por un único mutex.
type Store struct {
	mu       sync.RWMutex
	users    map[int64]repository.User // sin Cards; se arman al leer
	cards    map[int64]repository.Card
	byEmail  map[string]int64
	nextUser int64
	nextCard int64
}

var _ repository.Store = (*Store)(nil)

// New crea un store vacío.
func New() *Store {
	return &Store{
		users:   make(map[int64]repository.User),
		cards:   make(map[int64]repository.Card),
		byEmail: make(map[string]int64),
	}
}

func (s *Store) Users() repository.UserRepository { return (*users)(s) }
func (s *Store) Cards() repository.CardRepository { return (*cards)(s) }

func (s *Store) Ping(context.Context) error { return nil }
func (s *Store) Close() error               { return nil }

func emailKey(e string) string { return strings.ToLower(strings.TrimSpace(e)) }

// withCards arma la vista del usuario con sus tarjetas ordenadas por id. Requiere lock.
func (s *Store) withCards(u repository.User) repository.User {
	out := u
	out.Cards = s.cardsOf(u.ID)
	return out
}

func (s *Store) cardsOf(userID int64) []repository.Card {
	out := []repository.Card{}
	for _, c := range s.cards {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Store) insertCard(c repository.Card) repository.Card {
	s.nextCard++
	c.ID = s.nextCard
	s.cards[c.ID] = c
	return c
}

func page[T any](items []T, f repository.PageFilter) []T {
	off := f.Offset()
	if off >= len(items) || f.Size <= 0 {
		return []T{}
	}
	end := off + f.Size
	if end > len(items) {
		end = len(items)
	}
	return items[off:end]
}
