package cards

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dropDatabas3/usercards/internal/cache"
	"github.com/dropDatabas3/usercards/internal/domain/repository"
	"github.com/dropDatabas3/usercards/internal/observability/logger"
	"github.com/dropDatabas3/usercards/internal/validation"
)

// CreateInput datos de alta de tarjeta.
type CreateInput struct {
	UserID         int64
	Number         string
	Holder         string
	ExpirationDate time.Time
}

// UpdateInput datos editables de una tarjeta. El dueño no cambia.
type UpdateInput struct {
	Number         string
	Holder         string
	ExpirationDate time.Time
}

// CardService define las operaciones sobre tarjetas.
type CardService interface {
	Create(ctx context.Context, in CreateInput) (*repository.Card, error)
	Get(ctx context.Context, id int64) (*repository.Card, error)
	List(ctx context.Context, page, size int) ([]repository.Card, int64, error)
	ListByUser(ctx context.Context, userID int64) ([]repository.Card, error)
	Update(ctx context.Context, id int64, in UpdateInput) (*repository.Card, error)
	Delete(ctx context.Context, id int64) error
}

type cardService struct {
	store repository.Store
	cache *cache.Aside
}

// NewCardService crea el service de tarjetas.
func NewCardService(d Deps) CardService {
	return &cardService{store: d.Store, cache: d.Cache}
}

func (s *cardService) log(ctx context.Context, op string) *zap.Logger {
	return logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("cards"),
		logger.Op(op),
	)
}

func validate(number, holder string, exp time.Time) error {
	var verrs validation.Errors
	validation.Card("", number, holder, exp, &verrs)
	if len(verrs) > 0 {
		return invalid(verrs)
	}
	return nil
}

func (s *cardService) Create(ctx context.Context, in CreateInput) (*repository.Card, error) {
	log := s.log(ctx, "Create").With(logger.UserID(in.UserID))

	if err := validate(in.Number, in.Holder, in.ExpirationDate); err != nil {
		return nil, err
	}
	if in.UserID <= 0 {
		var verrs validation.Errors
		verrs.Add("userId", "is required")
		return nil, invalid(verrs)
	}

	ownerEmail, err := s.store.Users().EmailByID(ctx, in.UserID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, fmt.Errorf("%w: user %d", ErrOwnerNotFound, in.UserID)
		}
		return nil, err
	}

	c, err := s.store.Cards().Create(ctx, repository.Card{
		UserID:         in.UserID,
		Number:         in.Number,
		Holder:         strings.TrimSpace(in.Holder),
		ExpirationDate: in.ExpirationDate,
	})
	if err != nil {
		// el dueño pudo haberse borrado entre la consulta y el insert
		if repository.IsNotFound(err) {
			return nil, fmt.Errorf("%w: user %d", ErrOwnerNotFound, in.UserID)
		}
		return nil, err
	}

	s.cache.Invalidate(ctx, ownerKeys(c.UserID, ownerEmail)...)

	log.Info("card created", logger.CardID(c.ID), logger.CardNumber(c.Number))
	return c, nil
}

func (s *cardService) Get(ctx context.Context, id int64) (*repository.Card, error) {
	var c repository.Card
	err := s.cache.Load(ctx, cache.CardKey(id), &c, func(ctx context.Context) (any, error) {
		return s.store.Cards().GetByID(ctx, id)
	})
	if err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

func (s *cardService) List(ctx context.Context, page, size int) ([]repository.Card, int64, error) {
	total, err := s.store.Cards().Count(ctx)
	if err != nil {
		return nil, 0, err
	}
	list, err := s.store.Cards().List(ctx, repository.PageFilter{Page: page, Size: size})
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// ListByUser devuelve las tarjetas del usuario. ErrOwnerNotFound si no existe.
func (s *cardService) ListByUser(ctx context.Context, userID int64) ([]repository.Card, error) {
	var list []repository.Card
	err := s.cache.Load(ctx, cache.UserCardsKey(userID), &list, func(ctx context.Context) (any, error) {
		if _, err := s.store.Users().EmailByID(ctx, userID); err != nil {
			return nil, err
		}
		return s.store.Cards().ListByUser(ctx, userID)
	})
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, fmt.Errorf("%w: user %d", ErrOwnerNotFound, userID)
		}
		return nil, err
	}
	if list == nil {
		list = []repository.Card{}
	}
	return list, nil
}

func (s *cardService) Update(ctx context.Context, id int64, in UpdateInput) (*repository.Card, error) {
	log := s.log(ctx, "Update").With(logger.CardID(id))

	if err := validate(in.Number, in.Holder, in.ExpirationDate); err != nil {
		return nil, err
	}

	current, err := s.store.Cards().GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}

	updated, err := s.store.Cards().Update(ctx, repository.Card{
		ID:             id,
		UserID:         current.UserID,
		Number:         in.Number,
		Holder:         strings.TrimSpace(in.Holder),
		ExpirationDate: in.ExpirationDate,
	})
	if err != nil {
		return nil, notFound(err)
	}

	s.evict(ctx, updated.UserID, id)
	log.Info("card updated", logger.CardNumber(updated.Number))
	return updated, nil
}

func (s *cardService) Delete(ctx context.Context, id int64) error {
	log := s.log(ctx, "Delete").With(logger.CardID(id))

	current, err := s.store.Cards().GetByID(ctx, id)
	if err != nil {
		return notFound(err)
	}
	if err := s.store.Cards().Delete(ctx, id); err != nil {
		return notFound(err)
	}

	s.evict(ctx, current.UserID, id)
	log.Info("card deleted")
	return nil
}

// evict invalida la tarjeta y el perfil cacheado de su dueño (que la embebe).
func (s *cardService) evict(ctx context.Context, userID, cardID int64) {
	keys := []string{cache.CardKey(cardID), cache.UserKey(userID), cache.UserCardsKey(userID)}
	if email, err := s.store.Users().EmailByID(ctx, userID); err == nil {
		keys = append(keys, cache.UserEmailKey(email))
	}
	s.cache.Invalidate(ctx, keys...)
}

func ownerKeys(userID int64, email string) []string {
	return []string{cache.UserKey(userID), cache.UserEmailKey(email), cache.UserCardsKey(userID)}
}
