package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dropDatabas3/usercards/internal/cache"
	"github.com/dropDatabas3/usercards/internal/domain/repository"
	"github.com/dropDatabas3/usercards/internal/observability/logger"
	"github.com/dropDatabas3/usercards/internal/profile"
	"github.com/dropDatabas3/usercards/internal/security/identity"
	"github.com/dropDatabas3/usercards/internal/validation"
)

// CardInput es una tarjeta entrante (alta o actualización de perfil).
type CardInput = repository.CardInput

// CreateInput datos de alta de usuario.
type CreateInput struct {
	Name      string
	Surname   string
	BirthDate time.Time
	Email     string
	Cards     []CardInput // los ids se ignoran
}

// UpdateInput datos de actualización de perfil.
// Cards nil => tarjetas intactas; slice vacío => se borran todas.
type UpdateInput struct {
	Name      string
	Surname   string
	BirthDate time.Time
	Cards     *[]CardInput
}

// SyncInput valores opcionales que pisan los claims del token.
type SyncInput struct {
	Name      string
	Surname   string
	BirthDate time.Time
}

// UserService define las operaciones sobre usuarios.
type UserService interface {
	Create(ctx context.Context, in CreateInput) (*repository.User, error)
	// Sync devuelve el usuario de la identidad, creándolo si no existe (created=true).
	Sync(ctx context.Context, ident identity.Identity, claims map[string]any, in SyncInput) (u *repository.User, created bool, err error)
	Get(ctx context.Context, id int64) (*repository.User, error)
	GetByEmail(ctx context.Context, email string) (*repository.User, error)
	GetByIDs(ctx context.Context, ids []int64) ([]repository.User, error)
	List(ctx context.Context, page, size int) ([]repository.User, int64, error)
	Update(ctx context.Context, id int64, in UpdateInput) (*repository.User, error)
	Delete(ctx context.Context, id int64) error
}

type userService struct {
	store repository.Store
	cache *cache.Aside
	now   func() time.Time
}

// NewUserService crea el service de usuarios.
func NewUserService(d Deps) UserService {
	now := d.Now
	if now == nil {
		now = time.Now
	}
	return &userService{store: d.Store, cache: d.Cache, now: now}
}

const componentUsers = "users"

func (s *userService) log(ctx context.Context, op string) *zap.Logger {
	return logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component(componentUsers),
		logger.Op(op),
	)
}

func normalizeEmail(e string) string { return strings.ToLower(strings.TrimSpace(e)) }

func (s *userService) Create(ctx context.Context, in CreateInput) (*repository.User, error) {
	log := s.log(ctx, "Create")

	in.Email = normalizeEmail(in.Email)

	var verrs validation.Errors
	validation.Profile(in.Name, in.Surname, in.BirthDate, s.now(), &verrs)
	validation.Email(in.Email, &verrs)
	for i, c := range in.Cards {
		validation.Card(fmt.Sprintf("cards[%d].", i), c.Number, c.Holder, c.ExpirationDate, &verrs)
	}
	if len(verrs) > 0 {
		return nil, invalid(verrs)
	}

	cards := make([]repository.Card, 0, len(in.Cards))
	for _, c := range in.Cards {
		cards = append(cards, repository.Card{
			Number:         c.Number,
			Holder:         strings.TrimSpace(c.Holder),
			ExpirationDate: c.ExpirationDate,
		})
	}

	u, err := s.store.Users().Create(ctx, repository.CreateUserInput{
		Name:      strings.TrimSpace(in.Name),
		Surname:   strings.TrimSpace(in.Surname),
		BirthDate: in.BirthDate,
		Email:     in.Email,
		Cards:     cards,
	})
	if err != nil {
		return nil, mapStoreErr(err)
	}

	// una lectura previa por email pudo haber cacheado un miss en otra réplica
	s.cache.Invalidate(ctx, cache.UserEmailKey(u.Email))

	log.Info("user created", logger.UserID(u.ID), logger.Email(u.Email), logger.Count(len(u.Cards)))
	return u, nil
}

func (s *userService) Sync(ctx context.Context, ident identity.Identity, claims map[string]any, in SyncInput) (*repository.User, bool, error) {
	log := s.log(ctx, "Sync")

	email := normalizeEmail(claimString(claims, "email"))
	if email == "" {
		email = normalizeEmail(ident.Name)
	}
	if !validation.ValidEmail(email) {
		var verrs validation.Errors
		verrs.Add("email", "token does not carry a usable email")
		return nil, false, invalid(verrs)
	}

	existing, err := s.store.Users().GetByEmail(ctx, email)
	if err == nil {
		return existing, false, nil
	}
	if !repository.IsNotFound(err) {
		return nil, false, err
	}

	create := CreateInput{
		Name:      firstNonBlank(in.Name, claimString(claims, "given_name")),
		Surname:   firstNonBlank(in.Surname, claimString(claims, "family_name")),
		BirthDate: in.BirthDate,
		Email:     email,
	}
	if create.BirthDate.IsZero() {
		if bd, perr := time.Parse("2006-01-02", claimString(claims, "birthdate")); perr == nil {
			create.BirthDate = bd
		}
	}

	u, err := s.Create(ctx, create)
	if errors.Is(err, ErrEmailDuplicate) {
		// carrera con otro sync concurrente: gana el que insertó primero
		u, err = s.store.Users().GetByEmail(ctx, email)
		if err != nil {
			return nil, false, mapStoreErr(err)
		}
		return u, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	log.Info("user synced from token", logger.UserID(u.ID))
	return u, true, nil
}

func (s *userService) Get(ctx context.Context, id int64) (*repository.User, error) {
	var u repository.User
	err := s.cache.Load(ctx, cache.UserKey(id), &u, func(ctx context.Context) (any, error) {
		return s.store.Users().GetByID(ctx, id)
	})
	if err != nil {
		return nil, mapStoreErr(err)
	}
	return &u, nil
}

func (s *userService) GetByEmail(ctx context.Context, email string) (*repository.User, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, fmt.Errorf("%w: empty email", ErrUserNotFound)
	}
	var u repository.User
	err := s.cache.Load(ctx, cache.UserEmailKey(email), &u, func(ctx context.Context) (any, error) {
		return s.store.Users().GetByEmail(ctx, email)
	})
	if err != nil {
		return nil, mapStoreErr(err)
	}
	return &u, nil
}

// GetByIDs lee directo del store: el batch no se cachea.
func (s *userService) GetByIDs(ctx context.Context, ids []int64) ([]repository.User, error) {
	if len(ids) == 0 {
		return []repository.User{}, nil
	}
	out, err := s.store.Users().GetByIDs(ctx, ids)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	return out, nil
}

func (s *userService) List(ctx context.Context, page, size int) ([]repository.User, int64, error) {
	total, err := s.store.Users().Count(ctx)
	if err != nil {
		return nil, 0, err
	}
	list, err := s.store.Users().List(ctx, repository.PageFilter{Page: page, Size: size})
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// Update aplica los campos simples y, si llegan tarjetas, reconcilia el set
// persistido contra la lista entrante. Todo se guarda en una transacción.
func (s *userService) Update(ctx context.Context, id int64, in UpdateInput) (*repository.User, error) {
	log := s.log(ctx, "Update").With(logger.UserID(id))

	var verrs validation.Errors
	validation.Profile(in.Name, in.Surname, in.BirthDate, s.now(), &verrs)
	if in.Cards != nil {
		seen := make(map[int64]int, len(*in.Cards))
		for i, c := range *in.Cards {
			prefix := fmt.Sprintf("cards[%d].", i)
			validation.Card(prefix, c.Number, c.Holder, c.ExpirationDate, &verrs)
			if c.ID == nil {
				continue
			}
			if j, dup := seen[*c.ID]; dup {
				verrs.Add(prefix+"id", fmt.Sprintf("duplicates cards[%d].id", j))
				continue
			}
			seen[*c.ID] = i
		}
	}
	if len(verrs) > 0 {
		return nil, invalid(verrs)
	}

	current, err := s.store.Users().GetByID(ctx, id)
	if err != nil {
		return nil, mapStoreErr(err)
	}

	up := repository.ProfileUpdate{
		UserID:    current.ID,
		Name:      strings.TrimSpace(in.Name),
		Surname:   strings.TrimSpace(in.Surname),
		BirthDate: in.BirthDate,
	}
	if in.Cards != nil {
		incoming := make([]CardInput, len(*in.Cards))
		for i, c := range *in.Cards {
			c.Holder = strings.TrimSpace(c.Holder)
			incoming[i] = c
		}
		rec := profile.ReconcileCards(current.Cards, incoming, *current)
		up.ReplaceCards = true
		up.Cards = rec.Updated
		up.DeleteCardIDs = rec.DeleteIDs()
		log.Debug("cards reconciled",
			logger.Int("kept", len(rec.KeptIDs())),
			logger.Int("deleted", len(rec.ToDelete)),
			logger.Int("final", len(rec.Updated)),
		)
	}

	saved, err := s.store.Users().SaveProfile(ctx, up)
	if err != nil {
		return nil, mapStoreErr(err)
	}

	s.cache.Invalidate(ctx, staleKeys(current, saved)...)

	log.Info("user updated", logger.Count(len(saved.Cards)))
	return saved, nil
}

func (s *userService) Delete(ctx context.Context, id int64) error {
	log := s.log(ctx, "Delete").With(logger.UserID(id))

	current, err := s.store.Users().GetByID(ctx, id)
	if err != nil {
		return mapStoreErr(err)
	}
	if err := s.store.Users().Delete(ctx, id); err != nil {
		return mapStoreErr(err)
	}

	s.cache.Invalidate(ctx, staleKeys(current, nil)...)

	log.Info("user deleted", logger.Count(len(current.Cards)))
	return nil
}

// staleKeys junta las keys que una mutación del usuario puede dejar obsoletas.
func staleKeys(users ...*repository.User) []string {
	seen := map[string]struct{}{}
	var keys []string
	add := func(k string) {
		if _, ok := seen[k]; !ok {
			seen[k] = struct{}{}
			keys = append(keys, k)
		}
	}
	for _, u := range users {
		if u == nil {
			continue
		}
		add(cache.UserKey(u.ID))
		add(cache.UserEmailKey(u.Email))
		add(cache.UserCardsKey(u.ID))
		for _, c := range u.Cards {
			add(cache.CardKey(c.ID))
		}
	}
	return keys
}

func claimString(claims map[string]any, key string) string {
	if v, ok := claims[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

func firstNonBlank(vals ...string) string {
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
