package users

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/usercards/internal/cache"
	"github.com/dropDatabas3/usercards/internal/domain/repository"
	"github.com/dropDatabas3/usercards/internal/security/identity"
	"github.com/dropDatabas3/usercards/internal/store/memory"
	"github.com/dropDatabas3/usercards/internal/validation"
)

var (
	fixedNow = time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	birth    = time.Date(1990, 4, 12, 0, 0, 0, 0, time.UTC)
	exp      = time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
)

type fixture struct {
	svc     UserService
	store   *memory.Store
	cache   *cache.Memory
	results []string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{store: memory.New(), cache: cache.NewMemory("test:", time.Minute)}
	aside := cache.NewAside(f.cache, time.Minute, cache.WithObserver(func(r string) { f.results = append(f.results, r) }))
	f.svc = NewUserService(Deps{Store: f.store, Cache: aside, Now: func() time.Time { return fixedNow }})
	return f
}

func ptr[T any](v T) *T { return &v }

func card(number string) CardInput {
	return CardInput{Number: number, Holder: "ALICE", ExpirationDate: exp}
}

func (f *fixture) seedAlice(t *testing.T, cards ...CardInput) *repository.User {
	t.Helper()
	u, err := f.svc.Create(context.Background(), CreateInput{
		Name: "Alice", Surname: "Liddell", BirthDate: birth, Email: " Alice@Example.com ", Cards: cards,
	})
	require.NoError(t, err)
	return u
}

func TestCreate(t *testing.T) {
	f := newFixture(t)
	u := f.seedAlice(t, card("4111111111111111"))

	assert.Equal(t, "alice@example.com", u.Email)
	require.Len(t, u.Cards, 1)
	assert.Equal(t, u.ID, u.Cards[0].UserID)

	_, err := f.svc.Create(context.Background(), CreateInput{
		Name: "Other", Surname: "Alice", BirthDate: birth, Email: "ALICE@example.com",
	})
	assert.ErrorIs(t, err, ErrEmailDuplicate)
}

func TestCreate_Validation(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Create(context.Background(), CreateInput{
		Name:      " ",
		BirthDate: fixedNow.Add(48 * time.Hour),
		Email:     "not-an-email",
		Cards:     []CardInput{{Number: "1234"}},
	})
	require.ErrorIs(t, err, ErrInvalidInput)

	var verrs validation.Errors
	require.True(t, errors.As(err, &verrs))
	fields := map[string]bool{}
	for _, fe := range verrs {
		fields[fe.Field] = true
	}
	for _, want := range []string{"name", "surname", "birthDate", "email", "cards[0].number", "cards[0].holder", "cards[0].expirationDate"} {
		assert.True(t, fields[want], want)
	}
}

func TestGet_UsesCache(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.seedAlice(t)

	_, err := f.svc.Get(ctx, u.ID)
	require.NoError(t, err)
	got, err := f.svc.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Email, got.Email)
	assert.Equal(t, []string{cache.ResultMiss, cache.ResultHit}, f.results)

	_, err = f.svc.Get(ctx, 999)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestGetByEmail_CaseInsensitive(t *testing.T) {
	f := newFixture(t)
	u := f.seedAlice(t)

	got, err := f.svc.GetByEmail(context.Background(), "ALICE@EXAMPLE.COM")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = f.svc.GetByEmail(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestGetByIDsAndList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.seedAlice(t)
	b, err := f.svc.Create(ctx, CreateInput{Name: "Bob", Surname: "B", BirthDate: birth, Email: "bob@example.com"})
	require.NoError(t, err)

	got, err := f.svc.GetByIDs(ctx, []int64{b.ID, 404, a.ID})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, a.ID, got[0].ID)

	list, total, err := f.svc.List(ctx, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, list, 1)
	assert.Equal(t, a.ID, list[0].ID)
}

func TestUpdate_ReconcilesCards(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.seedAlice(t, card("1111111111111111"), card("2222222222222222"))
	keep, drop := u.Cards[0], u.Cards[1]

	// calentar cache
	_, err := f.svc.Get(ctx, u.ID)
	require.NoError(t, err)

	updated, err := f.svc.Update(ctx, u.ID, UpdateInput{
		Name: "Alicia", Surname: "Liddell", BirthDate: birth,
		Cards: &[]CardInput{
			{ID: ptr(keep.ID), Number: "9999999999999999", Holder: "A. LIDDELL", ExpirationDate: exp},
			card("3333333333333333"),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Alicia", updated.Name)
	require.Len(t, updated.Cards, 2)

	byNumber := map[string]repository.Card{}
	for _, c := range updated.Cards {
		assert.Equal(t, u.ID, c.UserID)
		byNumber[c.Number] = c
	}
	assert.Equal(t, keep.ID, byNumber["9999999999999999"].ID)
	assert.NotZero(t, byNumber["3333333333333333"].ID)

	_, err = f.store.Cards().GetByID(ctx, drop.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	// la lectura siguiente no sirve el perfil viejo
	got, err := f.svc.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alicia", got.Name)
}

func TestUpdate_NilCardsKeepsCards(t *testing.T) {
	f := newFixture(t)
	u := f.seedAlice(t, card("1111111111111111"))

	updated, err := f.svc.Update(context.Background(), u.ID, UpdateInput{Name: "A", Surname: "L", BirthDate: birth})
	require.NoError(t, err)
	require.Len(t, updated.Cards, 1)
	assert.Equal(t, u.Cards[0].ID, updated.Cards[0].ID)
}

func TestUpdate_EmptyCardsWipes(t *testing.T) {
	f := newFixture(t)
	u := f.seedAlice(t, card("1111111111111111"), card("2222222222222222"))

	updated, err := f.svc.Update(context.Background(), u.ID, UpdateInput{
		Name: "A", Surname: "L", BirthDate: birth, Cards: &[]CardInput{},
	})
	require.NoError(t, err)
	assert.Empty(t, updated.Cards)

	n, err := f.store.Cards().Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestUpdate_ForeignCardIDIsInserted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.seedAlice(t)
	bob, err := f.svc.Create(ctx, CreateInput{
		Name: "Bob", Surname: "B", BirthDate: birth, Email: "bob@example.com",
		Cards: []CardInput{card("5555555555555555")},
	})
	require.NoError(t, err)
	bobCard := bob.Cards[0]

	updated, err := f.svc.Update(ctx, alice.ID, UpdateInput{
		Name: "A", Surname: "L", BirthDate: birth,
		Cards: &[]CardInput{{ID: ptr(bobCard.ID), Number: "6666666666666666", Holder: "X", ExpirationDate: exp}},
	})
	require.NoError(t, err)
	require.Len(t, updated.Cards, 1)
	assert.NotEqual(t, bobCard.ID, updated.Cards[0].ID)

	// la tarjeta de Bob no se tocó
	still, err := f.store.Cards().GetByID(ctx, bobCard.ID)
	require.NoError(t, err)
	assert.Equal(t, "5555555555555555", still.Number)
	assert.Equal(t, bob.ID, still.UserID)
}

func TestUpdate_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.seedAlice(t, card("1111111111111111"))
	id := u.Cards[0].ID

	_, err := f.svc.Update(ctx, 999, UpdateInput{Name: "A", Surname: "L", BirthDate: birth})
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = f.svc.Update(ctx, u.ID, UpdateInput{
		Name: "A", Surname: "L", BirthDate: birth,
		Cards: &[]CardInput{
			{ID: ptr(id), Number: "1111111111111111", Holder: "A", ExpirationDate: exp},
			{ID: ptr(id), Number: "2222222222222222", Holder: "A", ExpirationDate: exp},
		},
	})
	require.ErrorIs(t, err, ErrInvalidInput)
	var verrs validation.Errors
	require.True(t, errors.As(err, &verrs))
	assert.Equal(t, "cards[1].id", verrs[0].Field)
}

func TestDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.seedAlice(t, card("1111111111111111"))

	_, err := f.svc.GetByEmail(ctx, u.Email)
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, u.ID))
	assert.ErrorIs(t, f.svc.Delete(ctx, u.ID), ErrUserNotFound)

	_, err = f.svc.GetByEmail(ctx, u.Email)
	assert.ErrorIs(t, err, ErrUserNotFound)

	n, err := f.store.Cards().Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSync(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ident := identity.Identity{Name: "carol@example.com"}
	claims := map[string]any{
		"email":       "Carol@Example.com",
		"given_name":  "Carol",
		"family_name": "Danvers",
		"birthdate":   "1985-03-01",
	}

	u, created, err := f.svc.Sync(ctx, ident, claims, SyncInput{})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "carol@example.com", u.Email)
	assert.Equal(t, "Carol", u.Name)

	again, created, err := f.svc.Sync(ctx, ident, claims, SyncInput{Name: "Ignored"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, u.ID, again.ID)
	assert.Equal(t, "Carol", again.Name)
}

func TestSync_MissingProfileData(t *testing.T) {
	f := newFixture(t)
	ident := identity.Identity{Name: "dave@example.com"}

	_, _, err := f.svc.Sync(context.Background(), ident, map[string]any{"sub": "dave@example.com"}, SyncInput{})
	require.ErrorIs(t, err, ErrInvalidInput)

	u, created, err := f.svc.Sync(context.Background(), ident, nil, SyncInput{Name: "Dave", Surname: "D", BirthDate: birth})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "dave@example.com", u.Email)

	_, _, err = f.svc.Sync(context.Background(), identity.Identity{Name: "not-an-email"}, nil, SyncInput{})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

// racingUsers ejecuta before justo antes de SaveProfile, simulando otra request
// que modifica las tarjetas entre la lectura y el guardado.
type racingUsers struct {
	repository.UserRepository
	before func()
}

func (r racingUsers) SaveProfile(ctx context.Context, up repository.ProfileUpdate) (*repository.User, error) {
	r.before()
	return r.UserRepository.SaveProfile(ctx, up)
}

type racingStore struct {
	repository.Store
	users repository.UserRepository
}

func (r racingStore) Users() repository.UserRepository { return r.users }

func TestUpdate_CardDeletedConcurrentlyIsConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.seedAlice(t, card("1111111111111111"))
	cardID := u.Cards[0].ID

	store := racingStore{Store: f.store, users: racingUsers{
		UserRepository: f.store.Users(),
		before:         func() { require.NoError(t, f.store.Cards().Delete(ctx, cardID)) },
	}}
	svc := NewUserService(Deps{Store: store, Now: func() time.Time { return fixedNow }})

	_, err := svc.Update(ctx, u.ID, UpdateInput{
		Name: "A", Surname: "L", BirthDate: birth,
		Cards: &[]CardInput{{ID: ptr(cardID), Number: "9999999999999999", Holder: "A", ExpirationDate: exp}},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCardsChanged)
	assert.NotErrorIs(t, err, ErrUserNotFound)

	// el usuario existe y no cambió
	got, err := f.store.Users().GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.Name)
}
