package authz_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/osavchuk/contacts-api/internal/app/authz"
	"github.com/osavchuk/contacts-api/internal/app/token"
	customErrors "github.com/osavchuk/contacts-api/internal/domain/contacts/errors"
	"github.com/osavchuk/contacts-api/internal/domain/contacts/model"
	"github.com/osavchuk/contacts-api/internal/infra/config"
)

/* ──────────────────────────────── stubs ──────────────────────────────── */

type userRepoStub struct {
	users   map[uint]model.User
	byIDHit int
}

func (u *userRepoStub) CreateUser(_ context.Context, m model.User) (uint, error) {
	u.users[m.ID] = m
	return m.ID, nil
}

func (u *userRepoStub) GetUserByID(_ context.Context, id uint) (model.User, error) {
	u.byIDHit++
	v, ok := u.users[id]
	if !ok {
		return model.User{}, customErrors.ErrNotFound
	}
	return v, nil
}

func (u *userRepoStub) GetUserByEmail(_ context.Context, email string) (model.User, error) {
	for _, v := range u.users {
		if v.Email == email {
			return v, nil
		}
	}
	return model.User{}, customErrors.ErrNotFound
}

func (u *userRepoStub) SetPasswordHash(_ context.Context, _ uint, _ string) error { return nil }
func (u *userRepoStub) SetVerified(_ context.Context, _ uint, _ bool) error       { return nil }
func (u *userRepoStub) SetActive(_ context.Context, _ uint, _ bool) error         { return nil }
func (u *userRepoStub) SetRole(_ context.Context, _ uint, _ model.Role) error     { return nil }
func (u *userRepoStub) SetAvatarURL(_ context.Context, _ uint, _ string) error    { return nil }

type cacheStub struct {
	entries map[uint]model.Principal
	puts    int
}

func (c *cacheStub) Get(_ context.Context, id uint) (model.Principal, bool) {
	p, ok := c.entries[id]
	return p, ok
}

func (c *cacheStub) Put(_ context.Context, p model.Principal) {
	c.puts++
	c.entries[p.ID] = p
}

func (c *cacheStub) Invalidate(_ context.Context, id uint) { delete(c.entries, id) }

/* ───────────────────────────── helpers ───────────────────────────── */

func newPipeline(users ...model.User) (*authz.Pipeline, *token.Service, *userRepoStub, *cacheStub) {
	ur := &userRepoStub{users: make(map[uint]model.User)}
	for _, u := range users {
		ur.users[u.ID] = u
	}
	cache := &cacheStub{entries: make(map[uint]model.Principal)}
	tokens := token.New(&config.Config{
		SecretKey:      "test-secret",
		AccessTokenTTL: time.Minute,
		EmailTokenTTL:  time.Hour,
	})
	return authz.New(tokens, cache, ur, zap.NewNop()), tokens, ur, cache
}

func activeUser() model.User {
	return model.User{ID: 42, Email: "a@b.com", IsActive: true, IsVerified: true, Role: model.RoleUser}
}

/* ──────────────────────────────── tests ──────────────────────────────── */

func TestResolve_Success(t *testing.T) {
	p, tokens, _, cache := newPipeline(activeUser())
	bearer, err := tokens.Issue("42", token.ScopeAccess)
	require.NoError(t, err)

	u, err := p.Resolve(context.Background(), bearer)
	require.NoError(t, err)
	require.Equal(t, uint(42), u.ID)
	require.Equal(t, 1, cache.puts, "miss must populate the cache")
}

func TestResolve_WrongScopeToken(t *testing.T) {
	p, tokens, _, _ := newPipeline(activeUser())
	bearer, err := tokens.Issue("42", token.ScopeEmailVerification)
	require.NoError(t, err)

	_, err = p.Resolve(context.Background(), bearer)
	require.ErrorIs(t, err, customErrors.ErrWrongScope)
	require.True(t, customErrors.IsUnauthenticated(err))
}

func TestResolve_GarbageToken(t *testing.T) {
	p, _, _, _ := newPipeline(activeUser())
	_, err := p.Resolve(context.Background(), "garbage")
	require.ErrorIs(t, err, customErrors.ErrInvalidToken)
}

func TestResolve_NonNumericSubject(t *testing.T) {
	p, tokens, _, _ := newPipeline(activeUser())
	bearer, _ := tokens.Issue("a@b.com", token.ScopeAccess)
	_, err := p.Resolve(context.Background(), bearer)
	require.ErrorIs(t, err, customErrors.ErrInvalidToken)
}

func TestResolve_UnknownSubject(t *testing.T) {
	p, tokens, _, _ := newPipeline(activeUser())
	bearer, _ := tokens.Issue("99", token.ScopeAccess)
	_, err := p.Resolve(context.Background(), bearer)
	require.ErrorIs(t, err, customErrors.ErrPrincipalNotFound)
	require.True(t, customErrors.IsUnauthenticated(err))
}

func TestResolve_InactiveUser(t *testing.T) {
	u := activeUser()
	u.IsActive = false
	p, tokens, _, cache := newPipeline(u)

	// regardless of cache state: warm the cache with a stale active snapshot
	cache.entries[42] = model.Principal{ID: 42, IsActive: true}

	bearer, _ := tokens.Issue("42", token.ScopeAccess)
	_, err := p.Resolve(context.Background(), bearer)
	require.ErrorIs(t, err, customErrors.ErrInactiveAccount)
}

func TestResolve_CacheHitStillChecksStore(t *testing.T) {
	p, tokens, ur, cache := newPipeline(activeUser())
	cache.entries[42] = model.PrincipalFromUser(activeUser())

	bearer, _ := tokens.Issue("42", token.ScopeAccess)
	_, err := p.Resolve(context.Background(), bearer)
	require.NoError(t, err)
	require.Equal(t, 1, ur.byIDHit, "gating fields are validated against the primary store")
	require.Equal(t, 0, cache.puts, "hit must not rewrite the entry")
}

func TestResolve_DeletedUserWithWarmCache(t *testing.T) {
	p, tokens, _, cache := newPipeline() // no users in the store
	cache.entries[42] = model.Principal{ID: 42, IsActive: true}

	bearer, _ := tokens.Issue("42", token.ScopeAccess)
	_, err := p.Resolve(context.Background(), bearer)
	require.ErrorIs(t, err, customErrors.ErrPrincipalNotFound)
}

func TestGates(t *testing.T) {
	u := activeUser()
	require.NoError(t, authz.RequireVerified(u))
	require.NoError(t, authz.RequireRole(u, model.RoleUser))

	u.IsVerified = false
	require.ErrorIs(t, authz.RequireVerified(u), customErrors.ErrNotVerified)

	err := authz.RequireRole(u, model.RoleAdmin)
	require.ErrorIs(t, err, customErrors.ErrInsufficientRole)
	require.True(t, customErrors.IsForbidden(err))

	// gates compose without additional I/O
	admin := activeUser()
	admin.Role = model.RoleAdmin
	require.NoError(t, authz.RequireVerified(admin))
	require.NoError(t, authz.RequireRole(admin, model.RoleAdmin))
}
