package authz

import (
	"context"
	"errors"
	"strconv"

	"go.uber.org/zap"

	"github.com/osavchuk/contacts-api/internal/app/token"
	customErrors "github.com/osavchuk/contacts-api/internal/domain/contacts/errors"
	"github.com/osavchuk/contacts-api/internal/domain/contacts/model"
	"github.com/osavchuk/contacts-api/internal/domain/contacts/repo"
)

// Verifier is the part of the token service the pipeline needs.
type Verifier interface {
	Verify(raw string, want token.Scope) (token.Claims, error)
}

// Pipeline resolves a bearer token to an active user. It is the single
// authorization path shared by every protected route: verify the access
// token, resolve the subject through the cache and the primary store, then
// apply the active gate. Verified/role gates compose on top per route.
type Pipeline struct {
	tokens Verifier
	cache  repo.PrincipalCache
	users  repo.UserRepo
	log    *zap.Logger
}

func New(tokens Verifier, cache repo.PrincipalCache, users repo.UserRepo, log *zap.Logger) *Pipeline {
	return &Pipeline{tokens: tokens, cache: cache, users: users, log: log}
}

// Resolve runs the token → principal → active-gate chain. Every failure is
// terminal for the request; the transport collapses the whole unauthenticated
// family into one 401 so the response does not reveal which step tripped.
//
// A cache hit does not skip the primary-store read: gating fields are always
// checked against fresh data, the hit only refreshes nothing and the miss
// path repopulates the snapshot for cache consumers.
func (p *Pipeline) Resolve(ctx context.Context, bearer string) (model.User, error) {
	claims, err := p.tokens.Verify(bearer, token.ScopeAccess)
	if err != nil {
		return model.User{}, err
	}

	id64, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil {
		return model.User{}, customErrors.ErrInvalidToken
	}
	userID := uint(id64)

	_, hit := p.cache.Get(ctx, userID)

	user, err := p.users.GetUserByID(ctx, userID)
	switch {
	case errors.Is(err, customErrors.ErrNotFound):
		return model.User{}, customErrors.ErrPrincipalNotFound
	case err != nil:
		return model.User{}, customErrors.WrapInternal(err, "resolve principal")
	}

	if !hit {
		p.cache.Put(ctx, model.PrincipalFromUser(user))
	}

	if !user.IsActive {
		return model.User{}, customErrors.ErrInactiveAccount
	}
	return user, nil
}

// RequireVerified is a pure predicate over an already-resolved user.
func RequireVerified(u model.User) error {
	if !u.IsVerified {
		return customErrors.ErrNotVerified
	}
	return nil
}

// RequireRole is a pure predicate over an already-resolved user. Gates
// compose: a route may demand both verification and a role.
func RequireRole(u model.User, role model.Role) error {
	if u.Role != role {
		return customErrors.ErrInsufficientRole
	}
	return nil
}
