package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	customErrors "github.com/osavchuk/contacts-api/internal/domain/contacts/errors"
	"github.com/osavchuk/contacts-api/internal/infra/config"
)

// Scope is the declared purpose of a token. A token minted for one scope is
// never accepted by an operation expecting another.
type Scope string

const (
	ScopeAccess            Scope = "access"
	ScopeRefresh           Scope = "refresh"
	ScopeEmailVerification Scope = "email_verification"
	ScopePasswordReset     Scope = "password_reset"
)

type Claims struct {
	jwt.RegisteredClaims
	Scope Scope `json:"scope"`
}

// Service mints and verifies scoped bearer tokens. It is stateless: the only
// configuration is the signing secret and the per-scope TTLs, which are fixed
// at construction and not overridable per call.
type Service struct {
	secret []byte
	ttls   map[Scope]time.Duration
}

func New(cfg *config.Config) *Service {
	return &Service{
		secret: []byte(cfg.SecretKey),
		ttls: map[Scope]time.Duration{
			ScopeAccess:            cfg.AccessTokenTTL,
			ScopeRefresh:           cfg.RefreshTokenTTL,
			ScopeEmailVerification: cfg.EmailTokenTTL,
			ScopePasswordReset:     cfg.ResetTokenTTL,
		},
	}
}

// Issue signs a token for subject with the TTL configured for scope. Refresh
// tokens additionally carry a fresh jti so they can be individually revoked
// later.
func (s *Service) Issue(subject string, scope Scope) (string, error) {
	ttl, ok := s.ttls[scope]
	if !ok {
		return "", customErrors.NewInvalidArgument("unknown token scope")
	}
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Scope: scope,
	}
	if scope == ScopeRefresh {
		claims.ID = uuid.NewString()
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", customErrors.WrapInternal(err, "sign token")
	}
	return signed, nil
}

// TTL reports the configured lifetime for a scope.
func (s *Service) TTL(scope Scope) time.Duration {
	return s.ttls[scope]
}

// Verify validates the signature and expiry of raw and checks that its scope
// matches want. Expiry is reported as ErrExpiredToken, a scope mismatch on an
// otherwise valid token as ErrWrongScope, everything else as ErrInvalidToken.
func (s *Service) Verify(raw string, want Scope) (Claims, error) {
	parsed, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, customErrors.ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, customErrors.ErrExpiredToken
		}
		return Claims{}, customErrors.ErrInvalidToken
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return Claims{}, customErrors.ErrInvalidToken
	}
	if claims.Scope != want {
		return Claims{}, customErrors.ErrWrongScope
	}
	return *claims, nil
}
