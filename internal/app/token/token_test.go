package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	customErrors "github.com/osavchuk/contacts-api/internal/domain/contacts/errors"
	"github.com/osavchuk/contacts-api/internal/infra/config"
)

func testService() *Service {
	return New(&config.Config{
		SecretKey:       "test-secret",
		AccessTokenTTL:  time.Minute,
		RefreshTokenTTL: time.Hour,
		EmailTokenTTL:   24 * time.Hour,
		ResetTokenTTL:   time.Hour,
	})
}

func TestIssueVerify_RoundTrip(t *testing.T) {
	svc := testService()
	raw, err := svc.Issue("42", ScopeAccess)
	if err != nil {
		t.Fatal(err)
	}
	claims, err := svc.Verify(raw, ScopeAccess)
	if err != nil {
		t.Fatal(err)
	}
	if claims.Subject != "42" {
		t.Fatalf("want subject 42, got %s", claims.Subject)
	}
	if claims.Scope != ScopeAccess {
		t.Fatalf("want scope access, got %s", claims.Scope)
	}
	if claims.ID != "" {
		t.Fatal("access token must not carry a jti")
	}
}

func TestIssue_RefreshCarriesJTI(t *testing.T) {
	svc := testService()
	a, _ := svc.Issue("7", ScopeRefresh)
	b, _ := svc.Issue("7", ScopeRefresh)
	ca, err := svc.Verify(a, ScopeRefresh)
	if err != nil {
		t.Fatal(err)
	}
	cb, _ := svc.Verify(b, ScopeRefresh)
	if ca.ID == "" || ca.ID == cb.ID {
		t.Fatalf("refresh jti must be unique and non-empty: %q vs %q", ca.ID, cb.ID)
	}
}

func TestVerify_WrongScope(t *testing.T) {
	svc := testService()
	scopes := []Scope{ScopeAccess, ScopeRefresh, ScopeEmailVerification, ScopePasswordReset}
	for _, issued := range scopes {
		raw, err := svc.Issue("a@b.com", issued)
		if err != nil {
			t.Fatal(err)
		}
		for _, want := range scopes {
			_, err := svc.Verify(raw, want)
			switch {
			case issued == want && err != nil:
				t.Fatalf("scope %s: unexpected error %v", issued, err)
			case issued != want && err != customErrors.ErrWrongScope:
				t.Fatalf("issued %s verified as %s: want ErrWrongScope, got %v", issued, want, err)
			}
		}
	}
}

func TestVerify_Expired(t *testing.T) {
	svc := New(&config.Config{SecretKey: "test-secret", AccessTokenTTL: -time.Second})
	raw, err := svc.Issue("42", ScopeAccess)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Verify(raw, ScopeAccess); err != customErrors.ErrExpiredToken {
		t.Fatalf("want ErrExpiredToken, got %v", err)
	}
}

func TestVerify_Malformed(t *testing.T) {
	svc := testService()
	if _, err := svc.Verify("not-a-token", ScopeAccess); err != customErrors.ErrInvalidToken {
		t.Fatalf("want ErrInvalidToken, got %v", err)
	}
}

func TestVerify_WrongKey(t *testing.T) {
	svc := testService()
	other := New(&config.Config{SecretKey: "other-secret", AccessTokenTTL: time.Minute})
	raw, _ := other.Issue("42", ScopeAccess)
	if _, err := svc.Verify(raw, ScopeAccess); err != customErrors.ErrInvalidToken {
		t.Fatalf("want ErrInvalidToken, got %v", err)
	}
}

func TestVerify_WrongAlg(t *testing.T) {
	svc := testService()
	raw, _ := jwt.NewWithClaims(jwt.SigningMethodHS384, jwt.MapClaims{"sub": "1", "scope": "access"}).
		SignedString([]byte("test-secret"))
	if _, err := svc.Verify(raw, ScopeAccess); err != customErrors.ErrInvalidToken {
		t.Fatalf("want ErrInvalidToken, got %v", err)
	}
}
