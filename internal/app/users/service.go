package users

import (
	"context"
	"errors"
	"strconv"

	"github.com/alexedwards/argon2id"
	"github.com/go-playground/validator/v10"

	"github.com/osavchuk/contacts-api/internal/adapters/transport/http/dto"
	"github.com/osavchuk/contacts-api/internal/app/token"
	customErrors "github.com/osavchuk/contacts-api/internal/domain/contacts/errors"
	"github.com/osavchuk/contacts-api/internal/domain/contacts/model"
	"github.com/osavchuk/contacts-api/internal/domain/contacts/repo"
)

const defaultAvatarKey = "default_avatar_url"

var argonParams = &argon2id.Params{
	Memory:      64 * 1024, // 64 MiB
	Iterations:  2,
	Parallelism: 4,
	SaltLength:  16,
	KeyLength:   32,
}

// Uploader pushes avatar bytes to the image host and returns the public URL.
type Uploader interface {
	Upload(ctx context.Context, data []byte, publicID string) (string, error)
}

type Service interface {
	Register(ctx context.Context, in dto.RegisterDTO) (model.User, string, error)
	Login(ctx context.Context, in dto.LoginDTO) (model.TokenPair, error)
	Refresh(ctx context.Context, in dto.RefreshDTO) (model.TokenPair, error)
	VerifyEmail(ctx context.Context, rawToken string) error
	ForgotPassword(ctx context.Context, in dto.ForgotPasswordDTO) (string, error)
	ResetPassword(ctx context.Context, in dto.ResetPasswordDTO) error
	UpdateAvatar(ctx context.Context, userID uint, data []byte) (model.User, error)
	SetRole(ctx context.Context, userID uint, role model.Role) error
	SetActive(ctx context.Context, userID uint, active bool) error
	DefaultAvatar(ctx context.Context) (string, error)
	SetDefaultAvatar(ctx context.Context, url string) error
}

type userService struct {
	users    repo.UserRepo
	meta     repo.MetaRepo
	cache    repo.PrincipalCache
	tokens   *token.Service
	uploader Uploader
	v        *validator.Validate
	fallback string // configured default avatar, used when app_meta has none
}

func New(
	ur repo.UserRepo,
	mr repo.MetaRepo,
	cache repo.PrincipalCache,
	tokens *token.Service,
	uploader Uploader,
	v *validator.Validate,
	fallbackAvatar string,
) Service {
	return &userService{
		users: ur, meta: mr, cache: cache, tokens: tokens,
		uploader: uploader, v: v, fallback: fallbackAvatar,
	}
}

// Register creates the account and returns the email-verification token for
// out-of-band delivery; the caller decides how to send it.
func (s *userService) Register(ctx context.Context, in dto.RegisterDTO) (model.User, string, error) {
	if err := s.v.Struct(in); err != nil {
		return model.User{}, "", customErrors.NewInvalidArgument(err.Error())
	}

	hash, err := argon2id.CreateHash(in.Password, argonParams)
	if err != nil {
		return model.User{}, "", customErrors.WrapInternal(err, "Register")
	}

	user := model.User{
		Email:        in.Email,
		PasswordHash: hash,
		IsActive:     true,
		Role:         model.RoleUser,
	}
	id, err := s.users.CreateUser(ctx, user)
	if err != nil {
		if errors.Is(err, customErrors.ErrAlreadyExists) {
			return model.User{}, "", customErrors.ErrAlreadyExists
		}
		return model.User{}, "", customErrors.WrapInternal(err, "Register")
	}
	user.ID = id

	// email-verification tokens are addressed by email, not id
	verify, err := s.tokens.Issue(user.Email, token.ScopeEmailVerification)
	if err != nil {
		return model.User{}, "", customErrors.WrapInternal(err, "Register")
	}
	return user, verify, nil
}

func (s *userService) Login(ctx context.Context, in dto.LoginDTO) (model.TokenPair, error) {
	if err := s.v.Struct(in); err != nil {
		return model.TokenPair{}, customErrors.NewInvalidArgument(err.Error())
	}

	user, err := s.users.GetUserByEmail(ctx, in.Email)
	switch {
	case errors.Is(err, customErrors.ErrNotFound):
		return model.TokenPair{}, customErrors.ErrInvalidCredentials
	case err != nil:
		return model.TokenPair{}, customErrors.WrapInternal(err, "Login")
	}

	ok, err := argon2id.ComparePasswordAndHash(in.Password, user.PasswordHash)
	if err != nil {
		return model.TokenPair{}, customErrors.WrapInternal(err, "Login")
	}
	if !ok {
		return model.TokenPair{}, customErrors.ErrInvalidCredentials
	}

	return s.issuePair(user.ID)
}

func (s *userService) Refresh(ctx context.Context, in dto.RefreshDTO) (model.TokenPair, error) {
	if err := s.v.Struct(in); err != nil {
		return model.TokenPair{}, customErrors.NewInvalidArgument(err.Error())
	}

	claims, err := s.tokens.Verify(in.RefreshToken, token.ScopeRefresh)
	if err != nil {
		return model.TokenPair{}, err
	}
	id64, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil {
		return model.TokenPair{}, customErrors.ErrInvalidToken
	}
	return s.issuePair(uint(id64))
}

// VerifyEmail flips is_verified for the token's subject. Re-running it on an
// already verified account succeeds.
func (s *userService) VerifyEmail(ctx context.Context, rawToken string) error {
	claims, err := s.tokens.Verify(rawToken, token.ScopeEmailVerification)
	if err != nil {
		return err
	}

	user, err := s.users.GetUserByEmail(ctx, claims.Subject)
	switch {
	case errors.Is(err, customErrors.ErrNotFound):
		return customErrors.ErrNotFound
	case err != nil:
		return customErrors.WrapInternal(err, "VerifyEmail")
	}
	if user.IsVerified {
		return nil
	}

	if err := s.users.SetVerified(ctx, user.ID, true); err != nil {
		return customErrors.WrapInternal(err, "VerifyEmail")
	}
	s.cache.Invalidate(ctx, user.ID)
	return nil
}

// ForgotPassword returns the reset token, or ErrNotFound for an unknown email.
// The transport answers identically either way so accounts cannot be probed.
func (s *userService) ForgotPassword(ctx context.Context, in dto.ForgotPasswordDTO) (string, error) {
	if err := s.v.Struct(in); err != nil {
		return "", customErrors.NewInvalidArgument(err.Error())
	}

	if _, err := s.users.GetUserByEmail(ctx, in.Email); err != nil {
		if errors.Is(err, customErrors.ErrNotFound) {
			return "", customErrors.ErrNotFound
		}
		return "", customErrors.WrapInternal(err, "ForgotPassword")
	}
	return s.tokens.Issue(in.Email, token.ScopePasswordReset)
}

func (s *userService) ResetPassword(ctx context.Context, in dto.ResetPasswordDTO) error {
	if err := s.v.Struct(in); err != nil {
		return customErrors.NewInvalidArgument(err.Error())
	}

	claims, err := s.tokens.Verify(in.Token, token.ScopePasswordReset)
	if err != nil {
		return err
	}

	user, err := s.users.GetUserByEmail(ctx, claims.Subject)
	switch {
	case errors.Is(err, customErrors.ErrNotFound):
		return customErrors.ErrNotFound
	case err != nil:
		return customErrors.WrapInternal(err, "ResetPassword")
	}

	hash, err := argon2id.CreateHash(in.NewPassword, argonParams)
	if err != nil {
		return customErrors.WrapInternal(err, "ResetPassword")
	}
	if err := s.users.SetPasswordHash(ctx, user.ID, hash); err != nil {
		return customErrors.WrapInternal(err, "ResetPassword")
	}
	s.cache.Invalidate(ctx, user.ID)
	return nil
}

func (s *userService) UpdateAvatar(ctx context.Context, userID uint, data []byte) (model.User, error) {
	if len(data) == 0 {
		return model.User{}, customErrors.NewInvalidArgument("empty file")
	}

	url, err := s.uploader.Upload(ctx, data, strconv.FormatUint(uint64(userID), 10))
	if err != nil {
		return model.User{}, customErrors.WrapInternal(err, "UpdateAvatar upload")
	}
	if err := s.users.SetAvatarURL(ctx, userID, url); err != nil {
		return model.User{}, customErrors.WrapInternal(err, "UpdateAvatar")
	}
	s.cache.Invalidate(ctx, userID)

	return s.users.GetUserByID(ctx, userID)
}

func (s *userService) SetRole(ctx context.Context, userID uint, role model.Role) error {
	if role != model.RoleUser && role != model.RoleAdmin {
		return customErrors.NewInvalidArgument("unknown role")
	}
	if err := s.users.SetRole(ctx, userID, role); err != nil {
		if errors.Is(err, customErrors.ErrNotFound) {
			return customErrors.ErrNotFound
		}
		return customErrors.WrapInternal(err, "SetRole")
	}
	s.cache.Invalidate(ctx, userID)
	return nil
}

func (s *userService) SetActive(ctx context.Context, userID uint, active bool) error {
	if err := s.users.SetActive(ctx, userID, active); err != nil {
		if errors.Is(err, customErrors.ErrNotFound) {
			return customErrors.ErrNotFound
		}
		return customErrors.WrapInternal(err, "SetActive")
	}
	s.cache.Invalidate(ctx, userID)
	return nil
}

func (s *userService) DefaultAvatar(ctx context.Context) (string, error) {
	url, err := s.meta.Get(ctx, defaultAvatarKey)
	switch {
	case errors.Is(err, customErrors.ErrNotFound):
		return s.fallback, nil
	case err != nil:
		return "", customErrors.WrapInternal(err, "DefaultAvatar")
	}
	return url, nil
}

func (s *userService) SetDefaultAvatar(ctx context.Context, url string) error {
	if err := s.meta.Set(ctx, defaultAvatarKey, url); err != nil {
		return customErrors.WrapInternal(err, "SetDefaultAvatar")
	}
	return nil
}

func (s *userService) issuePair(userID uint) (model.TokenPair, error) {
	sub := strconv.FormatUint(uint64(userID), 10)

	at, err := s.tokens.Issue(sub, token.ScopeAccess)
	if err != nil {
		return model.TokenPair{}, customErrors.WrapInternal(err, "issue access token")
	}
	rt, err := s.tokens.Issue(sub, token.ScopeRefresh)
	if err != nil {
		return model.TokenPair{}, customErrors.WrapInternal(err, "issue refresh token")
	}
	return model.TokenPair{
		AccessToken:  at,
		RefreshToken: rt,
		AccessTTL:    s.tokens.TTL(token.ScopeAccess),
		RefreshTTL:   s.tokens.TTL(token.ScopeRefresh),
		UserID:       userID,
	}, nil
}
