package repo

import (
	"context"

	"github.com/osavchuk/contacts-api/internal/domain/contacts/model"
)

type UserRepo interface {
	CreateUser(ctx context.Context, user model.User) (uint, error)
	GetUserByID(ctx context.Context, id uint) (model.User, error)
	GetUserByEmail(ctx context.Context, email string) (model.User, error)
	SetPasswordHash(ctx context.Context, id uint, hash string) error
	SetVerified(ctx context.Context, id uint, verified bool) error
	SetActive(ctx context.Context, id uint, active bool) error
	SetRole(ctx context.Context, id uint, role model.Role) error
	SetAvatarURL(ctx context.Context, id uint, url string) error
}
