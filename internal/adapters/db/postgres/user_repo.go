package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgconn"
	"gorm.io/gorm"

	customErrors "github.com/osavchuk/contacts-api/internal/domain/contacts/errors"
	"github.com/osavchuk/contacts-api/internal/domain/contacts/model"
)

type UserRepo struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) *UserRepo {
	return &UserRepo{db: db}
}

func (r *UserRepo) CreateUser(ctx context.Context, user model.User) (uint, error) {
	res := r.db.WithContext(ctx).Create(&user)
	if err := res.Error; err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, customErrors.ErrAlreadyExists
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return 0, customErrors.ErrAlreadyExists
		}
		return 0, customErrors.WrapInternal(err, "CreateUser")
	}
	return user.ID, nil
}

func (r *UserRepo) GetUserByID(ctx context.Context, id uint) (model.User, error) {
	var u model.User
	res := r.db.WithContext(ctx).Where("id = ?", id).First(&u)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return model.User{}, customErrors.ErrNotFound
	}
	if err := res.Error; err != nil {
		return model.User{}, customErrors.WrapInternal(err, "GetUserByID")
	}
	return u, nil
}

func (r *UserRepo) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	var u model.User
	res := r.db.WithContext(ctx).Where("email = ?", email).First(&u)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return model.User{}, customErrors.ErrNotFound
	}
	if err := res.Error; err != nil {
		return model.User{}, customErrors.WrapInternal(err, "GetUserByEmail")
	}
	return u, nil
}

func (r *UserRepo) setColumn(ctx context.Context, id uint, column string, value interface{}) error {
	res := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Update(column, value)
	if err := res.Error; err != nil {
		return customErrors.WrapInternal(err, "update "+column)
	}
	if res.RowsAffected == 0 {
		return customErrors.ErrNotFound
	}
	return nil
}

func (r *UserRepo) SetPasswordHash(ctx context.Context, id uint, hash string) error {
	return r.setColumn(ctx, id, "password_hash", hash)
}

func (r *UserRepo) SetVerified(ctx context.Context, id uint, verified bool) error {
	return r.setColumn(ctx, id, "is_verified", verified)
}

func (r *UserRepo) SetActive(ctx context.Context, id uint, active bool) error {
	return r.setColumn(ctx, id, "is_active", active)
}

func (r *UserRepo) SetRole(ctx context.Context, id uint, role model.Role) error {
	return r.setColumn(ctx, id, "role", role)
}

func (r *UserRepo) SetAvatarURL(ctx context.Context, id uint, url string) error {
	return r.setColumn(ctx, id, "avatar_url", url)
}
