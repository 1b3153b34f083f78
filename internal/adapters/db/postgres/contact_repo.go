package postgres

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	customErrors "github.com/osavchuk/contacts-api/internal/domain/contacts/errors"
	"github.com/osavchuk/contacts-api/internal/domain/contacts/model"
	"github.com/osavchuk/contacts-api/internal/domain/contacts/repo"
)

type ContactRepo struct {
	db *gorm.DB
}

func NewContactRepo(db *gorm.DB) *ContactRepo {
	return &ContactRepo{db: db}
}

func (r *ContactRepo) Create(ctx context.Context, contact model.Contact) (model.Contact, error) {
	res := r.db.WithContext(ctx).Create(&contact)
	if err := res.Error; err != nil {
		return model.Contact{}, customErrors.WrapInternal(err, "CreateContact")
	}
	return contact, nil
}

func (r *ContactRepo) Get(ctx context.Context, ownerID, contactID uint) (model.Contact, error) {
	var c model.Contact
	res := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", contactID, ownerID).
		First(&c)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return model.Contact{}, customErrors.ErrNotFound
	}
	if err := res.Error; err != nil {
		return model.Contact{}, customErrors.WrapInternal(err, "GetContact")
	}
	return c, nil
}

func (r *ContactRepo) List(ctx context.Context, ownerID uint, skip, limit int, filter repo.ContactFilter) ([]model.Contact, error) {
	q := r.db.WithContext(ctx).Where("owner_id = ?", ownerID)

	// LOWER(...) LIKE keeps the search case-insensitive on both postgres and
	// the sqlite test database.
	var conds *gorm.DB
	add := func(column, value string) {
		c := r.db.Where("LOWER("+column+") LIKE ?", "%"+strings.ToLower(value)+"%")
		if conds == nil {
			conds = c
		} else {
			conds = conds.Or(c)
		}
	}
	if filter.FirstName != "" {
		add("first_name", filter.FirstName)
	}
	if filter.LastName != "" {
		add("last_name", filter.LastName)
	}
	if filter.Email != "" {
		add("email", filter.Email)
	}
	if conds != nil {
		q = q.Where(conds)
	}

	var out []model.Contact
	res := q.Order("id").Offset(skip).Limit(limit).Find(&out)
	if err := res.Error; err != nil {
		return nil, customErrors.WrapInternal(err, "ListContacts")
	}
	return out, nil
}

func (r *ContactRepo) Update(ctx context.Context, contact model.Contact) (model.Contact, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", contact.ID, contact.OwnerID).
		Save(&contact)
	if err := res.Error; err != nil {
		return model.Contact{}, customErrors.WrapInternal(err, "UpdateContact")
	}
	return contact, nil
}

func (r *ContactRepo) Delete(ctx context.Context, ownerID, contactID uint) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", contactID, ownerID).
		Delete(&model.Contact{})
	if err := res.Error; err != nil {
		return customErrors.WrapInternal(err, "DeleteContact")
	}
	if res.RowsAffected == 0 {
		return customErrors.ErrNotFound
	}
	return nil
}

func (r *ContactRepo) ListByOwner(ctx context.Context, ownerID uint) ([]model.Contact, error) {
	var out []model.Contact
	res := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).Find(&out)
	if err := res.Error; err != nil {
		return nil, customErrors.WrapInternal(err, "ListByOwner")
	}
	return out, nil
}

