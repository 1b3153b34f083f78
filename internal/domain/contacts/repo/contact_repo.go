package repo

import (
	"context"

	"github.com/osavchuk/contacts-api/internal/domain/contacts/model"
)

// ContactFilter narrows List results; empty fields are ignored, non-empty
// ones are OR-combined substring matches, mirroring the search endpoint.
type ContactFilter struct {
	FirstName string
	LastName  string
	Email     string
}

type ContactRepo interface {
	Create(ctx context.Context, contact model.Contact) (model.Contact, error)
	Get(ctx context.Context, ownerID, contactID uint) (model.Contact, error)
	List(ctx context.Context, ownerID uint, skip, limit int, filter ContactFilter) ([]model.Contact, error)
	Update(ctx context.Context, contact model.Contact) (model.Contact, error)
	Delete(ctx context.Context, ownerID, contactID uint) error
	ListByOwner(ctx context.Context, ownerID uint) ([]model.Contact, error)
}

type MetaRepo interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}
