package repo

import (
	"context"

	"github.com/osavchuk/contacts-api/internal/domain/contacts/model"
)

// PrincipalCache shields the primary store from repeated identity lookups.
// It is an optimization, never a source of truth: Get answers miss both when
// the key is absent and when the backing store is unreachable or not
// configured, and callers must always be able to fall back to the primary
// store. Put and Invalidate never surface errors.
type PrincipalCache interface {
	Get(ctx context.Context, userID uint) (model.Principal, bool)
	Put(ctx context.Context, p model.Principal)
	Invalidate(ctx context.Context, userID uint)
}
