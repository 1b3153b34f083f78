package redis

import (
	"context"

	"github.com/osavchuk/contacts-api/internal/domain/contacts/model"
)

// NoopPrincipalCache is selected at startup when no redis address is
// configured. Every lookup is a miss, so the pipeline always falls through to
// the primary store.
type NoopPrincipalCache struct{}

func NewNoopPrincipalCache() NoopPrincipalCache { return NoopPrincipalCache{} }

func (NoopPrincipalCache) Get(context.Context, uint) (model.Principal, bool) {
	return model.Principal{}, false
}

func (NoopPrincipalCache) Put(context.Context, model.Principal) {}

func (NoopPrincipalCache) Invalidate(context.Context, uint) {}
