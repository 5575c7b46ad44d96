package service

import (
	"context"

	"flipearn/internal/domain/entity"
)

// ListingCache keeps the public listing feed. Implementations swallow their own
// errors: a miss or failure means the caller reads from the database.
type ListingCache interface {
	GetPublic(ctx context.Context) ([]*entity.Listing, bool)
	SetPublic(ctx context.Context, listings []*entity.Listing)
	InvalidatePublic(ctx context.Context)
}

type NopListingCache struct{}

func (NopListingCache) GetPublic(context.Context) ([]*entity.Listing, bool) { return nil, false }
func (NopListingCache) SetPublic(context.Context, []*entity.Listing)        {}
func (NopListingCache) InvalidatePublic(context.Context)                    {}
