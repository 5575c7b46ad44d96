package repository

import (
	"context"

	"flipearn/internal/domain/entity"
)

type ListingRepository interface {
	Create(ctx context.Context, listing *entity.Listing) error
	GetByID(ctx context.Context, id string) (*entity.Listing, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Listing, error)
	// CountByOwner counts the owner's listings that are not deleted.
	CountByOwner(ctx context.Context, ownerID string) (int, error)
	Update(ctx context.Context, listing *entity.Listing) error
	UpdateStatus(ctx context.Context, id string, status entity.ListingStatus) (*entity.Listing, error)
	// SoftDelete marks an owned, not yet sold or deleted listing as deleted and
	// returns it with the owner's profile.
	SoftDelete(ctx context.Context, id, ownerID string) (*entity.Listing, error)
	ClearFeatured(ctx context.Context, ownerID, exceptID string) error
	SetFeatured(ctx context.Context, id string) (*entity.Listing, error)
	SetCredentialSubmitted(ctx context.Context, id string) error
	SetCredentialChanged(ctx context.Context, id string) (*entity.Listing, error)
	ListPublic(ctx context.Context) ([]*entity.Listing, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*entity.Listing, error)
}
