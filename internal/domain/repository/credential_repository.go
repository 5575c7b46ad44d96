package repository

import (
	"context"

	"flipearn/internal/domain/entity"
)

type CredentialRepository interface {
	Create(ctx context.Context, credential *entity.Credential) error
	GetByListingID(ctx context.Context, listingID string) (*entity.Credential, error)
}
