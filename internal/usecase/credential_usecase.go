package usecase

import (
	"context"
	"strings"

	"flipearn/internal/domain/entity"
	"flipearn/internal/domain/repository"
	"flipearn/internal/domain/service"
	"flipearn/pkg/errors"
	"flipearn/pkg/logger"

	"github.com/google/uuid"
)

type CredentialUseCase struct {
	store repository.Store
	cache service.ListingCache
}

func NewCredentialUseCase(store repository.Store, cache service.ListingCache) *CredentialUseCase {
	if cache == nil {
		cache = service.NopListingCache{}
	}
	return &CredentialUseCase{store: store, cache: cache}
}

func (uc *CredentialUseCase) SubmitCredential(ctx context.Context, ownerID, listingID string, fields []entity.CredentialField) (*entity.Credential, error) {
	if strings.TrimSpace(listingID) == "" {
		return nil, errors.BadRequest("Listing ID is required", nil)
	}
	if len(fields) == 0 {
		return nil, errors.BadRequest("At least one credential field is required", nil)
	}

	cleaned := make([]entity.CredentialField, 0, len(fields))
	for _, f := range fields {
		name := strings.TrimSpace(f.Name)
		if name == "" || strings.TrimSpace(f.Value) == "" {
			return nil, errors.BadRequest("Every credential field needs a name and a value", nil)
		}
		cleaned = append(cleaned, entity.CredentialField{Type: strings.TrimSpace(f.Type), Name: name, Value: f.Value})
	}

	credential := &entity.Credential{
		ID:                 uuid.New().String(),
		ListingID:          listingID,
		OriginalCredential: cleaned,
	}

	err := uc.store.WithTx(ctx, func(ctx context.Context, tx repository.Store) error {
		listing, err := tx.Listings().GetForUpdate(ctx, listingID)
		if err != nil {
			return err
		}
		if listing.OwnerID != ownerID || !listing.Status.IsVisible() {
			return errors.NotFound("Listing", nil)
		}

		if _, err := tx.Credentials().GetByListingID(ctx, listingID); err == nil {
			return errors.Conflict("Credential already submitted for this listing")
		} else if !errors.Is(err, "NOT_FOUND") {
			return err
		}

		if err := tx.Credentials().Create(ctx, credential); err != nil {
			return err
		}
		return tx.Listings().SetCredentialSubmitted(ctx, listingID)
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Credential submitted for listing %s", listingID)
	return credential, nil
}

// MarkCredentialChanged flags that the escrowed credential no longer works.
func (uc *CredentialUseCase) MarkCredentialChanged(ctx context.Context, listingID string) (*entity.Listing, error) {
	listing, err := uc.store.Listings().SetCredentialChanged(ctx, listingID)
	if err != nil {
		return nil, err
	}

	uc.cache.InvalidatePublic(ctx)
	logger.Warn("Credential for listing %s marked as changed", listingID)
	return listing, nil
}
