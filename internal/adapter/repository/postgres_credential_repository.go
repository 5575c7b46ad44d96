package repository

import (
	"context"
	"encoding/json"

	"flipearn/internal/domain/entity"
	"flipearn/internal/domain/repository"
	"flipearn/internal/infrastructure/database"
	"flipearn/pkg/errors"
)

type postgresCredentialRepository struct {
	db database.DBTX
}

func NewPostgresCredentialRepository(db database.DBTX) repository.CredentialRepository {
	return &postgresCredentialRepository{db: db}
}

func (r *postgresCredentialRepository) Create(ctx context.Context, c *entity.Credential) error {
	fields, err := json.Marshal(c.OriginalCredential)
	if err != nil {
		return errors.Internal("Failed to encode credential", err)
	}

	err = r.db.QueryRowContext(ctx,
		`INSERT INTO credentials (id, listing_id, original_credential) VALUES ($1, $2, $3) RETURNING created_at`,
		c.ID, c.ListingID, string(fields),
	).Scan(&c.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return errors.Conflict("Credential already submitted for this listing")
		}
		return errors.Internal("Failed to save credential", err)
	}
	return nil
}

func (r *postgresCredentialRepository) GetByListingID(ctx context.Context, listingID string) (*entity.Credential, error) {
	var c entity.Credential
	var fields []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT id, listing_id, original_credential, created_at FROM credentials WHERE listing_id = $1`,
		listingID,
	).Scan(&c.ID, &c.ListingID, &fields, &c.CreatedAt)
	if err != nil {
		return nil, notFoundOr(err, "Credential", "Failed to get credential")
	}
	if err := json.Unmarshal(fields, &c.OriginalCredential); err != nil {
		return nil, errors.Internal("Failed to parse credential data", err)
	}
	return &c, nil
}
