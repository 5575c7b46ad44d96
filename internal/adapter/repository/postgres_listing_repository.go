package repository

import (
	"context"
	"strings"

	"flipearn/internal/domain/entity"
	"flipearn/internal/domain/repository"
	"flipearn/internal/infrastructure/database"
	"flipearn/pkg/errors"
)

// deletableStatuses is the SQL list of statuses the delete transition accepts.
var deletableStatuses = statusList(entity.StatusesAllowing(entity.ListingActionDelete))

func statusList(statuses []entity.ListingStatus) string {
	quoted := make([]string, len(statuses))
	for i, s := range statuses {
		quoted[i] = "'" + string(s) + "'"
	}
	return strings.Join(quoted, ", ")
}

type postgresListingRepository struct {
	db database.DBTX
}

func NewPostgresListingRepository(db database.DBTX) repository.ListingRepository {
	return &postgresListingRepository{db: db}
}

func (r *postgresListingRepository) Create(ctx context.Context, l *entity.Listing) error {
	images, err := encodeImages(l.Images)
	if err != nil {
		return errors.Internal("Failed to encode images", err)
	}

	query := `
		INSERT INTO listings (
			id, owner_id, title, platform, username, niche,
			followers_count, engagement_rate, monthly_views, price, description,
			verified, monetized, country, age_range, images, status, featured
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		RETURNING created_at, updated_at`

	err = r.db.QueryRowContext(ctx, query,
		l.ID, l.OwnerID, l.Title, l.Platform, l.Username, l.Niche,
		l.FollowersCount, l.EngagementRate, l.MonthlyViews, l.Price, l.Description,
		l.Verified, l.Monetized, l.Country, l.AgeRange, images, l.Status, l.Featured,
	).Scan(&l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return errors.Internal("Failed to create listing", err)
	}
	return nil
}

func (r *postgresListingRepository) GetByID(ctx context.Context, id string) (*entity.Listing, error) {
	query := `SELECT ` + listingColumns + `, ` + ownerColumns + `
		FROM listings AS l
		JOIN users AS u ON u.id = l.owner_id
		WHERE l.id = $1`

	l, err := scanListingWithOwner(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFoundOr(err, "Listing", "Failed to get listing")
	}
	return l, nil
}

func (r *postgresListingRepository) GetForUpdate(ctx context.Context, id string) (*entity.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings AS l WHERE l.id = $1 FOR UPDATE`

	l, err := scanListing(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFoundOr(err, "Listing", "Failed to lock listing")
	}
	return l, nil
}

func (r *postgresListingRepository) CountByOwner(ctx context.Context, ownerID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM listings WHERE owner_id = $1 AND status <> 'deleted'`, ownerID,
	).Scan(&count)
	if err != nil {
		return 0, errors.Internal("Failed to count listings", err)
	}
	return count, nil
}

func (r *postgresListingRepository) Update(ctx context.Context, l *entity.Listing) error {
	images, err := encodeImages(l.Images)
	if err != nil {
		return errors.Internal("Failed to encode images", err)
	}

	query := `
		UPDATE listings SET
			title = $2, platform = $3, username = $4, niche = $5,
			followers_count = $6, engagement_rate = $7, monthly_views = $8, price = $9,
			description = $10, verified = $11, monetized = $12, country = $13, age_range = $14,
			images = $15, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err = r.db.QueryRowContext(ctx, query,
		l.ID, l.Title, l.Platform, l.Username, l.Niche,
		l.FollowersCount, l.EngagementRate, l.MonthlyViews, l.Price,
		l.Description, l.Verified, l.Monetized, l.Country, l.AgeRange,
		images,
	).Scan(&l.UpdatedAt)
	if err != nil {
		return notFoundOr(err, "Listing", "Failed to update listing")
	}
	return nil
}

func (r *postgresListingRepository) UpdateStatus(ctx context.Context, id string, status entity.ListingStatus) (*entity.Listing, error) {
	query := `UPDATE listings AS l SET status = $2, updated_at = NOW()
		WHERE l.id = $1
		RETURNING ` + listingColumns

	l, err := scanListing(r.db.QueryRowContext(ctx, query, id, status))
	if err != nil {
		return nil, notFoundOr(err, "Listing", "Failed to update listing status")
	}
	return l, nil
}

func (r *postgresListingRepository) SoftDelete(ctx context.Context, id, ownerID string) (*entity.Listing, error) {
	query := `UPDATE listings AS l SET status = 'deleted', featured = FALSE, updated_at = NOW()
		FROM users AS u
		WHERE l.id = $1 AND l.owner_id = $2 AND u.id = l.owner_id
			AND l.status IN (` + deletableStatuses + `)
		RETURNING ` + listingColumns + `, ` + ownerColumns

	l, err := scanListingWithOwner(r.db.QueryRowContext(ctx, query, id, ownerID))
	if err != nil {
		return nil, notFoundOr(err, "Listing", "Failed to delete listing")
	}
	return l, nil
}

func (r *postgresListingRepository) ClearFeatured(ctx context.Context, ownerID, exceptID string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE listings SET featured = FALSE, updated_at = NOW() WHERE owner_id = $1 AND id <> $2 AND featured`,
		ownerID, exceptID,
	)
	if err != nil {
		return errors.Internal("Failed to clear featured listing", err)
	}
	return nil
}

func (r *postgresListingRepository) SetFeatured(ctx context.Context, id string) (*entity.Listing, error) {
	query := `UPDATE listings AS l SET featured = TRUE, updated_at = NOW()
		WHERE l.id = $1
		RETURNING ` + listingColumns

	l, err := scanListing(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, errors.Conflict("Another listing is already featured")
		}
		return nil, notFoundOr(err, "Listing", "Failed to feature listing")
	}
	return l, nil
}

func (r *postgresListingRepository) SetCredentialSubmitted(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE listings SET is_credential_submitted = TRUE, updated_at = NOW() WHERE id = $1`, id,
	)
	if err != nil {
		return errors.Internal("Failed to update listing", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errors.NotFound("Listing", nil)
	}
	return nil
}

func (r *postgresListingRepository) SetCredentialChanged(ctx context.Context, id string) (*entity.Listing, error) {
	query := `UPDATE listings AS l SET is_credential_changed = TRUE, updated_at = NOW()
		WHERE l.id = $1
		RETURNING ` + listingColumns

	l, err := scanListing(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFoundOr(err, "Listing", "Failed to update listing")
	}
	return l, nil
}

func (r *postgresListingRepository) ListPublic(ctx context.Context) ([]*entity.Listing, error) {
	query := `SELECT ` + listingColumns + `, ` + ownerColumns + `
		FROM listings AS l
		JOIN users AS u ON u.id = l.owner_id
		WHERE l.status = 'active'
		ORDER BY l.created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.Internal("Failed to list listings", err)
	}
	defer rows.Close()

	listings := make([]*entity.Listing, 0)
	for rows.Next() {
		l, err := scanListingWithOwner(rows)
		if err != nil {
			return nil, errors.Internal("Failed to parse listing data", err)
		}
		listings = append(listings, l)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Internal("Failed to list listings", err)
	}
	return listings, nil
}

func (r *postgresListingRepository) ListByOwner(ctx context.Context, ownerID string) ([]*entity.Listing, error) {
	query := `SELECT ` + listingColumns + `
		FROM listings AS l
		WHERE l.owner_id = $1 AND l.status <> 'deleted'
		ORDER BY l.created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, errors.Internal("Failed to list listings", err)
	}
	defer rows.Close()

	listings := make([]*entity.Listing, 0)
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, errors.Internal("Failed to parse listing data", err)
		}
		listings = append(listings, l)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Internal("Failed to list listings", err)
	}
	return listings, nil
}
