package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	stderrors "errors"

	"flipearn/internal/domain/entity"
	"flipearn/pkg/errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

type scanner interface {
	Scan(dest ...any) error
}

const listingColumns = `l.id, l.owner_id, l.title, l.platform, l.username, l.niche,
	l.followers_count, l.engagement_rate, l.monthly_views, l.price, l.description,
	l.verified, l.monetized, l.country, l.age_range, l.images, l.status, l.featured,
	l.is_credential_submitted, l.is_credential_changed, l.created_at, l.updated_at`

const ownerColumns = `u.id, u.name, u.email, u.image`

func listingDest(l *entity.Listing, images *[]byte) []any {
	return []any{
		&l.ID, &l.OwnerID, &l.Title, &l.Platform, &l.Username, &l.Niche,
		&l.FollowersCount, &l.EngagementRate, &l.MonthlyViews, &l.Price, &l.Description,
		&l.Verified, &l.Monetized, &l.Country, &l.AgeRange, images, &l.Status, &l.Featured,
		&l.IsCredentialSubmitted, &l.IsCredentialChanged, &l.CreatedAt, &l.UpdatedAt,
	}
}

func scanListing(row scanner) (*entity.Listing, error) {
	var l entity.Listing
	var images []byte
	if err := row.Scan(listingDest(&l, &images)...); err != nil {
		return nil, err
	}
	if err := decodeListing(images, &l); err != nil {
		return nil, err
	}
	return &l, nil
}

func scanListingWithOwner(row scanner) (*entity.Listing, error) {
	var l entity.Listing
	var images []byte
	var owner entity.UserProfile
	dest := append(listingDest(&l, &images), &owner.ID, &owner.Name, &owner.Email, &owner.Image)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	if err := decodeListing(images, &l); err != nil {
		return nil, err
	}
	l.Owner = &owner
	return &l, nil
}

func decodeListing(raw []byte, l *entity.Listing) error {
	if !l.Status.Valid() {
		return fmt.Errorf("unknown listing status %q", l.Status)
	}
	l.Images = []string{}
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, &l.Images)
}

func encodeImages(images []string) (string, error) {
	if images == nil {
		images = []string{}
	}
	b, err := json.Marshal(images)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return stderrors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// notFoundOr maps sql.ErrNoRows to NotFound and anything else to Internal.
func notFoundOr(err error, resource, action string) error {
	if stderrors.Is(err, sql.ErrNoRows) {
		return errors.NotFound(resource, err)
	}
	return errors.Internal(action, err)
}
