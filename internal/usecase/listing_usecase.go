package usecase

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"flipearn/internal/domain/entity"
	"flipearn/internal/domain/repository"
	"flipearn/internal/domain/service"
	"flipearn/pkg/errors"
	"flipearn/pkg/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

type ListingLimits struct {
	FreeListings int
	MaxImages    int
}

type ListingUseCase struct {
	store    repository.Store
	uploader service.ImageUploader
	cache    service.ListingCache
	mailer   service.Mailer
	tasks    service.TaskSubmitter
	limits   ListingLimits
}

func NewListingUseCase(
	store repository.Store,
	uploader service.ImageUploader,
	cache service.ListingCache,
	mailer service.Mailer,
	tasks service.TaskSubmitter,
	limits ListingLimits,
) *ListingUseCase {
	if cache == nil {
		cache = service.NopListingCache{}
	}
	return &ListingUseCase{
		store:    store,
		uploader: uploader,
		cache:    cache,
		mailer:   mailer,
		tasks:    tasks,
		limits:   limits,
	}
}

// ListingInput is the raw account details submitted by an owner. Numeric
// fields arrive as text from multipart forms and are parsed here.
type ListingInput struct {
	ID             string
	Title          string
	Platform       string
	Username       string
	Niche          string
	FollowersCount string
	EngagementRate string
	MonthlyViews   string
	Price          string
	Description    string
	Verified       bool
	Monetized      bool
	Country        string
	AgeRange       string
	Images         []string
}

func (in ListingInput) details() (entity.ListingDetails, error) {
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Platform) == "" ||
		entity.NormalizeUsername(in.Username) == "" || strings.TrimSpace(in.Niche) == "" {
		return entity.ListingDetails{}, errors.BadRequest("Title, platform, username and niche are required", nil)
	}

	followers, err := parseNumber("followers_count", in.FollowersCount)
	if err != nil {
		return entity.ListingDetails{}, err
	}
	engagement, err := parseNumber("engagement_rate", in.EngagementRate)
	if err != nil {
		return entity.ListingDetails{}, err
	}
	views, err := parseNumber("monthly_views", in.MonthlyViews)
	if err != nil {
		return entity.ListingDetails{}, err
	}
	price, err := parsePrice(in.Price)
	if err != nil {
		return entity.ListingDetails{}, err
	}

	return entity.ListingDetails{
		Title:          in.Title,
		Platform:       in.Platform,
		Username:       in.Username,
		Niche:          in.Niche,
		FollowersCount: followers,
		EngagementRate: engagement,
		MonthlyViews:   views,
		Price:          price,
		Description:    in.Description,
		Verified:       in.Verified,
		Monetized:      in.Monetized,
		Country:        in.Country,
		AgeRange:       in.AgeRange,
	}, nil
}

func parseNumber(field, raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, errors.BadRequest(fmt.Sprintf("%s must be a non-negative number", field), err)
	}
	return v, nil
}

func parsePrice(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, nil
	}
	price, err := decimal.NewFromString(raw)
	if err != nil || price.IsNegative() {
		return decimal.Zero, errors.BadRequest("price must be a non-negative number", err)
	}
	return price.Round(2), nil
}

type OwnerListings struct {
	Listings []*entity.Listing `json:"listings"`
	Balance  entity.Balance    `json:"balance"`
}

func (uc *ListingUseCase) CreateListing(ctx context.Context, auth entity.AuthContext, input ListingInput, files []service.ImageFile) (*entity.Listing, error) {
	details, err := input.details()
	if err != nil {
		return nil, err
	}

	if len(files) > uc.limits.MaxImages {
		return nil, errors.QuotaExceeded(fmt.Sprintf("You can upload at most %d images", uc.limits.MaxImages))
	}

	// Cheap pre-check so a capped owner does not pay for uploads
	if !auth.IsPremium() {
		if err := uc.checkListingQuota(ctx, uc.store, auth.UserID); err != nil {
			return nil, err
		}
	}

	images, err := uc.uploadImages(ctx, files)
	if err != nil {
		return nil, err
	}

	listing := &entity.Listing{
		ID:      uuid.New().String(),
		OwnerID: auth.UserID,
		Images:  images,
		Status:  entity.ListingStatusActive,
	}
	listing.Apply(details)

	err = uc.store.WithTx(ctx, func(ctx context.Context, tx repository.Store) error {
		// Serializes creations per owner so the count below stays accurate
		if _, err := tx.Users().GetForUpdate(ctx, auth.UserID); err != nil {
			return err
		}
		if !auth.IsPremium() {
			if err := uc.checkListingQuota(ctx, tx, auth.UserID); err != nil {
				return err
			}
		}
		return tx.Listings().Create(ctx, listing)
	})
	if err != nil {
		return nil, err
	}

	uc.cache.InvalidatePublic(ctx)
	logger.Info("Listing %s created by %s with %d images", listing.ID, auth.UserID, len(images))
	return listing, nil
}

func (uc *ListingUseCase) checkListingQuota(ctx context.Context, store repository.Store, ownerID string) error {
	count, err := store.Listings().CountByOwner(ctx, ownerID)
	if err != nil {
		return err
	}
	if count >= uc.limits.FreeListings {
		return errors.QuotaExceeded(fmt.Sprintf(
			"Free plan is limited to %d listings. Upgrade to premium to add more", uc.limits.FreeListings))
	}
	return nil
}

func (uc *ListingUseCase) UpdateListing(ctx context.Context, ownerID string, input ListingInput, files []service.ImageFile) (*entity.Listing, error) {
	if strings.TrimSpace(input.ID) == "" {
		return nil, errors.BadRequest("Listing ID is required", nil)
	}

	existing, err := uc.ownedListing(ctx, uc.store.Listings().GetByID, ownerID, input.ID)
	if err != nil {
		return nil, err
	}
	if existing.Status == entity.ListingStatusSold {
		return nil, errors.InvalidState("You can't update a sold listing")
	}

	retained := existing.RetainImages(input.Images)
	if len(retained)+len(files) > uc.limits.MaxImages {
		return nil, errors.QuotaExceeded(fmt.Sprintf("A listing can have at most %d images", uc.limits.MaxImages))
	}

	details, err := input.details()
	if err != nil {
		return nil, err
	}

	uploaded, err := uc.uploadImages(ctx, files)
	if err != nil {
		return nil, err
	}

	var updated *entity.Listing
	err = uc.store.WithTx(ctx, func(ctx context.Context, tx repository.Store) error {
		listing, err := uc.ownedListing(ctx, tx.Listings().GetForUpdate, ownerID, input.ID)
		if err != nil {
			return err
		}
		if listing.Status == entity.ListingStatusSold {
			return errors.InvalidState("You can't update a sold listing")
		}

		// Images may have changed since the first read
		images := append(listing.RetainImages(retained), uploaded...)
		if len(images) > uc.limits.MaxImages {
			return errors.QuotaExceeded(fmt.Sprintf("A listing can have at most %d images", uc.limits.MaxImages))
		}

		listing.Apply(details)
		listing.Images = images
		if err := tx.Listings().Update(ctx, listing); err != nil {
			return err
		}
		updated = listing
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.cache.InvalidatePublic(ctx)
	return updated, nil
}

func (uc *ListingUseCase) ToggleStatus(ctx context.Context, ownerID, listingID string) (*entity.Listing, error) {
	var updated *entity.Listing
	err := uc.store.WithTx(ctx, func(ctx context.Context, tx repository.Store) error {
		listing, err := uc.ownedListing(ctx, tx.Listings().GetForUpdate, ownerID, listingID)
		if err != nil {
			return err
		}

		next, err := entity.NextStatus(listing.Status, entity.ListingActionToggle)
		if err != nil {
			return err
		}

		updated, err = tx.Listings().UpdateStatus(ctx, listingID, next)
		return err
	})
	if err != nil {
		return nil, err
	}

	uc.cache.InvalidatePublic(ctx)
	return updated, nil
}

// DeleteListing soft-deletes an owned listing. The returned listing carries
// the owner's profile so the caller can notify them once the response is out.
func (uc *ListingUseCase) DeleteListing(ctx context.Context, ownerID, listingID string) (*entity.Listing, error) {
	deleted, err := uc.store.Listings().SoftDelete(ctx, listingID, ownerID)
	if err != nil {
		return nil, err
	}

	uc.cache.InvalidatePublic(ctx)
	logger.Info("Listing %s deleted by %s", listingID, ownerID)
	return deleted, nil
}

// NotifyDeletion queues the credential-change notice for a deleted listing.
// It never blocks and never fails the caller.
func (uc *ListingUseCase) NotifyDeletion(listing *entity.Listing) {
	if listing == nil || !listing.IsCredentialChanged {
		return
	}
	if listing.Owner == nil || listing.Owner.Email == "" {
		logger.Warn("Listing %s deleted with changed credentials but owner has no email", listing.ID)
		return
	}

	mail := service.Mail{
		To:      listing.Owner.Email,
		Subject: "Your listing has been removed",
		Text: fmt.Sprintf(
			"Your %s listing @%s (%s) was removed. Its credentials had been changed after submission, "+
				"so the account could not be delivered to a buyer.",
			listing.Platform, listing.Username, listing.Title),
	}

	accepted := uc.tasks.Submit("listing_deleted_email", func(ctx context.Context) error {
		return uc.mailer.Send(ctx, mail)
	})
	if !accepted {
		logger.Warn("Notification queue full, dropped deletion notice for listing %s", listing.ID)
	}
}

func (uc *ListingUseCase) MarkFeatured(ctx context.Context, auth entity.AuthContext, listingID string) (*entity.Listing, error) {
	if !auth.IsPremium() {
		return nil, errors.Forbidden("Featuring listings requires a premium plan", nil)
	}

	var featured *entity.Listing
	err := uc.store.WithTx(ctx, func(ctx context.Context, tx repository.Store) error {
		// One feature request per owner at a time
		if _, err := tx.Users().GetForUpdate(ctx, auth.UserID); err != nil {
			return err
		}

		listing, err := uc.ownedListing(ctx, tx.Listings().GetForUpdate, auth.UserID, listingID)
		if err != nil {
			return err
		}
		if listing.Status != entity.ListingStatusActive {
			return errors.NotFound("Listing", nil)
		}

		if err := tx.Listings().ClearFeatured(ctx, auth.UserID, listingID); err != nil {
			return err
		}
		featured, err = tx.Listings().SetFeatured(ctx, listingID)
		return err
	})
	if err != nil {
		return nil, err
	}

	uc.cache.InvalidatePublic(ctx)
	return featured, nil
}

func (uc *ListingUseCase) ListPublic(ctx context.Context) ([]*entity.Listing, error) {
	if listings, ok := uc.cache.GetPublic(ctx); ok {
		return listings, nil
	}

	listings, err := uc.store.Listings().ListPublic(ctx)
	if err != nil {
		return nil, err
	}

	uc.cache.SetPublic(ctx, listings)
	return listings, nil
}

func (uc *ListingUseCase) ListForOwner(ctx context.Context, ownerID string) (*OwnerListings, error) {
	user, err := uc.store.Users().GetByID(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	listings, err := uc.store.Listings().ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	return &OwnerListings{Listings: listings, Balance: user.Balance()}, nil
}

// BanListing is the moderation entry point; it ignores ownership.
func (uc *ListingUseCase) BanListing(ctx context.Context, listingID string) (*entity.Listing, error) {
	var banned *entity.Listing
	err := uc.store.WithTx(ctx, func(ctx context.Context, tx repository.Store) error {
		listing, err := tx.Listings().GetForUpdate(ctx, listingID)
		if err != nil {
			return err
		}

		next, err := entity.NextStatus(listing.Status, entity.ListingActionBan)
		if err != nil {
			return err
		}

		banned, err = tx.Listings().UpdateStatus(ctx, listingID, next)
		return err
	})
	if err != nil {
		return nil, err
	}

	uc.cache.InvalidatePublic(ctx)
	logger.Info("Listing %s banned", listingID)
	return banned, nil
}

// ownedListing loads a listing through get and hides it unless ownerID owns it
// and it is not deleted.
func (uc *ListingUseCase) ownedListing(
	ctx context.Context,
	get func(ctx context.Context, id string) (*entity.Listing, error),
	ownerID, listingID string,
) (*entity.Listing, error) {
	listing, err := get(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing.OwnerID != ownerID || !listing.Status.IsVisible() {
		return nil, errors.NotFound("Listing", nil)
	}
	return listing, nil
}

// uploadImages uploads every file concurrently and returns the URLs in file
// order. Any failure fails the whole batch.
func (uc *ListingUseCase) uploadImages(ctx context.Context, files []service.ImageFile) ([]string, error) {
	urls := make([]string, len(files))
	if len(files) == 0 {
		return urls, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, f := range files {
		g.Go(func() error {
			rc, err := f.Open()
			if err != nil {
				return fmt.Errorf("open %s: %w", f.Filename, err)
			}
			defer rc.Close()

			url, err := uc.uploader.Upload(gctx, rc, f.Filename, f.ContentType)
			if err != nil {
				return fmt.Errorf("upload %s: %w", f.Filename, err)
			}
			urls[i] = url
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, errors.Internal("Failed to upload images", err)
	}
	return urls, nil
}
