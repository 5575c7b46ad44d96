package handler

import (
	"context"

	"flipearn/internal/adapter/api/middleware"
	"flipearn/internal/domain/entity"
	"flipearn/internal/domain/service"
	"flipearn/internal/usecase"
	"flipearn/pkg/errors"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// Use case surfaces the handlers depend on.

type ListingService interface {
	CreateListing(ctx context.Context, auth entity.AuthContext, input usecase.ListingInput, files []service.ImageFile) (*entity.Listing, error)
	UpdateListing(ctx context.Context, ownerID string, input usecase.ListingInput, files []service.ImageFile) (*entity.Listing, error)
	ToggleStatus(ctx context.Context, ownerID, listingID string) (*entity.Listing, error)
	DeleteListing(ctx context.Context, ownerID, listingID string) (*entity.Listing, error)
	NotifyDeletion(listing *entity.Listing)
	MarkFeatured(ctx context.Context, auth entity.AuthContext, listingID string) (*entity.Listing, error)
	ListPublic(ctx context.Context) ([]*entity.Listing, error)
	ListForOwner(ctx context.Context, ownerID string) (*usecase.OwnerListings, error)
}

type CredentialService interface {
	SubmitCredential(ctx context.Context, ownerID, listingID string, fields []entity.CredentialField) (*entity.Credential, error)
}

type LedgerService interface {
	RequestWithdrawal(ctx context.Context, userID string, amount decimal.Decimal, account string) (*entity.Withdrawal, error)
	ListPaidOrders(ctx context.Context, userID string) ([]*entity.Order, error)
	GetBalance(ctx context.Context, userID string) (entity.Balance, error)
	ListWithdrawals(ctx context.Context, userID string) ([]*entity.Withdrawal, error)
	PurchaseAccount(ctx context.Context, userID, listingID string) error
}

type ChatService interface {
	GetOrCreateChat(ctx context.Context, userID, listingID, chatID string) (*entity.Chat, error)
	ListUserChats(ctx context.Context, userID string) ([]*entity.Chat, error)
	SendMessage(ctx context.Context, userID, chatID, text string) (*entity.Message, error)
}

type ModerationService interface {
	BanListing(ctx context.Context, listingID string) (*entity.Listing, error)
	MarkCredentialChanged(ctx context.Context, listingID string) (*entity.Listing, error)
}

func currentUser(c echo.Context) (entity.AuthContext, error) {
	auth, ok := middleware.GetAuth(c)
	if !ok {
		return entity.AuthContext{}, errors.Unauthorized("Authentication required", nil)
	}
	return auth, nil
}

// bindAndValidate binds the request body into req and runs the validator.
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return errors.BadRequest("Invalid request body", err)
	}
	return c.Validate(req)
}
