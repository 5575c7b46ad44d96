package usecase

import (
	"context"
	"strings"

	"flipearn/internal/domain/entity"
	"flipearn/internal/domain/repository"
	"flipearn/pkg/errors"
	"flipearn/pkg/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type LedgerUseCase struct {
	store repository.Store
}

func NewLedgerUseCase(store repository.Store) *LedgerUseCase {
	return &LedgerUseCase{store: store}
}

func (uc *LedgerUseCase) GetBalance(ctx context.Context, userID string) (entity.Balance, error) {
	user, err := uc.store.Users().GetByID(ctx, userID)
	if err != nil {
		return entity.Balance{}, err
	}
	return user.Balance(), nil
}

// RequestWithdrawal records a payout request and moves amount from available
// to withdrawn. Both writes commit together or not at all.
func (uc *LedgerUseCase) RequestWithdrawal(ctx context.Context, userID string, amount decimal.Decimal, account string) (*entity.Withdrawal, error) {
	if !amount.IsPositive() {
		return nil, errors.BadRequest("Amount must be greater than 0", nil)
	}
	if !amount.Equal(amount.Round(2)) {
		return nil, errors.BadRequest("Amount cannot have more than 2 decimal places", nil)
	}
	if strings.TrimSpace(account) == "" {
		return nil, errors.BadRequest("Payout account is required", nil)
	}

	withdrawal := &entity.Withdrawal{
		ID:      uuid.New().String(),
		UserID:  userID,
		Amount:  amount.Round(2),
		Account: strings.TrimSpace(account),
	}

	err := uc.store.WithTx(ctx, func(ctx context.Context, tx repository.Store) error {
		user, err := tx.Users().GetForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		if withdrawal.Amount.GreaterThan(user.Balance().Available) {
			return errors.BadRequest("Insufficient balance", nil)
		}

		if _, err := tx.Users().AddWithdrawn(ctx, userID, withdrawal.Amount); err != nil {
			return err
		}
		return tx.Withdrawals().Create(ctx, withdrawal)
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Withdrawal %s of %s requested by %s", withdrawal.ID, withdrawal.Amount.StringFixed(2), userID)
	return withdrawal, nil
}

func (uc *LedgerUseCase) ListPaidOrders(ctx context.Context, userID string) ([]*entity.Order, error) {
	return uc.store.Transactions().ListPaidOrders(ctx, userID)
}

func (uc *LedgerUseCase) ListWithdrawals(ctx context.Context, userID string) ([]*entity.Withdrawal, error) {
	return uc.store.Withdrawals().ListByUser(ctx, userID)
}

// PurchaseAccount is reserved for a payment integration that does not exist yet.
func (uc *LedgerUseCase) PurchaseAccount(ctx context.Context, userID, listingID string) error {
	return errors.NotImplemented("Purchasing accounts is not available yet")
}
