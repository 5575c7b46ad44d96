package repository

import (
	"context"

	"flipearn/internal/domain/entity"
)

type WithdrawalRepository interface {
	Create(ctx context.Context, withdrawal *entity.Withdrawal) error
	ListByUser(ctx context.Context, userID string) ([]*entity.Withdrawal, error)
}

type TransactionRepository interface {
	// ListPaidOrders returns the user's paid transactions newest first, each
	// joined with its listing and escrowed credential (nil when absent).
	ListPaidOrders(ctx context.Context, userID string) ([]*entity.Order, error)
}
