package repository

import (
	"context"

	"flipearn/internal/domain/entity"

	"github.com/shopspring/decimal"
)

type UserRepository interface {
	// Upsert inserts the user or refreshes email, name and image. Empty values
	// keep what is stored; balances are untouched.
	Upsert(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	// GetForUpdate reads the user row and locks it until the transaction ends.
	GetForUpdate(ctx context.Context, id string) (*entity.User, error)
	// AddWithdrawn raises withdrawn by amount only while earned - withdrawn >= amount.
	AddWithdrawn(ctx context.Context, id string, amount decimal.Decimal) (*entity.User, error)
}
