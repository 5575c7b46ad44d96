package usecase

import (
	"context"

	"flipearn/internal/domain/entity"
	"flipearn/internal/domain/repository"
)

type UserUseCase struct {
	store repository.Store
}

func NewUserUseCase(store repository.Store) *UserUseCase {
	return &UserUseCase{store: store}
}

// EnsureUser mirrors an authenticated identity into the users table so
// listings, chats and balances can reference it.
func (uc *UserUseCase) EnsureUser(ctx context.Context, auth entity.AuthContext) error {
	return uc.store.Users().Upsert(ctx, &entity.User{
		ID:    auth.UserID,
		Email: auth.Email,
		Name:  auth.Name,
		Image: auth.Picture,
	})
}
