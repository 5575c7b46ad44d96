package repository

import (
	"context"
	"database/sql"

	"flipearn/internal/domain/repository"
	"flipearn/internal/infrastructure/database"
)

type postgresStore struct {
	db   *sql.DB
	q    database.DBTX
	inTx bool
}

func NewPostgresStore(db *sql.DB) repository.Store {
	return &postgresStore{db: db, q: db}
}

func (s *postgresStore) Users() repository.UserRepository {
	return NewPostgresUserRepository(s.q)
}

func (s *postgresStore) Listings() repository.ListingRepository {
	return NewPostgresListingRepository(s.q)
}

func (s *postgresStore) Credentials() repository.CredentialRepository {
	return NewPostgresCredentialRepository(s.q)
}

func (s *postgresStore) Chats() repository.ChatRepository {
	return NewPostgresChatRepository(s.q)
}

func (s *postgresStore) Withdrawals() repository.WithdrawalRepository {
	return NewPostgresWithdrawalRepository(s.q)
}

func (s *postgresStore) Transactions() repository.TransactionRepository {
	return NewPostgresTransactionRepository(s.q)
}

func (s *postgresStore) WithTx(ctx context.Context, fn func(ctx context.Context, tx repository.Store) error) error {
	if s.inTx {
		return fn(ctx, s)
	}
	return database.WithTx(ctx, s.db, nil, func(ctx context.Context, tx database.DBTX) error {
		return fn(ctx, &postgresStore{db: s.db, q: tx, inTx: true})
	})
}
