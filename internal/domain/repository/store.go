package repository

import "context"

// Store hands out repositories bound to one database handle. Inside WithTx the
// store passed to fn is bound to the transaction; calling WithTx on it again
// reuses that transaction.
type Store interface {
	Users() UserRepository
	Listings() ListingRepository
	Credentials() CredentialRepository
	Chats() ChatRepository
	Withdrawals() WithdrawalRepository
	Transactions() TransactionRepository

	WithTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error
}
