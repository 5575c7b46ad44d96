package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	"flipearn/internal/domain/entity"
	"flipearn/internal/domain/repository"
	"flipearn/internal/infrastructure/database"
	"flipearn/pkg/errors"
)

type postgresWithdrawalRepository struct {
	db database.DBTX
}

func NewPostgresWithdrawalRepository(db database.DBTX) repository.WithdrawalRepository {
	return &postgresWithdrawalRepository{db: db}
}

func (r *postgresWithdrawalRepository) Create(ctx context.Context, w *entity.Withdrawal) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO withdrawals (id, user_id, amount, account) VALUES ($1, $2, $3, $4) RETURNING created_at`,
		w.ID, w.UserID, w.Amount, w.Account,
	).Scan(&w.CreatedAt)
	if err != nil {
		return errors.Internal("Failed to create withdrawal", err)
	}
	return nil
}

func (r *postgresWithdrawalRepository) ListByUser(ctx context.Context, userID string) ([]*entity.Withdrawal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, amount, account, created_at FROM withdrawals
		WHERE user_id = $1
		ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, errors.Internal("Failed to list withdrawals", err)
	}
	defer rows.Close()

	withdrawals := make([]*entity.Withdrawal, 0)
	for rows.Next() {
		var w entity.Withdrawal
		if err := rows.Scan(&w.ID, &w.UserID, &w.Amount, &w.Account, &w.CreatedAt); err != nil {
			return nil, errors.Internal("Failed to parse withdrawal data", err)
		}
		withdrawals = append(withdrawals, &w)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Internal("Failed to list withdrawals", err)
	}
	return withdrawals, nil
}

type postgresTransactionRepository struct {
	db database.DBTX
}

func NewPostgresTransactionRepository(db database.DBTX) repository.TransactionRepository {
	return &postgresTransactionRepository{db: db}
}

func (r *postgresTransactionRepository) ListPaidOrders(ctx context.Context, userID string) ([]*entity.Order, error) {
	query := `SELECT t.id, t.user_id, t.listing_id, t.amount, t.is_paid, t.created_at, t.updated_at,
			` + listingColumns + `,
			c.id, c.original_credential, c.created_at
		FROM transactions AS t
		JOIN listings AS l ON l.id = t.listing_id
		LEFT JOIN credentials AS c ON c.listing_id = t.listing_id
		WHERE t.user_id = $1 AND t.is_paid
		ORDER BY t.created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, errors.Internal("Failed to list orders", err)
	}
	defer rows.Close()

	orders := make([]*entity.Order, 0)
	for rows.Next() {
		var o entity.Order
		var l entity.Listing
		var images, fields []byte
		var credID sql.NullString
		var credCreatedAt sql.NullTime

		dest := []any{&o.ID, &o.UserID, &o.ListingID, &o.Amount, &o.IsPaid, &o.CreatedAt, &o.UpdatedAt}
		dest = append(dest, listingDest(&l, &images)...)
		dest = append(dest, &credID, &fields, &credCreatedAt)

		if err := rows.Scan(dest...); err != nil {
			return nil, errors.Internal("Failed to parse order data", err)
		}
		if err := decodeListing(images, &l); err != nil {
			return nil, errors.Internal("Failed to parse order data", err)
		}
		o.Listing = &l

		if credID.Valid {
			cred := &entity.Credential{ID: credID.String, ListingID: o.ListingID, CreatedAt: credCreatedAt.Time}
			if err := json.Unmarshal(fields, &cred.OriginalCredential); err != nil {
				return nil, errors.Internal("Failed to parse credential data", err)
			}
			o.Credential = cred
		}
		orders = append(orders, &o)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Internal("Failed to list orders", err)
	}
	return orders, nil
}
