package repository

import (
	"context"
	"database/sql"
	stderrors "errors"

	"flipearn/internal/domain/entity"
	"flipearn/internal/domain/repository"
	"flipearn/internal/infrastructure/database"
	"flipearn/pkg/errors"

	"github.com/shopspring/decimal"
)

const userColumns = `id, email, name, image, earned, withdrawn, created_at, updated_at`

type postgresUserRepository struct {
	db database.DBTX
}

func NewPostgresUserRepository(db database.DBTX) repository.UserRepository {
	return &postgresUserRepository{db: db}
}

func scanUser(row scanner) (*entity.User, error) {
	var u entity.User
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Image, &u.Earned, &u.Withdrawn, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *postgresUserRepository) Upsert(ctx context.Context, user *entity.User) error {
	query := `
		INSERT INTO users (id, email, name, image)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			email = COALESCE(NULLIF(EXCLUDED.email, ''), users.email),
			name = COALESCE(NULLIF(EXCLUDED.name, ''), users.name),
			image = COALESCE(NULLIF(EXCLUDED.image, ''), users.image),
			updated_at = NOW()
		WHERE (EXCLUDED.email <> '' AND users.email IS DISTINCT FROM EXCLUDED.email)
			OR (EXCLUDED.name <> '' AND users.name IS DISTINCT FROM EXCLUDED.name)
			OR (EXCLUDED.image <> '' AND users.image IS DISTINCT FROM EXCLUDED.image)`

	if _, err := r.db.ExecContext(ctx, query, user.ID, user.Email, user.Name, user.Image); err != nil {
		return errors.Internal("Failed to sync user", err)
	}
	return nil
}

func (r *postgresUserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	u, err := scanUser(row)
	if err != nil {
		return nil, notFoundOr(err, "User", "Failed to get user")
	}
	return u, nil
}

func (r *postgresUserRepository) GetForUpdate(ctx context.Context, id string) (*entity.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1 FOR UPDATE`, id)
	u, err := scanUser(row)
	if err != nil {
		return nil, notFoundOr(err, "User", "Failed to lock user")
	}
	return u, nil
}

func (r *postgresUserRepository) AddWithdrawn(ctx context.Context, id string, amount decimal.Decimal) (*entity.User, error) {
	query := `
		UPDATE users
		SET withdrawn = withdrawn + $2, updated_at = NOW()
		WHERE id = $1 AND earned - withdrawn >= $2
		RETURNING ` + userColumns

	u, err := scanUser(r.db.QueryRowContext(ctx, query, id, amount))
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.BadRequest("Insufficient balance", err)
		}
		return nil, errors.Internal("Failed to update balance", err)
	}
	return u, nil
}
