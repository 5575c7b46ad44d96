package repository

import (
	"context"

	"flipearn/internal/domain/entity"
	"flipearn/internal/domain/repository"
	"flipearn/internal/infrastructure/database"
	"flipearn/pkg/errors"
)

const chatColumns = `id, listing_id, chat_user_id, owner_user_id, is_last_message_read,
	last_message, last_message_sender_id, created_at, updated_at`

type postgresChatRepository struct {
	db database.DBTX
}

func NewPostgresChatRepository(db database.DBTX) repository.ChatRepository {
	return &postgresChatRepository{db: db}
}

func scanChat(row scanner) (*entity.Chat, error) {
	var c entity.Chat
	err := row.Scan(&c.ID, &c.ListingID, &c.ChatUserID, &c.OwnerUserID, &c.IsLastMessageRead,
		&c.LastMessage, &c.LastMessageSenderID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *postgresChatRepository) GetByID(ctx context.Context, id string) (*entity.Chat, error) {
	c, err := scanChat(r.db.QueryRowContext(ctx, `SELECT `+chatColumns+` FROM chats WHERE id = $1`, id))
	if err != nil {
		return nil, notFoundOr(err, "Chat", "Failed to get chat")
	}
	return c, nil
}

func (r *postgresChatRepository) FindByParticipants(ctx context.Context, listingID, chatUserID, ownerUserID string) (*entity.Chat, error) {
	query := `SELECT ` + chatColumns + ` FROM chats
		WHERE listing_id = $1 AND chat_user_id = $2 AND owner_user_id = $3`

	c, err := scanChat(r.db.QueryRowContext(ctx, query, listingID, chatUserID, ownerUserID))
	if err != nil {
		return nil, notFoundOr(err, "Chat", "Failed to get chat")
	}
	return c, nil
}

func (r *postgresChatRepository) CreateIfAbsent(ctx context.Context, chat *entity.Chat) error {
	query := `
		INSERT INTO chats (id, listing_id, chat_user_id, owner_user_id)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (listing_id, chat_user_id, owner_user_id) DO NOTHING`

	if _, err := r.db.ExecContext(ctx, query, chat.ID, chat.ListingID, chat.ChatUserID, chat.OwnerUserID); err != nil {
		return errors.Internal("Failed to create chat", err)
	}
	return nil
}

func (r *postgresChatRepository) ListByUser(ctx context.Context, userID string) ([]*entity.Chat, error) {
	query := `SELECT ` + chatColumns + ` FROM chats
		WHERE chat_user_id = $1 OR owner_user_id = $1
		ORDER BY updated_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, errors.Internal("Failed to list chats", err)
	}
	defer rows.Close()

	chats := make([]*entity.Chat, 0)
	for rows.Next() {
		c, err := scanChat(rows)
		if err != nil {
			return nil, errors.Internal("Failed to parse chat data", err)
		}
		chats = append(chats, c)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Internal("Failed to list chats", err)
	}
	return chats, nil
}

func (r *postgresChatRepository) MarkLastMessageRead(ctx context.Context, seen *entity.Message) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE chats SET is_last_message_read = TRUE
		WHERE id = $1 AND last_message_sender_id = $2 AND updated_at = $3`,
		seen.ChatID, seen.SenderID, seen.CreatedAt,
	)
	if err != nil {
		return false, errors.Internal("Failed to mark chat read", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.Internal("Failed to mark chat read", err)
	}
	return n > 0, nil
}

func (r *postgresChatRepository) CreateMessage(ctx context.Context, m *entity.Message) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO messages (chat_id, sender_id, message) VALUES ($1, $2, $3) RETURNING id, created_at`,
		m.ChatID, m.SenderID, m.Message,
	).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		return errors.Internal("Failed to create message", err)
	}
	return nil
}

func (r *postgresChatRepository) ListMessages(ctx context.Context, chatID string) ([]*entity.Message, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, chat_id, sender_id, message, created_at FROM messages
		WHERE chat_id = $1
		ORDER BY created_at ASC, id ASC`,
		chatID,
	)
	if err != nil {
		return nil, errors.Internal("Failed to get messages", err)
	}
	defer rows.Close()

	messages := make([]*entity.Message, 0)
	for rows.Next() {
		var m entity.Message
		if err := rows.Scan(&m.ID, &m.ChatID, &m.SenderID, &m.Message, &m.CreatedAt); err != nil {
			return nil, errors.Internal("Failed to parse message data", err)
		}
		messages = append(messages, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Internal("Failed to get messages", err)
	}
	return messages, nil
}

func (r *postgresChatRepository) UpdateLastMessage(ctx context.Context, m *entity.Message) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE chats SET last_message = $2, last_message_sender_id = $3,
			is_last_message_read = FALSE, updated_at = $4
		WHERE id = $1`,
		m.ChatID, m.Message, m.SenderID, m.CreatedAt,
	)
	if err != nil {
		return errors.Internal("Failed to update chat", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errors.NotFound("Chat", nil)
	}
	return nil
}
