package repository

import (
	"context"

	"flipearn/internal/domain/entity"
)

type ChatRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Chat, error)
	FindByParticipants(ctx context.Context, listingID, chatUserID, ownerUserID string) (*entity.Chat, error)
	// CreateIfAbsent inserts the chat unless one already exists for the same
	// listing and participants; it never fails on that conflict.
	CreateIfAbsent(ctx context.Context, chat *entity.Chat) error
	ListByUser(ctx context.Context, userID string) ([]*entity.Chat, error)
	// MarkLastMessageRead sets the read flag only while seen is still the
	// chat's last message and reports whether it did.
	MarkLastMessageRead(ctx context.Context, seen *entity.Message) (bool, error)

	CreateMessage(ctx context.Context, message *entity.Message) error
	ListMessages(ctx context.Context, chatID string) ([]*entity.Message, error)
	// UpdateLastMessage records message as the latest one and marks it unread.
	UpdateLastMessage(ctx context.Context, message *entity.Message) error
}
