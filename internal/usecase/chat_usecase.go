package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"flipearn/internal/domain/entity"
	"flipearn/internal/domain/repository"
	"flipearn/pkg/errors"
	"flipearn/pkg/logger"

	"github.com/google/uuid"
)

const sendMessageAction = "send_message"

// RateLimiter decides whether a user may perform an action now.
type RateLimiter interface {
	Allow(userID, action string) (bool, time.Duration)
}

type ChatUseCase struct {
	store   repository.Store
	limiter RateLimiter
}

func NewChatUseCase(store repository.Store, limiter RateLimiter) *ChatUseCase {
	return &ChatUseCase{store: store, limiter: limiter}
}

// GetOrCreateChat opens an existing chat by id, or the caller's chat about a
// listing, creating it on first contact. Opening marks the other
// participant's last message as read.
func (uc *ChatUseCase) GetOrCreateChat(ctx context.Context, userID, listingID, chatID string) (*entity.Chat, error) {
	var chat *entity.Chat
	var err error

	if chatID != "" {
		chat, err = uc.store.Chats().GetByID(ctx, chatID)
		if err != nil {
			return nil, err
		}
		if !chat.IsParticipant(userID) {
			return nil, errors.Forbidden("You are not a participant of this chat", nil)
		}
	} else {
		chat, err = uc.findOrCreate(ctx, userID, listingID)
		if err != nil {
			return nil, err
		}
	}

	h := newHydrator(uc.store)
	if err := h.hydrate(ctx, chat); err != nil {
		return nil, err
	}

	chat.Messages, err = uc.store.Chats().ListMessages(ctx, chat.ID)
	if err != nil {
		return nil, err
	}

	if seen := lastMessage(chat.Messages); seen != nil && seen.SenderID != userID && chat.NeedsReadReceipt(userID) {
		marked, err := uc.store.Chats().MarkLastMessageRead(ctx, seen)
		if err != nil {
			logger.Warn("Failed to mark chat %s read for %s: %v", chat.ID, userID, err)
		} else if marked {
			chat.IsLastMessageRead = true
		}
	}

	return chat, nil
}

func (uc *ChatUseCase) findOrCreate(ctx context.Context, userID, listingID string) (*entity.Chat, error) {
	if strings.TrimSpace(listingID) == "" {
		return nil, errors.BadRequest("Listing ID or chat ID is required", nil)
	}

	listing, err := uc.store.Listings().GetByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing.OwnerID == userID {
		return nil, errors.BadRequest("You cannot start a chat about your own listing", nil)
	}

	chat, err := uc.store.Chats().FindByParticipants(ctx, listingID, userID, listing.OwnerID)
	if err == nil {
		return chat, nil
	}
	if !errors.Is(err, "NOT_FOUND") {
		return nil, err
	}

	// Concurrent first contacts race here; the unique key keeps one row and
	// the re-read returns it to every caller
	err = uc.store.Chats().CreateIfAbsent(ctx, &entity.Chat{
		ID:          uuid.New().String(),
		ListingID:   listingID,
		ChatUserID:  userID,
		OwnerUserID: listing.OwnerID,
	})
	if err != nil {
		return nil, err
	}

	return uc.store.Chats().FindByParticipants(ctx, listingID, userID, listing.OwnerID)
}

func (uc *ChatUseCase) ListUserChats(ctx context.Context, userID string) ([]*entity.Chat, error) {
	chats, err := uc.store.Chats().ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	h := newHydrator(uc.store)
	for _, chat := range chats {
		if err := h.hydrate(ctx, chat); err != nil {
			return nil, err
		}
	}
	return chats, nil
}

func (uc *ChatUseCase) SendMessage(ctx context.Context, userID, chatID, text string) (*entity.Message, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.BadRequest("Message cannot be empty", nil)
	}
	if strings.TrimSpace(chatID) == "" {
		return nil, errors.BadRequest("Chat ID is required", nil)
	}

	if uc.limiter != nil {
		if allowed, wait := uc.limiter.Allow(userID, sendMessageAction); !allowed {
			return nil, errors.TooManyRequests(fmt.Sprintf("Too many messages, try again in %s", wait.Round(time.Second)))
		}
	}

	chat, err := uc.store.Chats().GetByID(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if !chat.IsParticipant(userID) {
		return nil, errors.Forbidden("You are not a participant of this chat", nil)
	}

	message := &entity.Message{
		ChatID:   chatID,
		SenderID: userID,
		Message:  text,
	}

	err = uc.store.WithTx(ctx, func(ctx context.Context, tx repository.Store) error {
		if err := tx.Chats().CreateMessage(ctx, message); err != nil {
			return err
		}
		return tx.Chats().UpdateLastMessage(ctx, message)
	})
	if err != nil {
		return nil, err
	}

	return message, nil
}

func lastMessage(messages []*entity.Message) *entity.Message {
	if len(messages) == 0 {
		return nil
	}
	return messages[len(messages)-1]
}

// hydrator attaches listing and participant profiles to chats, reading each
// record at most once per request.
type hydrator struct {
	store    repository.Store
	listings map[string]*entity.Listing
	users    map[string]*entity.UserProfile
}

func newHydrator(store repository.Store) *hydrator {
	return &hydrator{
		store:    store,
		listings: make(map[string]*entity.Listing),
		users:    make(map[string]*entity.UserProfile),
	}
}

func (h *hydrator) hydrate(ctx context.Context, chat *entity.Chat) error {
	listing, ok := h.listings[chat.ListingID]
	if !ok {
		var err error
		listing, err = h.store.Listings().GetByID(ctx, chat.ListingID)
		if err != nil && !errors.Is(err, "NOT_FOUND") {
			return err
		}
		h.listings[chat.ListingID] = listing
	}
	chat.Listing = listing

	var err error
	if chat.ChatUser, err = h.profile(ctx, chat.ChatUserID); err != nil {
		return err
	}
	if chat.OwnerUser, err = h.profile(ctx, chat.OwnerUserID); err != nil {
		return err
	}
	return nil
}

func (h *hydrator) profile(ctx context.Context, userID string) (*entity.UserProfile, error) {
	if p, ok := h.users[userID]; ok {
		return p, nil
	}

	user, err := h.store.Users().GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, "NOT_FOUND") {
			h.users[userID] = nil
			return nil, nil
		}
		return nil, err
	}

	p := user.Profile()
	h.users[userID] = p
	return p, nil
}
