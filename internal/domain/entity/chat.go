package entity

import "time"

type Chat struct {
	ID                  string    `json:"id"`
	ListingID           string    `json:"listing_id"`
	ChatUserID          string    `json:"chat_user_id"`
	OwnerUserID         string    `json:"owner_user_id"`
	IsLastMessageRead   bool      `json:"is_last_message_read"`
	LastMessage         string    `json:"last_message,omitempty"`
	LastMessageSenderID string    `json:"last_message_sender_id,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`

	Listing   *Listing     `json:"listing,omitempty"`
	ChatUser  *UserProfile `json:"chat_user,omitempty"`
	OwnerUser *UserProfile `json:"owner_user,omitempty"`
	Messages  []*Message   `json:"messages,omitempty"`
}

func (c *Chat) IsParticipant(userID string) bool {
	return userID != "" && (c.ChatUserID == userID || c.OwnerUserID == userID)
}

// NeedsReadReceipt reports whether opening the chat as userID should mark the
// last message read: it is unread and was sent by the other participant.
func (c *Chat) NeedsReadReceipt(userID string) bool {
	return !c.IsLastMessageRead && c.LastMessageSenderID != "" && c.LastMessageSenderID != userID
}
