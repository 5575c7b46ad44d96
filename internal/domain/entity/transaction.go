package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

type Transaction struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	ListingID string          `json:"listing_id"`
	Amount    decimal.Decimal `json:"amount"`
	IsPaid    bool            `json:"is_paid"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Order is a paid transaction together with the purchased listing and its escrowed credential.
type Order struct {
	Transaction
	Listing    *Listing    `json:"listing"`
	Credential *Credential `json:"credential"`
}
