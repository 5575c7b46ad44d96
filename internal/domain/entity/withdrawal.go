package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

type Withdrawal struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	Amount    decimal.Decimal `json:"amount"`
	Account   string          `json:"account"`
	CreatedAt time.Time       `json:"created_at"`
}
