package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	ID        string          `json:"id"`
	Email     string          `json:"email"`
	Name      string          `json:"name"`
	Image     string          `json:"image,omitempty"`
	Earned    decimal.Decimal `json:"earned"`
	Withdrawn decimal.Decimal `json:"withdrawn"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// UserProfile is the public part of a user attached to listings and chats.
type UserProfile struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"-"`
	Image string `json:"image,omitempty"`
}

type Balance struct {
	Earned    decimal.Decimal `json:"earned"`
	Withdrawn decimal.Decimal `json:"withdrawn"`
	Available decimal.Decimal `json:"available"`
}

func (u *User) Balance() Balance {
	return Balance{
		Earned:    u.Earned,
		Withdrawn: u.Withdrawn,
		Available: u.Earned.Sub(u.Withdrawn),
	}
}

func (u *User) Profile() *UserProfile {
	return &UserProfile{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Image: u.Image,
	}
}
