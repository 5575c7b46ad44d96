package entity

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Listing struct {
	ID             string          `json:"id"`
	OwnerID        string          `json:"owner_id"`
	Title          string          `json:"title"`
	Platform       string          `json:"platform"`
	Username       string          `json:"username"`
	Niche          string          `json:"niche"`
	FollowersCount float64         `json:"followers_count"`
	EngagementRate float64         `json:"engagement_rate"`
	MonthlyViews   float64         `json:"monthly_views"`
	Price          decimal.Decimal `json:"price"`
	Description    string          `json:"description"`
	Verified       bool            `json:"verified"`
	Monetized      bool            `json:"monetized"`
	Country        string          `json:"country"`
	AgeRange       string          `json:"age_range"`
	Images         []string        `json:"images"`
	Status         ListingStatus   `json:"status"`
	Featured       bool            `json:"featured"`

	IsCredentialSubmitted bool `json:"is_credential_submitted"`
	IsCredentialChanged   bool `json:"is_credential_changed"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Owner *UserProfile `json:"owner,omitempty"`
}

// ListingDetails carries the owner-editable fields of a listing after parsing.
type ListingDetails struct {
	Title          string
	Platform       string
	Username       string
	Niche          string
	FollowersCount float64
	EngagementRate float64
	MonthlyViews   float64
	Price          decimal.Decimal
	Description    string
	Verified       bool
	Monetized      bool
	Country        string
	AgeRange       string
}

// Apply copies normalized details onto the listing.
func (l *Listing) Apply(d ListingDetails) {
	l.Title = strings.TrimSpace(d.Title)
	l.Platform = NormalizeTag(d.Platform)
	l.Username = NormalizeUsername(d.Username)
	l.Niche = NormalizeTag(d.Niche)
	l.FollowersCount = d.FollowersCount
	l.EngagementRate = d.EngagementRate
	l.MonthlyViews = d.MonthlyViews
	l.Price = d.Price
	l.Description = d.Description
	l.Verified = d.Verified
	l.Monetized = d.Monetized
	l.Country = d.Country
	l.AgeRange = d.AgeRange
}

// RetainImages returns the submitted URLs that already belong to the listing,
// in submission order and without duplicates.
func (l *Listing) RetainImages(submitted []string) []string {
	known := make(map[string]bool, len(l.Images))
	for _, img := range l.Images {
		known[img] = true
	}

	retained := make([]string, 0, len(submitted))
	for _, img := range submitted {
		if known[img] {
			retained = append(retained, img)
			delete(known, img)
		}
	}
	return retained
}

// NormalizeUsername trims whitespace and strips a single leading "@".
func NormalizeUsername(username string) string {
	return strings.TrimPrefix(strings.TrimSpace(username), "@")
}

func NormalizeTag(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
