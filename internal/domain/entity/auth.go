package entity

type Tier string

const (
	TierFree    Tier = "free"
	TierPremium Tier = "premium"
)

// AuthContext is the identity resolved for an authenticated request.
type AuthContext struct {
	UserID  string
	Email   string
	Name    string
	Picture string
	Tier    Tier
	IsAdmin bool
}

func (a AuthContext) IsPremium() bool {
	return a.Tier == TierPremium
}
