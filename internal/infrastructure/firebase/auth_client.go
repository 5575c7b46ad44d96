package firebase

import (
	"context"

	"flipearn/internal/domain/entity"

	"firebase.google.com/go/v4/auth"
)

// Custom claims set on a user by the billing backend and by operators.
const (
	claimPlan  = "plan"
	claimAdmin = "admin"
)

type tokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

type FirebaseAuthClient struct {
	client tokenVerifier
}

func NewFirebaseAuthClient(client *auth.Client) *FirebaseAuthClient {
	return &FirebaseAuthClient{
		client: client,
	}
}

// VerifyIdentity checks a Firebase ID token and resolves the caller's identity
// and subscription tier from its claims.
func (f *FirebaseAuthClient) VerifyIdentity(ctx context.Context, idToken string) (*entity.AuthContext, error) {
	token, err := f.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, err
	}

	identity := IdentityFromClaims(token.UID, token.Claims)
	return &identity, nil
}

func IdentityFromClaims(uid string, claims map[string]interface{}) entity.AuthContext {
	identity := entity.AuthContext{
		UserID:  uid,
		Email:   stringClaim(claims, "email"),
		Name:    stringClaim(claims, "name"),
		Picture: stringClaim(claims, "picture"),
		Tier:    entity.TierFree,
	}

	if stringClaim(claims, claimPlan) == string(entity.TierPremium) {
		identity.Tier = entity.TierPremium
	}
	if admin, ok := claims[claimAdmin].(bool); ok {
		identity.IsAdmin = admin
	}

	return identity
}

func stringClaim(claims map[string]interface{}, key string) string {
	v, _ := claims[key].(string)
	return v
}
