package firebase

import (
	"context"
	"errors"
	"testing"

	"flipearn/internal/domain/entity"

	"firebase.google.com/go/v4/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeVerifier struct {
	token *auth.Token
	err   error
}

func (f fakeVerifier) VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error) {
	return f.token, f.err
}

func TestIdentityFromClaims(t *testing.T) {
	id := IdentityFromClaims("u1", map[string]interface{}{
		"email":   "alice@example.com",
		"name":    "Alice",
		"picture": "https://img/alice.png",
		"plan":    "premium",
		"admin":   true,
	})

	assert.Equal(t, "u1", id.UserID)
	assert.Equal(t, "alice@example.com", id.Email)
	assert.Equal(t, "Alice", id.Name)
	assert.Equal(t, entity.TierPremium, id.Tier)
	assert.True(t, id.IsAdmin)
}

func TestIdentityFromClaims_Defaults(t *testing.T) {
	id := IdentityFromClaims("u2", map[string]interface{}{"plan": "gold", "admin": "yes"})

	assert.Equal(t, entity.TierFree, id.Tier)
	assert.False(t, id.IsAdmin)
	assert.Empty(t, id.Email)

	assert.Equal(t, entity.TierFree, IdentityFromClaims("u3", nil).Tier)
}

func TestVerifyIdentity(t *testing.T) {
	client := &FirebaseAuthClient{client: fakeVerifier{token: &auth.Token{UID: "u1", Claims: map[string]interface{}{"plan": "premium"}}}}

	id, err := client.VerifyIdentity(context.Background(), "token")
	require.NoError(t, err)
	assert.Equal(t, "u1", id.UserID)
	assert.True(t, id.IsPremium())

	client = &FirebaseAuthClient{client: fakeVerifier{err: errors.New("expired")}}
	_, err = client.VerifyIdentity(context.Background(), "token")
	assert.Error(t, err)
}
