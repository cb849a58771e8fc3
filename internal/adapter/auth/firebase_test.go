package auth

import (
	"context"
	"errors"
	"testing"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIDTokenVerifier struct {
	token *fbauth.Token
	err   error
}

func (f fakeIDTokenVerifier) VerifyIDToken(context.Context, string) (*fbauth.Token, error) {
	return f.token, f.err
}

func TestFirebaseVerifier_MapsClaims(t *testing.T) {
	v := &FirebaseVerifier{client: fakeIDTokenVerifier{token: &fbauth.Token{
		UID:    "uid-1",
		Claims: map[string]interface{}{"email": "seller@example.com", "name": "Seller"},
	}}}

	p, err := v.Verify(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, "uid-1", p.UserID)
	assert.Equal(t, "seller@example.com", p.Email)
	assert.Equal(t, "Seller", p.Name)
}

func TestFirebaseVerifier_NameFallsBackToProvider(t *testing.T) {
	v := &FirebaseVerifier{client: fakeIDTokenVerifier{token: &fbauth.Token{
		UID:      "uid-2",
		Claims:   map[string]interface{}{"email": "b@example.com"},
		Firebase: fbauth.FirebaseInfo{SignInProvider: "google.com"},
	}}}

	p, err := v.Verify(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, "google.com", p.Name)
}

func TestFirebaseVerifier_PropagatesError(t *testing.T) {
	v := &FirebaseVerifier{client: fakeIDTokenVerifier{err: errors.New("expired")}}
	_, err := v.Verify(context.Background(), "tok")
	assert.Error(t, err)
}
