package auth

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	"github.com/ikbal-mondal/krishi-setu-BackEnd/internal/crop/domain"
	"google.golang.org/api/option"
)

// idTokenVerifier is the subset of *auth.Client we need.
type idTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*fbauth.Token, error)
}

// FirebaseVerifier checks Firebase ID tokens.
type FirebaseVerifier struct {
	client idTokenVerifier
}

// NewFirebaseVerifier initializes a Firebase app from service account JSON.
func NewFirebaseVerifier(ctx context.Context, credentialsJSON []byte) (*FirebaseVerifier, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsJSON(credentialsJSON))
	if err != nil {
		return nil, fmt.Errorf("firebase app init: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase auth client: %w", err)
	}
	return &FirebaseVerifier{client: client}, nil
}

func (v *FirebaseVerifier) Verify(ctx context.Context, token string) (*domain.Principal, error) {
	decoded, err := v.client.VerifyIDToken(ctx, token)
	if err != nil {
		return nil, err
	}
	return principalFromFirebase(decoded), nil
}

// principalFromFirebase falls back to the sign-in provider when the token has no display name.
func principalFromFirebase(t *fbauth.Token) *domain.Principal {
	email, _ := t.Claims["email"].(string)
	name, _ := t.Claims["name"].(string)
	if name == "" {
		name = t.Firebase.SignInProvider
	}
	return &domain.Principal{UserID: t.UID, Email: email, Name: name}
}
