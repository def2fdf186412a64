package attestation

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/appcheck"
)

// Verifier checks an App Check token with the attestation service.
type Verifier interface {
	Verify(ctx context.Context, token string) error
}

// FirebaseConfig is the subset of Firebase project settings the Admin SDK
// needs to verify App Check tokens.
type FirebaseConfig struct {
	ProjectID     string
	StorageBucket string
}

// FirebaseVerifier verifies tokens with Firebase App Check.
type FirebaseVerifier struct {
	client *appcheck.Client
}

// NewFirebaseVerifier initialises the Firebase app and its App Check client.
func NewFirebaseVerifier(ctx context.Context, cfg FirebaseConfig) (*FirebaseVerifier, error) {
	app, err := firebase.NewApp(ctx, &firebase.Config{
		ProjectID:     cfg.ProjectID,
		StorageBucket: cfg.StorageBucket,
	})
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}
	client, err := app.AppCheck(ctx)
	if err != nil {
		return nil, fmt.Errorf("init app check client: %w", err)
	}
	return &FirebaseVerifier{client: client}, nil
}

// Verify returns nil when token is a valid, unexpired App Check token for
// this project.
func (v *FirebaseVerifier) Verify(ctx context.Context, token string) error {
	if _, err := v.client.VerifyToken(token); err != nil {
		return fmt.Errorf("verify app check token: %w", err)
	}
	return nil
}

// VerifierFunc adapts a function to the Verifier interface.
type VerifierFunc func(ctx context.Context, token string) error

func (f VerifierFunc) Verify(ctx context.Context, token string) error { return f(ctx, token) }
