package firebase

import (
	"context"

	"firebase.google.com/go/v4/auth"
)

// AuthClient wraps the Firebase Auth SDK. The core treats identity as a
// given, read-only context: it only ever verifies tokens and resolves the
// opaque uid.
type AuthClient struct {
	client *auth.Client
}

func NewAuthClient(client *auth.Client) *AuthClient {
	return &AuthClient{
		client: client,
	}
}

func (f *AuthClient) VerifyToken(ctx context.Context, token string) (string, error) {
	result, err := f.client.VerifyIDToken(ctx, token)
	if err != nil {
		return "", err
	}

	return result.UID, nil
}

func (f *AuthClient) TestConnection(ctx context.Context) error {
	// Listing a single user exercises credentials without side effects.
	iter := f.client.Users(ctx, "")
	_, err := iter.Next()
	if err != nil && err.Error() != "no more items in iterator" {
		return err
	}
	return nil
}
