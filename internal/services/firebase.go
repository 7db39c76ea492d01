package services

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

// InitFirebase builds the admin auth client the session middleware uses to
// verify tokens on the /api routes. Webhook intake does not depend on it,
// so the server treats a failed init as a degraded start, not a fatal one.
func InitFirebase(credPath string) (*auth.Client, error) {
	ctx := context.Background()
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credPath))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}
	return app.Auth(ctx)
}
