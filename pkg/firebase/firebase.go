// Package firebase builds the admin SDK auth client that verifies ID tokens
// when the server runs with AUTH_MODE=firebase.
package firebase

import (
	"context"
	"errors"
	"fmt"
	"os"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"
)

// ErrNoCredentials is returned when no service account file is configured.
var ErrNoCredentials = errors.New("firebase credentials path not provided")

// NewAuthClient loads the service account at credentialsPath and returns the
// auth client used as the request token verifier.
func NewAuthClient(ctx context.Context, credentialsPath string, log logrus.FieldLogger) (*auth.Client, error) {
	if credentialsPath == "" {
		return nil, ErrNoCredentials
	}
	entry := log.WithField("credentials_path", credentialsPath)

	if _, err := os.Stat(credentialsPath); err != nil {
		return nil, fmt.Errorf("read firebase credentials: %w", err)
	}

	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsPath))
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("init firebase auth client: %w", err)
	}

	entry.Info("Firebase auth client ready")
	return client, nil
}
