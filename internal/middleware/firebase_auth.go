package middleware

import (
	"context"
	"errors"
	"net/http"

	"firebase.google.com/go/v4/auth"
	"github.com/anonto42/kratos-hub/backend/internal/models"
	"github.com/anonto42/kratos-hub/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// TokenVerifier verifies Firebase ID tokens; *auth.Client implements it
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// FirebaseUserLookup resolves a Firebase UID to a local user
type FirebaseUserLookup interface {
	GetUserByFirebaseUID(ctx context.Context, firebaseUID string) (*models.User, error)
}

// FirebaseAuthMiddleware verifies Firebase ID tokens and maps the Firebase UID
// to the local user ID.
func FirebaseAuthMiddleware(verifier TokenVerifier, users FirebaseUserLookup) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			idToken, err := bearerToken(c)
			if err != nil {
				return err
			}

			ctx := c.Request().Context()
			token, err := verifier.VerifyIDToken(ctx, idToken)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired ID token")
			}

			user, err := users.GetUserByFirebaseUID(ctx, token.UID)
			if err != nil {
				if errors.Is(err, repositories.ErrUserNotFound) {
					return echo.NewHTTPError(http.StatusUnauthorized, "No account is linked to this Firebase user")
				}
				return err
			}

			c.Set("firebaseUID", token.UID)
			c.Set(ContextUserID, user.ID)
			return next(c)
		}
	}
}
