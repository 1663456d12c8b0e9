package middleware

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/socialape/screams-backend/internal/apierror"
	"github.com/socialape/screams-backend/internal/repositories"
)

// Context keys set by the authorization middleware.
const (
	ContextUserID     = "userId"
	ContextUserHandle = "userHandle"
	ContextUserImage  = "userImage"
)

// TokenVerifier checks a bearer ID token and returns the auth user id.
type TokenVerifier interface {
	Verify(ctx context.Context, idToken string) (string, error)
}

// Authorization creates an Echo middleware that verifies the bearer token
// and resolves the caller's user document, stashing the handle and image
// URL in the request context.
func Authorization(verifier TokenVerifier, userRepo repositories.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return apierror.ErrNoToken
			}

			idToken := authHeader
			if parts := strings.SplitN(authHeader, " ", 2); len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
				idToken = parts[1]
			}

			uid, err := verifier.Verify(c.Request().Context(), idToken)
			if err != nil {
				return apierror.ErrTokenVerifyFailure
			}

			user, err := userRepo.GetByUserID(c.Request().Context(), uid)
			if err != nil {
				return apierror.ErrTokenVerifyFailure
			}

			c.Set(ContextUserID, user.UserID)
			c.Set(ContextUserHandle, user.Handle)
			c.Set(ContextUserImage, user.ImageURL)

			return next(c)
		}
	}
}
