package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/socialape/screams-backend/internal/apierror"
	"github.com/socialape/screams-backend/internal/models"
	"github.com/socialape/screams-backend/internal/repositories"
	"github.com/socialape/screams-backend/pkg/firebase"
)

// AuthProvider creates accounts and exchanges credentials for tokens.
type AuthProvider interface {
	CreateUser(ctx context.Context, email, password string) (string, error)
	SignIn(ctx context.Context, email, password string) (string, error)
}

// AuthHandler handles registration and login
type AuthHandler struct {
	userRepo        repositories.UserRepository
	auth            AuthProvider
	defaultImageURL string
	logger          *slog.Logger
	now             func() time.Time
}

// NewAuthHandler creates a new AuthHandler. defaultImageURL is the
// placeholder profile image assigned to fresh accounts.
func NewAuthHandler(userRepo repositories.UserRepository, auth AuthProvider, defaultImageURL string, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		userRepo:        userRepo,
		auth:            auth,
		defaultImageURL: defaultImageURL,
		logger:          logger,
		now:             time.Now,
	}
}

// RegisterAuthRoutes registers authentication-related routes
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group) {
	g.POST("/register", h.Register)
	g.POST("/login", h.Login)
}

// Register creates an auth account and the matching user document, keyed
// by handle, and returns a fresh ID token.
func (h *AuthHandler) Register(c echo.Context) error {
	ctx := c.Request().Context()

	var req models.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return apierror.Validation([]string{"invalid request payload"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	// The handle doubles as the user document id, so an existing document
	// means the handle is taken.
	_, err := h.userRepo.GetByHandle(ctx, req.Handle)
	switch {
	case err == nil:
		return apierror.ErrHandleTaken
	case !errors.Is(err, repositories.ErrNotFound):
		h.logger.Error("failed to check handle", "handle", req.Handle, "error", err)
		return apierror.Internal(err)
	}

	uid, err := h.auth.CreateUser(ctx, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, firebase.ErrEmailInUse):
			return apierror.ErrEmailInUse
		case errors.Is(err, firebase.ErrWeakPassword):
			return apierror.ErrWeakPassword
		}
		h.logger.Error("failed to create auth user", "handle", req.Handle, "error", err)
		return apierror.Internal(err)
	}

	token, err := h.auth.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		h.logger.Error("failed to sign in new user", "handle", req.Handle, "error", err)
		return apierror.Internal(err)
	}

	user := &models.User{
		UserID:    uid,
		Email:     req.Email,
		Handle:    req.Handle,
		CreatedAt: h.now().UTC().Format(time.RFC3339),
		ImageURL:  h.defaultImageURL,
	}
	if err := h.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return apierror.ErrHandleTaken
		}
		h.logger.Error("failed to insert user document", "handle", req.Handle, "error", err)
		return apierror.Internal(err)
	}

	return c.JSON(http.StatusCreated, map[string]string{"token": token})
}

// Login exchanges email/password credentials for an ID token.
func (h *AuthHandler) Login(c echo.Context) error {
	ctx := c.Request().Context()

	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return apierror.Validation([]string{"invalid request payload"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	token, err := h.auth.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, firebase.ErrUserNotFound):
			return apierror.ErrUserNotFound
		case errors.Is(err, firebase.ErrWrongCredentials):
			return apierror.ErrWrongCredentials
		}
		h.logger.Error("login failed", "error", err)
		return apierror.Internal(err)
	}

	return c.JSON(http.StatusOK, map[string]string{"token": token})
}
