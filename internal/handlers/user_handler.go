package handlers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/socialape/screams-backend/internal/apierror"
	"github.com/socialape/screams-backend/internal/middleware"
	"github.com/socialape/screams-backend/internal/models"
	"github.com/socialape/screams-backend/internal/repositories"
)

// maxImageSize caps profile image uploads at 1 MiB.
const maxImageSize = 1 << 20

// ImageStore uploads an image and returns its public URL.
type ImageStore interface {
	UploadImage(ctx context.Context, fileName, contentType string, r io.Reader) (string, error)
}

// UserHandler handles HTTP requests related to user profiles and
// notifications
type UserHandler struct {
	userRepo         repositories.UserRepository
	screamRepo       repositories.ScreamRepository
	likeRepo         repositories.LikeRepository
	notificationRepo repositories.NotificationRepository
	images           ImageStore
	logger           *slog.Logger
}

// recentNotificationLimit caps the notifications returned for the
// logged-in user.
const recentNotificationLimit = 10

// NewUserHandler creates a new UserHandler
func NewUserHandler(
	userRepo repositories.UserRepository,
	screamRepo repositories.ScreamRepository,
	likeRepo repositories.LikeRepository,
	notificationRepo repositories.NotificationRepository,
	images ImageStore,
	logger *slog.Logger,
) *UserHandler {
	return &UserHandler{
		userRepo:         userRepo,
		screamRepo:       screamRepo,
		likeRepo:         likeRepo,
		notificationRepo: notificationRepo,
		images:           images,
		logger:           logger,
	}
}

// RegisterPublicRoutes registers the unauthenticated user routes
func (h *UserHandler) RegisterPublicRoutes(g *echo.Group) {
	g.GET("/users/handle/:handle", h.GetUser)
}

// RegisterProtectedRoutes registers the user routes requiring auth
func (h *UserHandler) RegisterProtectedRoutes(g *echo.Group) {
	g.GET("/users/logged-in-user", h.GetLoggedInUser)
	g.POST("/users/image", h.UploadImage)
	g.PUT("/users/details", h.UpdateDetails)
	g.PATCH("/users/mark-notifications-read", h.MarkNotificationsRead)
}

// GetUser returns any user's public profile along with their screams.
func (h *UserHandler) GetUser(c echo.Context) error {
	ctx := c.Request().Context()
	handle := c.Param("handle")

	user, err := h.userRepo.GetByHandle(ctx, handle)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apierror.ErrUserNotFound
		}
		h.logger.Error("failed to load user", "handle", handle, "error", err)
		return apierror.Internal(err)
	}

	screams, err := h.screamRepo.GetByUserHandle(ctx, handle)
	if err != nil {
		h.logger.Error("failed to list user screams", "handle", handle, "error", err)
		return apierror.Internal(err)
	}

	return c.JSON(http.StatusOK, models.UserData{User: *user, Screams: screams})
}

// GetLoggedInUser returns the caller's credentials, likes, and most recent
// notifications.
func (h *UserHandler) GetLoggedInUser(c echo.Context) error {
	ctx := c.Request().Context()
	handle := c.Get(middleware.ContextUserHandle).(string)

	user, err := h.userRepo.GetByHandle(ctx, handle)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apierror.ErrUserNotFound
		}
		h.logger.Error("failed to load user", "handle", handle, "error", err)
		return apierror.Internal(err)
	}

	likes, err := h.likeRepo.GetByUserHandle(ctx, handle)
	if err != nil {
		h.logger.Error("failed to list likes", "handle", handle, "error", err)
		return apierror.Internal(err)
	}

	notifications, err := h.notificationRepo.GetRecentByRecipient(ctx, handle, recentNotificationLimit)
	if err != nil {
		h.logger.Error("failed to list notifications", "handle", handle, "error", err)
		return apierror.Internal(err)
	}

	return c.JSON(http.StatusOK, models.AuthenticatedUserData{
		Credentials:   *user,
		Likes:         likes,
		Notifications: notifications,
	})
}

// UpdateDetails merges bio/website/location into the caller's profile.
// At least one field must be present.
func (h *UserHandler) UpdateDetails(c echo.Context) error {
	ctx := c.Request().Context()
	handle := c.Get(middleware.ContextUserHandle).(string)

	var req models.UserDetailsRequest
	if err := c.Bind(&req); err != nil {
		return apierror.Validation([]string{"invalid request payload"})
	}
	if req.Empty() {
		return apierror.ErrNoUserDetails
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.userRepo.UpdateDetails(ctx, handle, req); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apierror.ErrUserNotFound
		}
		h.logger.Error("failed to update user details", "handle", handle, "error", err)
		return apierror.Internal(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "User details updated"})
}

// MarkNotificationsRead flips every unread notification for the caller to
// read, reporting distinctly when there was nothing to do.
func (h *UserHandler) MarkNotificationsRead(c echo.Context) error {
	ctx := c.Request().Context()
	handle := c.Get(middleware.ContextUserHandle).(string)

	updated, err := h.notificationRepo.MarkAllRead(ctx, handle)
	if err != nil {
		h.logger.Error("failed to mark notifications read", "handle", handle, "error", err)
		return apierror.Internal(err)
	}
	if updated == 0 {
		return c.JSON(http.StatusOK, map[string]string{"message": "All notifications already read."})
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Notifications marked as read."})
}

// UploadImage stores a new profile image (JPEG or PNG, at most 1 MiB),
// points the user document at the tokened URL, and propagates the new URL
// to the denormalized copies on the user's screams and comments.
func (h *UserHandler) UploadImage(c echo.Context) error {
	ctx := c.Request().Context()
	handle := c.Get(middleware.ContextUserHandle).(string)

	contentType := c.Request().Header.Get(echo.HeaderContentType)
	if !strings.Contains(contentType, "multipart/form-data") {
		return apierror.ErrIncorrectContentType
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		return apierror.ErrIncorrectContentType
	}
	if fileHeader.Size > maxImageSize {
		return apierror.ErrImageTooLarge
	}

	var ext string
	switch fileHeader.Header.Get("Content-Type") {
	case "image/jpeg":
		ext = "jpg"
	case "image/png":
		ext = "png"
	default:
		return apierror.ErrWrongFileType
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.logger.Error("failed to open uploaded image", "handle", handle, "error", err)
		return apierror.Internal(err)
	}
	defer file.Close()

	fileName := uuid.NewString() + "." + ext
	imageURL, err := h.images.UploadImage(ctx, fileName, fileHeader.Header.Get("Content-Type"), file)
	if err != nil {
		h.logger.Error("failed to upload image", "handle", handle, "error", err)
		return apierror.Internal(err)
	}

	if err := h.userRepo.UpdateImage(ctx, handle, imageURL); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apierror.ErrUserNotFound
		}
		h.logger.Error("failed to store image url", "handle", handle, "error", err)
		return apierror.Internal(err)
	}

	// Repair the denormalized userImage copies. The profile already points
	// at the new image; a propagation failure only leaves stale copies.
	if err := h.userRepo.PropagateImage(ctx, handle, imageURL); err != nil {
		h.logger.Error("failed to propagate image url", "handle", handle, "error", err)
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Image uploaded"})
}
