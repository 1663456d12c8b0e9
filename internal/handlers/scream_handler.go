package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/socialape/screams-backend/internal/apierror"
	"github.com/socialape/screams-backend/internal/cache"
	"github.com/socialape/screams-backend/internal/middleware"
	"github.com/socialape/screams-backend/internal/models"
	"github.com/socialape/screams-backend/internal/notifier"
	"github.com/socialape/screams-backend/internal/repositories"
)

// FeedCache caches the full scream feed on the read side.
type FeedCache interface {
	GetFeed(ctx context.Context) ([]models.Scream, error)
	SetFeed(ctx context.Context, screams []models.Scream) error
	InvalidateFeed(ctx context.Context) error
}

// ScreamHandler handles HTTP requests related to screams
type ScreamHandler struct {
	screamRepo  repositories.ScreamRepository
	commentRepo repositories.CommentRepository
	likeRepo    repositories.LikeRepository
	notifier    *notifier.Notifier
	feedCache   FeedCache
	logger      *slog.Logger
	now         func() time.Time
}

// NewScreamHandler creates a new ScreamHandler. feedCache may be nil, in
// which case every feed read goes to the store.
func NewScreamHandler(
	screamRepo repositories.ScreamRepository,
	commentRepo repositories.CommentRepository,
	likeRepo repositories.LikeRepository,
	n *notifier.Notifier,
	feedCache FeedCache,
	logger *slog.Logger,
) *ScreamHandler {
	return &ScreamHandler{
		screamRepo:  screamRepo,
		commentRepo: commentRepo,
		likeRepo:    likeRepo,
		notifier:    n,
		feedCache:   feedCache,
		logger:      logger,
		now:         time.Now,
	}
}

// RegisterPublicRoutes registers the unauthenticated scream routes
func (h *ScreamHandler) RegisterPublicRoutes(g *echo.Group) {
	g.GET("/screams", h.GetScreams)
	g.GET("/screams/:screamId", h.GetScream)
}

// RegisterProtectedRoutes registers the scream routes requiring auth
func (h *ScreamHandler) RegisterProtectedRoutes(g *echo.Group) {
	g.POST("/screams", h.CreateScream)
	g.POST("/screams/:screamId/comment", h.CommentScream)
	g.POST("/screams/:screamId/like", h.LikeScream)
	g.DELETE("/screams/:screamId/unlike", h.UnlikeScream)
	g.DELETE("/screams/:screamId", h.DeleteScream)
}

// GetScreams returns every scream, newest first, via the feed cache when
// it is warm.
func (h *ScreamHandler) GetScreams(c echo.Context) error {
	ctx := c.Request().Context()

	if h.feedCache != nil {
		screams, err := h.feedCache.GetFeed(ctx)
		if err == nil {
			return c.JSON(http.StatusOK, screams)
		}
		if !errors.Is(err, cache.ErrMiss) {
			h.logger.Warn("feed cache read failed", "error", err)
		}
	}

	screams, err := h.screamRepo.GetAll(ctx)
	if err != nil {
		h.logger.Error("failed to list screams", "error", err)
		return apierror.Internal(err)
	}

	if h.feedCache != nil {
		if err := h.feedCache.SetFeed(ctx, screams); err != nil {
			h.logger.Warn("feed cache write failed", "error", err)
		}
	}
	return c.JSON(http.StatusOK, screams)
}

// GetScream returns a single scream with its comments, newest first.
func (h *ScreamHandler) GetScream(c echo.Context) error {
	ctx := c.Request().Context()
	screamID := c.Param("screamId")

	scream, err := h.getExistingScream(ctx, screamID)
	if err != nil {
		return err
	}

	comments, err := h.commentRepo.GetByScreamID(ctx, screamID)
	if err != nil {
		h.logger.Error("failed to list comments", "screamId", screamID, "error", err)
		return apierror.Internal(err)
	}

	return c.JSON(http.StatusOK, models.ScreamDetail{
		ScreamID:   scream.ID,
		UserHandle: scream.UserHandle,
		Body:       scream.Body,
		CreatedAt:  scream.CreatedAt,
		Comments:   comments,
	})
}

// CreateScream posts a new scream with both counters at zero.
func (h *ScreamHandler) CreateScream(c echo.Context) error {
	var req models.CreateScreamRequest
	if err := c.Bind(&req); err != nil {
		return apierror.Validation([]string{"invalid request payload"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	scream := &models.Scream{
		UserHandle:   c.Get(middleware.ContextUserHandle).(string),
		UserImage:    c.Get(middleware.ContextUserImage).(string),
		Body:         req.Body,
		CreatedAt:    h.now().UTC().Format(time.RFC3339),
		LikeCount:    0,
		CommentCount: 0,
	}
	if err := h.screamRepo.Create(c.Request().Context(), scream); err != nil {
		h.logger.Error("failed to create scream", "error", err)
		return apierror.Internal(err)
	}

	h.invalidateFeed(c.Request().Context())
	return c.JSON(http.StatusCreated, scream)
}

// CommentScream adds a comment to an existing scream and bumps its
// denormalized comment counter.
func (h *ScreamHandler) CommentScream(c echo.Context) error {
	ctx := c.Request().Context()
	screamID := c.Param("screamId")

	var req models.CreateCommentRequest
	if err := c.Bind(&req); err != nil {
		return apierror.Validation([]string{"invalid request payload"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	// Existence check must fail before any write happens.
	if _, err := h.getExistingScream(ctx, screamID); err != nil {
		return err
	}

	comment := &models.Comment{
		ScreamID:   screamID,
		UserHandle: c.Get(middleware.ContextUserHandle).(string),
		UserImage:  c.Get(middleware.ContextUserImage).(string),
		Body:       req.Body,
		CreatedAt:  h.now().UTC().Format(time.RFC3339),
	}
	if err := h.commentRepo.Create(ctx, comment); err != nil {
		h.logger.Error("failed to create comment", "screamId", screamID, "error", err)
		return apierror.Internal(err)
	}

	updated, err := h.screamRepo.IncrementCommentCount(ctx, screamID, 1)
	if err != nil {
		h.logger.Error("failed to increment comment count", "screamId", screamID, "error", err)
		return apierror.Internal(err)
	}

	h.notifier.OnComment(ctx, comment)
	h.invalidateFeed(ctx)

	return c.JSON(http.StatusCreated, models.CommentResponse{
		Comment:      *comment,
		CommentCount: updated.CommentCount,
		LikeCount:    updated.LikeCount,
	})
}

// LikeScream records a like and bumps the denormalized like counter. The
// no-existing-like precondition is a query-then-write sequence; two
// concurrent likes from the same user can race past it.
func (h *ScreamHandler) LikeScream(c echo.Context) error {
	ctx := c.Request().Context()
	screamID := c.Param("screamId")
	handle := c.Get(middleware.ContextUserHandle).(string)

	if _, err := h.getExistingScream(ctx, screamID); err != nil {
		return err
	}

	_, err := h.likeRepo.GetForUserAndScream(ctx, screamID, handle)
	switch {
	case err == nil:
		return apierror.ErrAlreadyLiked
	case !errors.Is(err, repositories.ErrNotFound):
		h.logger.Error("failed to look up like", "screamId", screamID, "error", err)
		return apierror.Internal(err)
	}

	like := &models.Like{ScreamID: screamID, UserHandle: handle}
	if err := h.likeRepo.Create(ctx, like); err != nil {
		h.logger.Error("failed to create like", "screamId", screamID, "error", err)
		return apierror.Internal(err)
	}

	updated, err := h.screamRepo.IncrementLikeCount(ctx, screamID, 1)
	if err != nil {
		h.logger.Error("failed to increment like count", "screamId", screamID, "error", err)
		return apierror.Internal(err)
	}

	h.notifier.OnLike(ctx, like)
	h.invalidateFeed(ctx)

	return c.JSON(http.StatusCreated, updated)
}

// UnlikeScream removes a like and decrements the counter. No floor is
// enforced on the counter.
func (h *ScreamHandler) UnlikeScream(c echo.Context) error {
	ctx := c.Request().Context()
	screamID := c.Param("screamId")
	handle := c.Get(middleware.ContextUserHandle).(string)

	if _, err := h.getExistingScream(ctx, screamID); err != nil {
		return err
	}

	like, err := h.likeRepo.GetForUserAndScream(ctx, screamID, handle)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apierror.ErrNotLiked
		}
		h.logger.Error("failed to look up like", "screamId", screamID, "error", err)
		return apierror.Internal(err)
	}

	if err := h.likeRepo.Delete(ctx, like.ID); err != nil {
		h.logger.Error("failed to delete like", "screamId", screamID, "error", err)
		return apierror.Internal(err)
	}

	updated, err := h.screamRepo.IncrementLikeCount(ctx, screamID, -1)
	if err != nil {
		h.logger.Error("failed to decrement like count", "screamId", screamID, "error", err)
		return apierror.Internal(err)
	}

	h.notifier.OnUnlike(ctx, like.ID)
	h.invalidateFeed(ctx)

	return c.JSON(http.StatusOK, updated)
}

// DeleteScream removes a scream (owner only) and cascades the deletion to
// every comment, like, and notification referencing it.
func (h *ScreamHandler) DeleteScream(c echo.Context) error {
	ctx := c.Request().Context()
	screamID := c.Param("screamId")
	handle := c.Get(middleware.ContextUserHandle).(string)

	scream, err := h.getExistingScream(ctx, screamID)
	if err != nil {
		return err
	}
	if scream.UserHandle != handle {
		return apierror.ErrUnauthorizedUser
	}

	if err := h.screamRepo.Delete(ctx, screamID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apierror.ErrScreamNotFound
		}
		h.logger.Error("failed to delete scream", "screamId", screamID, "error", err)
		return apierror.Internal(err)
	}

	// The scream is gone as soon as the delete above commits; the sweep of
	// dependent rows is a separate atomic batch.
	if err := h.screamRepo.DeleteDependents(ctx, screamID); err != nil {
		h.logger.Error("failed to cascade scream deletion", "screamId", screamID, "error", err)
	}

	h.invalidateFeed(ctx)
	return c.JSON(http.StatusOK, map[string]string{"message": "Scream deleted"})
}

func (h *ScreamHandler) getExistingScream(ctx context.Context, screamID string) (*models.Scream, error) {
	scream, err := h.screamRepo.GetByID(ctx, screamID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apierror.ErrScreamNotFound
		}
		h.logger.Error("failed to load scream", "screamId", screamID, "error", err)
		return nil, apierror.Internal(err)
	}
	return scream, nil
}

func (h *ScreamHandler) invalidateFeed(ctx context.Context) {
	if h.feedCache == nil {
		return
	}
	if err := h.feedCache.InvalidateFeed(ctx); err != nil {
		h.logger.Warn("feed cache invalidation failed", "error", err)
	}
}
