package repositories

import (
	"context"
	"sort"
	"sync"

	"github.com/socialape/screams-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Memory is an in-process document store shared by the in-memory
// repository implementations. It backs tests and local development; a
// single mutex stands in for the store's batch atomicity.
type Memory struct {
	mu            sync.Mutex
	users         map[string]models.User
	screams       map[string]models.Scream
	comments      map[string]models.Comment
	likes         map[string]models.Like
	notifications map[string]models.Notification
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		users:         make(map[string]models.User),
		screams:       make(map[string]models.Scream),
		comments:      make(map[string]models.Comment),
		likes:         make(map[string]models.Like),
		notifications: make(map[string]models.Notification),
	}
}

func newID() string {
	return primitive.NewObjectID().Hex()
}

// MemoryScreamRepository implements ScreamRepository in memory
type MemoryScreamRepository struct {
	m *Memory
}

// NewMemoryScreamRepository creates a scream repository over the store.
func NewMemoryScreamRepository(m *Memory) *MemoryScreamRepository {
	return &MemoryScreamRepository{m: m}
}

func (r *MemoryScreamRepository) Create(_ context.Context, scream *models.Scream) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	scream.ID = newID()
	r.m.screams[scream.ID] = *scream
	return nil
}

func (r *MemoryScreamRepository) GetByID(_ context.Context, id string) (*models.Scream, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	scream, ok := r.m.screams[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &scream, nil
}

func (r *MemoryScreamRepository) GetAll(_ context.Context) ([]models.Scream, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	screams := make([]models.Scream, 0, len(r.m.screams))
	for _, scream := range r.m.screams {
		screams = append(screams, scream)
	}
	sortScreamsNewestFirst(screams)
	return screams, nil
}

func (r *MemoryScreamRepository) GetByUserHandle(_ context.Context, handle string) ([]models.Scream, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	screams := []models.Scream{}
	for _, scream := range r.m.screams {
		if scream.UserHandle == handle {
			screams = append(screams, scream)
		}
	}
	sortScreamsNewestFirst(screams)
	return screams, nil
}

func (r *MemoryScreamRepository) Delete(_ context.Context, id string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.screams[id]; !ok {
		return ErrNotFound
	}
	delete(r.m.screams, id)
	return nil
}

func (r *MemoryScreamRepository) DeleteDependents(_ context.Context, screamID string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for id, comment := range r.m.comments {
		if comment.ScreamID == screamID {
			delete(r.m.comments, id)
		}
	}
	for id, like := range r.m.likes {
		if like.ScreamID == screamID {
			delete(r.m.likes, id)
		}
	}
	for id, notification := range r.m.notifications {
		if notification.ScreamID == screamID {
			delete(r.m.notifications, id)
		}
	}
	return nil
}

func (r *MemoryScreamRepository) IncrementLikeCount(_ context.Context, id string, delta int) (*models.Scream, error) {
	return r.incrementCounter(id, delta, func(s *models.Scream, d int) { s.LikeCount += d })
}

func (r *MemoryScreamRepository) IncrementCommentCount(_ context.Context, id string, delta int) (*models.Scream, error) {
	return r.incrementCounter(id, delta, func(s *models.Scream, d int) { s.CommentCount += d })
}

func (r *MemoryScreamRepository) incrementCounter(id string, delta int, apply func(*models.Scream, int)) (*models.Scream, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	scream, ok := r.m.screams[id]
	if !ok {
		return nil, ErrNotFound
	}
	apply(&scream, delta)
	r.m.screams[id] = scream
	return &scream, nil
}

func sortScreamsNewestFirst(screams []models.Scream) {
	sort.SliceStable(screams, func(i, j int) bool {
		return screams[i].CreatedAt > screams[j].CreatedAt
	})
}

// MemoryLikeRepository implements LikeRepository in memory
type MemoryLikeRepository struct {
	m *Memory
}

// NewMemoryLikeRepository creates a like repository over the store.
func NewMemoryLikeRepository(m *Memory) *MemoryLikeRepository {
	return &MemoryLikeRepository{m: m}
}

func (r *MemoryLikeRepository) GetForUserAndScream(_ context.Context, screamID, handle string) (*models.Like, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, like := range r.m.likes {
		if like.ScreamID == screamID && like.UserHandle == handle {
			found := like
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryLikeRepository) Create(_ context.Context, like *models.Like) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	like.ID = newID()
	r.m.likes[like.ID] = *like
	return nil
}

func (r *MemoryLikeRepository) Delete(_ context.Context, id string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.likes[id]; !ok {
		return ErrNotFound
	}
	delete(r.m.likes, id)
	return nil
}

func (r *MemoryLikeRepository) GetByUserHandle(_ context.Context, handle string) ([]models.Like, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	likes := []models.Like{}
	for _, like := range r.m.likes {
		if like.UserHandle == handle {
			likes = append(likes, like)
		}
	}
	return likes, nil
}

// MemoryCommentRepository implements CommentRepository in memory
type MemoryCommentRepository struct {
	m *Memory
}

// NewMemoryCommentRepository creates a comment repository over the store.
func NewMemoryCommentRepository(m *Memory) *MemoryCommentRepository {
	return &MemoryCommentRepository{m: m}
}

func (r *MemoryCommentRepository) Create(_ context.Context, comment *models.Comment) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	comment.ID = newID()
	r.m.comments[comment.ID] = *comment
	return nil
}

func (r *MemoryCommentRepository) GetByScreamID(_ context.Context, screamID string) ([]models.Comment, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	comments := []models.Comment{}
	for _, comment := range r.m.comments {
		if comment.ScreamID == screamID {
			comments = append(comments, comment)
		}
	}
	sort.SliceStable(comments, func(i, j int) bool {
		return comments[i].CreatedAt > comments[j].CreatedAt
	})
	return comments, nil
}

// MemoryNotificationRepository implements NotificationRepository in memory
type MemoryNotificationRepository struct {
	m *Memory
}

// NewMemoryNotificationRepository creates a notification repository over
// the store.
func NewMemoryNotificationRepository(m *Memory) *MemoryNotificationRepository {
	return &MemoryNotificationRepository{m: m}
}

func (r *MemoryNotificationRepository) Set(_ context.Context, notification *models.Notification) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.notifications[notification.ID] = *notification
	return nil
}

func (r *MemoryNotificationRepository) Delete(_ context.Context, id string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	delete(r.m.notifications, id)
	return nil
}

func (r *MemoryNotificationRepository) GetRecentByRecipient(_ context.Context, recipient string, limit int) ([]models.Notification, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	notifications := []models.Notification{}
	for _, notification := range r.m.notifications {
		if notification.Recipient == recipient {
			notifications = append(notifications, notification)
		}
	}
	sort.SliceStable(notifications, func(i, j int) bool {
		return notifications[i].CreatedAt > notifications[j].CreatedAt
	})
	if len(notifications) > limit {
		notifications = notifications[:limit]
	}
	return notifications, nil
}

func (r *MemoryNotificationRepository) MarkAllRead(_ context.Context, recipient string) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var updated int64
	for id, notification := range r.m.notifications {
		if notification.Recipient == recipient && !notification.Read {
			notification.Read = true
			r.m.notifications[id] = notification
			updated++
		}
	}
	return updated, nil
}

// MemoryUserRepository implements UserRepository in memory
type MemoryUserRepository struct {
	m *Memory
}

// NewMemoryUserRepository creates a user repository over the store.
func NewMemoryUserRepository(m *Memory) *MemoryUserRepository {
	return &MemoryUserRepository{m: m}
}

func (r *MemoryUserRepository) Create(_ context.Context, user *models.User) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.users[user.Handle]; ok {
		return ErrDuplicate
	}
	r.m.users[user.Handle] = *user
	return nil
}

func (r *MemoryUserRepository) GetByHandle(_ context.Context, handle string) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	user, ok := r.m.users[handle]
	if !ok {
		return nil, ErrNotFound
	}
	return &user, nil
}

func (r *MemoryUserRepository) GetByUserID(_ context.Context, userID string) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, user := range r.m.users {
		if user.UserID == userID {
			found := user
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryUserRepository) UpdateDetails(_ context.Context, handle string, details models.UserDetailsRequest) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	user, ok := r.m.users[handle]
	if !ok {
		return ErrNotFound
	}
	if details.Bio != "" {
		user.Bio = details.Bio
	}
	if details.Website != "" {
		user.Website = details.Website
	}
	if details.Location != "" {
		user.Location = details.Location
	}
	r.m.users[handle] = user
	return nil
}

func (r *MemoryUserRepository) UpdateImage(_ context.Context, handle, imageURL string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	user, ok := r.m.users[handle]
	if !ok {
		return ErrNotFound
	}
	user.ImageURL = imageURL
	r.m.users[handle] = user
	return nil
}

func (r *MemoryUserRepository) PropagateImage(_ context.Context, handle, imageURL string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for id, scream := range r.m.screams {
		if scream.UserHandle == handle {
			scream.UserImage = imageURL
			r.m.screams[id] = scream
		}
	}
	for id, comment := range r.m.comments {
		if comment.UserHandle == handle {
			comment.UserImage = imageURL
			r.m.comments[id] = comment
		}
	}
	return nil
}
