package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/labstack/echo/v4"
	"github.com/neilotoole/slogt"

	"github.com/socialape/screams-backend/internal/apierror"
	"github.com/socialape/screams-backend/internal/cache"
	"github.com/socialape/screams-backend/internal/middleware"
	"github.com/socialape/screams-backend/internal/models"
	"github.com/socialape/screams-backend/internal/notifier"
	"github.com/socialape/screams-backend/internal/repositories"
	"github.com/socialape/screams-backend/validators"
)

type screamEnv struct {
	e                *echo.Echo
	handler          *ScreamHandler
	screamRepo       *repositories.MemoryScreamRepository
	commentRepo      *repositories.MemoryCommentRepository
	likeRepo         *repositories.MemoryLikeRepository
	notificationRepo *repositories.MemoryNotificationRepository
	clock            time.Time
}

func newScreamEnv(t *testing.T, feedCache FeedCache) *screamEnv {
	t.Helper()
	mem := repositories.NewMemory()
	screamRepo := repositories.NewMemoryScreamRepository(mem)
	commentRepo := repositories.NewMemoryCommentRepository(mem)
	likeRepo := repositories.NewMemoryLikeRepository(mem)
	notificationRepo := repositories.NewMemoryNotificationRepository(mem)

	logger := slogt.New(t)
	n := notifier.New(screamRepo, notificationRepo, logger)

	e := echo.New()
	e.Validator = validators.NewValidator()

	env := &screamEnv{
		e:                e,
		handler:          NewScreamHandler(screamRepo, commentRepo, likeRepo, n, feedCache, logger),
		screamRepo:       screamRepo,
		commentRepo:      commentRepo,
		likeRepo:         likeRepo,
		notificationRepo: notificationRepo,
		clock:            time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	env.handler.now = env.tick
	return env
}

// tick advances a fake clock so created documents get distinct timestamps.
func (env *screamEnv) tick() time.Time {
	env.clock = env.clock.Add(time.Second)
	return env.clock
}

func (env *screamEnv) newContext(method, path, body, handle string) (echo.Context, *httptest.ResponseRecorder) {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	c := env.e.NewContext(req, rec)
	if handle != "" {
		c.Set(middleware.ContextUserHandle, handle)
		c.Set(middleware.ContextUserImage, "https://img.example/"+handle+".png")
	}
	return c, rec
}

func (env *screamEnv) createScream(t *testing.T, handle, body string) models.Scream {
	t.Helper()
	c, rec := env.newContext(http.MethodPost, "/screams", `{"body":"`+body+`"}`, handle)
	if err := env.handler.CreateScream(c); err != nil {
		t.Fatalf("CreateScream returned error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("CreateScream status = %d, want 201", rec.Code)
	}
	var scream models.Scream
	if err := json.Unmarshal(rec.Body.Bytes(), &scream); err != nil {
		t.Fatalf("decode scream: %v", err)
	}
	return scream
}

func (env *screamEnv) like(t *testing.T, screamID, handle string) (*httptest.ResponseRecorder, error) {
	t.Helper()
	c, rec := env.newContext(http.MethodPost, "/screams/"+screamID+"/like", "", handle)
	c.SetParamNames("screamId")
	c.SetParamValues(screamID)
	return rec, env.handler.LikeScream(c)
}

func (env *screamEnv) unlike(t *testing.T, screamID, handle string) (*httptest.ResponseRecorder, error) {
	t.Helper()
	c, rec := env.newContext(http.MethodDelete, "/screams/"+screamID+"/unlike", "", handle)
	c.SetParamNames("screamId")
	c.SetParamValues(screamID)
	return rec, env.handler.UnlikeScream(c)
}

func (env *screamEnv) getScream(t *testing.T, ctx context.Context, screamID string) *models.Scream {
	t.Helper()
	scream, err := env.screamRepo.GetByID(ctx, screamID)
	if err != nil {
		t.Fatalf("GetByID(%q): %v", screamID, err)
	}
	return scream
}

func TestCreateScream_CountersStartAtZero(t *testing.T) {
	env := newScreamEnv(t, nil)
	scream := env.createScream(t, "alice", "hello world")

	if scream.LikeCount != 0 || scream.CommentCount != 0 {
		t.Errorf("new scream counters = (%d, %d), want (0, 0)", scream.LikeCount, scream.CommentCount)
	}
	if scream.ID == "" {
		t.Error("new scream has no id")
	}
	if scream.UserHandle != "alice" {
		t.Errorf("userHandle = %q, want alice", scream.UserHandle)
	}
}

func TestLikeScream(t *testing.T) {
	ctx := context.Background()
	env := newScreamEnv(t, nil)
	scream := env.createScream(t, "alice", "like me")

	rec, err := env.like(t, scream.ID, "bob")
	if err != nil {
		t.Fatalf("first like returned error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("first like status = %d, want 201", rec.Code)
	}

	if got := env.getScream(t, ctx, scream.ID).LikeCount; got != 1 {
		t.Errorf("likeCount after like = %d, want 1", got)
	}
	if _, err := env.likeRepo.GetForUserAndScream(ctx, scream.ID, "bob"); err != nil {
		t.Errorf("like row not found: %v", err)
	}

	// A notification lands with the scream's owner.
	notifications, err := env.notificationRepo.GetRecentByRecipient(ctx, "alice", 10)
	if err != nil {
		t.Fatalf("list notifications: %v", err)
	}
	if len(notifications) != 1 {
		t.Fatalf("got %d notifications, want 1", len(notifications))
	}
	got := notifications[0]
	want := models.Notification{
		ID:        got.ID,
		Recipient: "alice",
		Sender:    "bob",
		ScreamID:  scream.ID,
		Type:      models.NotificationTypeLike,
		Read:      false,
		CreatedAt: got.CreatedAt,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("notification mismatch (-want +got):\n%s", diff)
	}

	// Liking again must fail and leave the counter untouched.
	_, err = env.like(t, scream.ID, "bob")
	if !errors.Is(err, apierror.ErrAlreadyLiked) {
		t.Fatalf("second like error = %v, want ErrAlreadyLiked", err)
	}
	if got := env.getScream(t, ctx, scream.ID).LikeCount; got != 1 {
		t.Errorf("likeCount after duplicate like = %d, want 1", got)
	}
}

func TestLikeScream_NotFound(t *testing.T) {
	env := newScreamEnv(t, nil)
	_, err := env.like(t, "missing", "bob")
	if !errors.Is(err, apierror.ErrScreamNotFound) {
		t.Fatalf("like on missing scream error = %v, want ErrScreamNotFound", err)
	}
}

func TestUnlikeScream(t *testing.T) {
	ctx := context.Background()
	env := newScreamEnv(t, nil)
	scream := env.createScream(t, "alice", "unlike me")

	// Unliking before liking fails and leaves the counter untouched.
	_, err := env.unlike(t, scream.ID, "bob")
	if !errors.Is(err, apierror.ErrNotLiked) {
		t.Fatalf("unlike without like error = %v, want ErrNotLiked", err)
	}
	if got := env.getScream(t, ctx, scream.ID).LikeCount; got != 0 {
		t.Errorf("likeCount = %d, want 0", got)
	}

	if _, err := env.like(t, scream.ID, "bob"); err != nil {
		t.Fatalf("like: %v", err)
	}

	rec, err := env.unlike(t, scream.ID, "bob")
	if err != nil {
		t.Fatalf("unlike returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("unlike status = %d, want 200", rec.Code)
	}

	if got := env.getScream(t, ctx, scream.ID).LikeCount; got != 0 {
		t.Errorf("likeCount after unlike = %d, want 0", got)
	}
	if _, err := env.likeRepo.GetForUserAndScream(ctx, scream.ID, "bob"); !errors.Is(err, repositories.ErrNotFound) {
		t.Errorf("like row still present after unlike (err = %v)", err)
	}

	// The like's notification is retracted too.
	notifications, err := env.notificationRepo.GetRecentByRecipient(ctx, "alice", 10)
	if err != nil {
		t.Fatalf("list notifications: %v", err)
	}
	if len(notifications) != 0 {
		t.Errorf("got %d notifications after unlike, want 0", len(notifications))
	}
}

func TestCommentScream(t *testing.T) {
	ctx := context.Background()
	env := newScreamEnv(t, nil)
	scream := env.createScream(t, "alice", "comment on me")

	c, rec := env.newContext(http.MethodPost, "/screams/"+scream.ID+"/comment", `{"body":"nice one, mate!"}`, "bob")
	c.SetParamNames("screamId")
	c.SetParamValues(scream.ID)
	if err := env.handler.CommentScream(c); err != nil {
		t.Fatalf("CommentScream returned error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("comment status = %d, want 201", rec.Code)
	}

	var res models.CommentResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode comment response: %v", err)
	}
	if res.CommentCount != 1 {
		t.Errorf("commentCount = %d, want 1", res.CommentCount)
	}
	if res.LikeCount != 0 {
		t.Errorf("likeCount = %d, want 0", res.LikeCount)
	}

	if got := env.getScream(t, ctx, scream.ID).CommentCount; got != 1 {
		t.Errorf("stored commentCount = %d, want 1", got)
	}
	comments, err := env.commentRepo.GetByScreamID(ctx, scream.ID)
	if err != nil {
		t.Fatalf("list comments: %v", err)
	}
	if len(comments) != 1 || comments[0].Body != "nice one, mate!" {
		t.Errorf("stored comments = %+v, want one with the posted body", comments)
	}
}

func TestCommentScream_MissingScreamWritesNothing(t *testing.T) {
	ctx := context.Background()
	env := newScreamEnv(t, nil)

	c, _ := env.newContext(http.MethodPost, "/screams/missing/comment", `{"body":"hello"}`, "bob")
	c.SetParamNames("screamId")
	c.SetParamValues("missing")
	err := env.handler.CommentScream(c)
	if !errors.Is(err, apierror.ErrScreamNotFound) {
		t.Fatalf("comment on missing scream error = %v, want ErrScreamNotFound", err)
	}

	comments, err := env.commentRepo.GetByScreamID(ctx, "missing")
	if err != nil {
		t.Fatalf("list comments: %v", err)
	}
	if len(comments) != 0 {
		t.Errorf("comment was written despite missing scream: %+v", comments)
	}
}

func TestDeleteScream(t *testing.T) {
	ctx := context.Background()
	env := newScreamEnv(t, nil)
	scream := env.createScream(t, "alice", "delete me")

	// Build up dependents: two comments, a like, and the notifications
	// they derive.
	for _, body := range []string{"first", "second"} {
		c, _ := env.newContext(http.MethodPost, "/screams/"+scream.ID+"/comment", `{"body":"`+body+`"}`, "bob")
		c.SetParamNames("screamId")
		c.SetParamValues(scream.ID)
		if err := env.handler.CommentScream(c); err != nil {
			t.Fatalf("comment: %v", err)
		}
	}
	if _, err := env.like(t, scream.ID, "bob"); err != nil {
		t.Fatalf("like: %v", err)
	}

	// A non-owner may not delete.
	c, _ := env.newContext(http.MethodDelete, "/screams/"+scream.ID, "", "bob")
	c.SetParamNames("screamId")
	c.SetParamValues(scream.ID)
	if err := env.handler.DeleteScream(c); !errors.Is(err, apierror.ErrUnauthorizedUser) {
		t.Fatalf("non-owner delete error = %v, want ErrUnauthorizedUser", err)
	}

	// Owner delete cascades.
	c, rec := env.newContext(http.MethodDelete, "/screams/"+scream.ID, "", "alice")
	c.SetParamNames("screamId")
	c.SetParamValues(scream.ID)
	if err := env.handler.DeleteScream(c); err != nil {
		t.Fatalf("owner delete returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d, want 200", rec.Code)
	}

	if _, err := env.screamRepo.GetByID(ctx, scream.ID); !errors.Is(err, repositories.ErrNotFound) {
		t.Errorf("scream still present after delete (err = %v)", err)
	}
	comments, _ := env.commentRepo.GetByScreamID(ctx, scream.ID)
	if len(comments) != 0 {
		t.Errorf("%d comments still reference the deleted scream", len(comments))
	}
	if _, err := env.likeRepo.GetForUserAndScream(ctx, scream.ID, "bob"); !errors.Is(err, repositories.ErrNotFound) {
		t.Errorf("like still references the deleted scream (err = %v)", err)
	}
	notifications, _ := env.notificationRepo.GetRecentByRecipient(ctx, "alice", 10)
	for _, n := range notifications {
		if n.ScreamID == scream.ID {
			t.Errorf("notification %s still references the deleted scream", n.ID)
		}
	}
}

// The worked example: bob's like notifies alice; alice liking her own
// scream bumps the counter again but derives nothing.
func TestLikeScenario_AliceAndBob(t *testing.T) {
	ctx := context.Background()
	env := newScreamEnv(t, nil)
	scream := env.createScream(t, "alice", "a beautiful day")

	if _, err := env.like(t, scream.ID, "bob"); err != nil {
		t.Fatalf("bob's like: %v", err)
	}
	if got := env.getScream(t, ctx, scream.ID).LikeCount; got != 1 {
		t.Fatalf("likeCount after bob = %d, want 1", got)
	}

	if _, err := env.like(t, scream.ID, "alice"); err != nil {
		t.Fatalf("alice's like: %v", err)
	}
	if got := env.getScream(t, ctx, scream.ID).LikeCount; got != 2 {
		t.Errorf("likeCount after alice = %d, want 2", got)
	}

	notifications, err := env.notificationRepo.GetRecentByRecipient(ctx, "alice", 10)
	if err != nil {
		t.Fatalf("list notifications: %v", err)
	}
	if len(notifications) != 1 {
		t.Fatalf("got %d notifications, want 1 (self-like derives none)", len(notifications))
	}
	if notifications[0].Sender != "bob" || notifications[0].Type != models.NotificationTypeLike {
		t.Errorf("notification = %+v, want like from bob", notifications[0])
	}
}

func TestGetScreams_OrderedNewestFirst(t *testing.T) {
	env := newScreamEnv(t, nil)
	env.createScream(t, "alice", "oldest")
	env.createScream(t, "bob", "middle")
	env.createScream(t, "alice", "newest")

	c, rec := env.newContext(http.MethodGet, "/screams", "", "")
	if err := env.handler.GetScreams(c); err != nil {
		t.Fatalf("GetScreams returned error: %v", err)
	}

	var screams []models.Scream
	if err := json.Unmarshal(rec.Body.Bytes(), &screams); err != nil {
		t.Fatalf("decode screams: %v", err)
	}
	var bodies []string
	for _, s := range screams {
		bodies = append(bodies, s.Body)
	}
	want := []string{"newest", "middle", "oldest"}
	if diff := cmp.Diff(want, bodies); diff != "" {
		t.Errorf("feed order mismatch (-want +got):\n%s", diff)
	}
}

// fakeFeedCache implements FeedCache with closures, edge cases stubbed per
// test.
type fakeFeedCache struct {
	getFeed        func() ([]models.Scream, error)
	setFeed        func([]models.Scream) error
	invalidateFeed func() error
}

func (f *fakeFeedCache) GetFeed(context.Context) ([]models.Scream, error) {
	if f.getFeed == nil {
		return nil, cache.ErrMiss
	}
	return f.getFeed()
}

func (f *fakeFeedCache) SetFeed(_ context.Context, screams []models.Scream) error {
	if f.setFeed == nil {
		return nil
	}
	return f.setFeed(screams)
}

func (f *fakeFeedCache) InvalidateFeed(context.Context) error {
	if f.invalidateFeed == nil {
		return nil
	}
	return f.invalidateFeed()
}

func TestGetScreams_CacheHitSkipsStore(t *testing.T) {
	cached := []models.Scream{{ID: "c1", Body: "from cache"}}
	feedCache := &fakeFeedCache{
		getFeed: func() ([]models.Scream, error) { return cached, nil },
	}
	env := newScreamEnv(t, feedCache)
	env.createScream(t, "alice", "in the store")

	c, rec := env.newContext(http.MethodGet, "/screams", "", "")
	if err := env.handler.GetScreams(c); err != nil {
		t.Fatalf("GetScreams returned error: %v", err)
	}

	var screams []models.Scream
	if err := json.Unmarshal(rec.Body.Bytes(), &screams); err != nil {
		t.Fatalf("decode screams: %v", err)
	}
	if len(screams) != 1 || screams[0].Body != "from cache" {
		t.Errorf("screams = %+v, want cached feed", screams)
	}
}

func TestGetScreams_CacheMissPopulatesCache(t *testing.T) {
	var stored []models.Scream
	feedCache := &fakeFeedCache{
		setFeed: func(screams []models.Scream) error {
			stored = screams
			return nil
		},
	}
	env := newScreamEnv(t, feedCache)
	env.createScream(t, "alice", "warm me up")

	c, _ := env.newContext(http.MethodGet, "/screams", "", "")
	if err := env.handler.GetScreams(c); err != nil {
		t.Fatalf("GetScreams returned error: %v", err)
	}
	if len(stored) != 1 || stored[0].Body != "warm me up" {
		t.Errorf("cache populated with %+v, want the feed", stored)
	}
}

func TestCreateScream_InvalidatesFeedCache(t *testing.T) {
	invalidated := false
	feedCache := &fakeFeedCache{
		invalidateFeed: func() error {
			invalidated = true
			return nil
		},
	}
	env := newScreamEnv(t, feedCache)
	env.createScream(t, "alice", "fresh")

	if !invalidated {
		t.Error("feed cache was not invalidated on scream creation")
	}
}

func TestGetScream_WithComments(t *testing.T) {
	env := newScreamEnv(t, nil)
	scream := env.createScream(t, "alice", "read me")

	c, _ := env.newContext(http.MethodPost, "/screams/"+scream.ID+"/comment", `{"body":"hi"}`, "bob")
	c.SetParamNames("screamId")
	c.SetParamValues(scream.ID)
	if err := env.handler.CommentScream(c); err != nil {
		t.Fatalf("comment: %v", err)
	}

	c, rec := env.newContext(http.MethodGet, "/screams/"+scream.ID, "", "")
	c.SetParamNames("screamId")
	c.SetParamValues(scream.ID)
	if err := env.handler.GetScream(c); err != nil {
		t.Fatalf("GetScream returned error: %v", err)
	}

	var detail models.ScreamDetail
	if err := json.Unmarshal(rec.Body.Bytes(), &detail); err != nil {
		t.Fatalf("decode detail: %v", err)
	}
	if detail.ScreamID != scream.ID || len(detail.Comments) != 1 {
		t.Errorf("detail = %+v, want scream with one comment", detail)
	}
}
