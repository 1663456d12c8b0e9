package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/socialape/screams-backend/internal/apierror"
	"github.com/socialape/screams-backend/internal/models"
	"github.com/socialape/screams-backend/internal/repositories"
)

type verifierFunc func(ctx context.Context, idToken string) (string, error)

func (f verifierFunc) Verify(ctx context.Context, idToken string) (string, error) {
	return f(ctx, idToken)
}

func newAuthTestRepo(t *testing.T) *repositories.MemoryUserRepository {
	t.Helper()
	repo := repositories.NewMemoryUserRepository(repositories.NewMemory())
	err := repo.Create(context.Background(), &models.User{
		UserID:   "uid-1",
		Handle:   "alice",
		ImageURL: "https://img.example/alice.png",
	})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return repo
}

func invoke(mw echo.MiddlewareFunc, authHeader string, next echo.HandlerFunc) (echo.Context, error) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	c := e.NewContext(req, httptest.NewRecorder())
	return c, mw(next)(c)
}

func TestAuthorization_MissingHeader(t *testing.T) {
	verify := verifierFunc(func(context.Context, string) (string, error) {
		t.Fatal("verifier must not be called without a header")
		return "", nil
	})
	mw := Authorization(verify, newAuthTestRepo(t))

	_, err := invoke(mw, "", func(echo.Context) error { return nil })
	if !errors.Is(err, apierror.ErrNoToken) {
		t.Fatalf("error = %v, want ErrNoToken", err)
	}
}

func TestAuthorization_BadToken(t *testing.T) {
	verify := verifierFunc(func(context.Context, string) (string, error) {
		return "", errors.New("token expired")
	})
	mw := Authorization(verify, newAuthTestRepo(t))

	_, err := invoke(mw, "Bearer bad-token", func(echo.Context) error { return nil })
	if !errors.Is(err, apierror.ErrTokenVerifyFailure) {
		t.Fatalf("error = %v, want ErrTokenVerifyFailure", err)
	}
}

func TestAuthorization_UnknownUser(t *testing.T) {
	verify := verifierFunc(func(context.Context, string) (string, error) {
		return "uid-unknown", nil
	})
	mw := Authorization(verify, newAuthTestRepo(t))

	_, err := invoke(mw, "Bearer good-token", func(echo.Context) error { return nil })
	if !errors.Is(err, apierror.ErrTokenVerifyFailure) {
		t.Fatalf("error = %v, want ErrTokenVerifyFailure", err)
	}
}

func TestAuthorization_SetsContext(t *testing.T) {
	var gotToken string
	verify := verifierFunc(func(_ context.Context, idToken string) (string, error) {
		gotToken = idToken
		return "uid-1", nil
	})
	mw := Authorization(verify, newAuthTestRepo(t))

	called := false
	c, err := invoke(mw, "Bearer id-token-123", func(c echo.Context) error {
		called = true
		return nil
	})
	if err != nil {
		t.Fatalf("middleware returned error: %v", err)
	}
	if !called {
		t.Fatal("next handler was not called")
	}
	if gotToken != "id-token-123" {
		t.Errorf("verified token = %q, want the Bearer prefix stripped", gotToken)
	}
	if got := c.Get(ContextUserHandle); got != "alice" {
		t.Errorf("context handle = %v, want alice", got)
	}
	if got := c.Get(ContextUserImage); got != "https://img.example/alice.png" {
		t.Errorf("context image = %v, want alice's image", got)
	}
	if got := c.Get(ContextUserID); got != "uid-1" {
		t.Errorf("context user id = %v, want uid-1", got)
	}
}

func TestAuthorization_RawTokenWithoutBearerPrefix(t *testing.T) {
	verify := verifierFunc(func(_ context.Context, idToken string) (string, error) {
		if idToken != "raw-token" {
			t.Errorf("verified token = %q, want raw-token", idToken)
		}
		return "uid-1", nil
	})
	mw := Authorization(verify, newAuthTestRepo(t))

	_, err := invoke(mw, "raw-token", func(echo.Context) error { return nil })
	if err != nil {
		t.Fatalf("middleware returned error: %v", err)
	}
}
