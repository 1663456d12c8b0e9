package firebase

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newSignInServer(t *testing.T, status int, body any) *App {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("key") != "test-api-key" {
			t.Errorf("request key = %q, want test-api-key", r.URL.Query().Get("key"))
		}
		var req signInRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if !req.ReturnSecureToken {
			t.Error("returnSecureToken not set")
		}
		w.WriteHeader(status)
		if err := json.NewEncoder(w).Encode(body); err != nil {
			t.Errorf("encode response: %v", err)
		}
	}))
	t.Cleanup(srv.Close)

	return &App{
		apiKey:     "test-api-key",
		signInURL:  srv.URL,
		httpClient: srv.Client(),
	}
}

func TestSignIn(t *testing.T) {
	app := newSignInServer(t, http.StatusOK, map[string]string{"idToken": "id-token-123"})

	token, err := app.SignIn(context.Background(), "alice@example.com", "hunter2hunter2")
	if err != nil {
		t.Fatalf("SignIn returned error: %v", err)
	}
	if token != "id-token-123" {
		t.Errorf("token = %q, want id-token-123", token)
	}
}

func TestSignIn_ErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		message string
		wantErr error
	}{
		{name: "unknown email", message: "EMAIL_NOT_FOUND", wantErr: ErrUserNotFound},
		{name: "wrong password", message: "INVALID_PASSWORD", wantErr: ErrWrongCredentials},
		{name: "newer invalid credential code", message: "INVALID_LOGIN_CREDENTIALS", wantErr: ErrWrongCredentials},
		{name: "weak password", message: "WEAK_PASSWORD : Password should be at least 6 characters", wantErr: ErrWeakPassword},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newSignInServer(t, http.StatusBadRequest, map[string]any{
				"error": map[string]string{"message": tt.message},
			})

			_, err := app.SignIn(context.Background(), "alice@example.com", "whatever")
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("SignIn error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestSignIn_UnrecognizedError(t *testing.T) {
	app := newSignInServer(t, http.StatusBadRequest, map[string]any{
		"error": map[string]string{"message": "TOO_MANY_ATTEMPTS_TRY_LATER"},
	})

	_, err := app.SignIn(context.Background(), "alice@example.com", "whatever")
	if err == nil {
		t.Fatal("SignIn returned nil error for an unrecognized failure")
	}
	for _, sentinel := range []error{ErrUserNotFound, ErrWrongCredentials, ErrWeakPassword} {
		if errors.Is(err, sentinel) {
			t.Fatalf("unrecognized failure mapped onto %v", sentinel)
		}
	}
}
