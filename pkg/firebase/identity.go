package firebase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// signInEndpoint is the Identity Toolkit password sign-in endpoint. The
// Admin SDK cannot exchange email/password credentials for an ID token, so
// login goes through the same REST call the client SDKs make.
const signInEndpoint = "https://identitytoolkit.googleapis.com/v1/accounts:signInWithPassword"

type signInRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type signInResponse struct {
	IDToken string `json:"idToken"`
	Error   *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// SignIn exchanges email/password credentials for an ID token.
func (a *App) SignIn(ctx context.Context, email, password string) (string, error) {
	payload, err := json.Marshal(signInRequest{Email: email, Password: password, ReturnSecureToken: true})
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s?key=%s", a.signInURL, a.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := a.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("identity toolkit request: %w", err)
	}
	defer res.Body.Close()

	var body signInResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode identity toolkit response: %w", err)
	}

	if res.StatusCode != http.StatusOK {
		msg := ""
		if body.Error != nil {
			msg = body.Error.Message
		}
		switch {
		case strings.HasPrefix(msg, "EMAIL_NOT_FOUND"):
			return "", ErrUserNotFound
		case strings.HasPrefix(msg, "INVALID_PASSWORD"), strings.HasPrefix(msg, "INVALID_LOGIN_CREDENTIALS"):
			return "", ErrWrongCredentials
		case strings.HasPrefix(msg, "WEAK_PASSWORD"):
			return "", ErrWeakPassword
		default:
			return "", fmt.Errorf("identity toolkit sign-in failed: %s", msg)
		}
	}
	return body.IDToken, nil
}
