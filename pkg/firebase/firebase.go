package firebase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	gcs "cloud.google.com/go/storage"
)

// Auth provider failures surfaced to callers. Handlers map these onto the
// API error envelope.
var (
	ErrEmailInUse       = errors.New("email already in use")
	ErrWeakPassword     = errors.New("password too weak")
	ErrWrongCredentials = errors.New("wrong credentials")
	ErrUserNotFound     = errors.New("user not found")
)

// App holds the initialized Firebase auth client and storage bucket
type App struct {
	AuthClient *auth.Client

	bucket     *gcs.BucketHandle
	bucketName string
	apiKey     string
	signInURL  string
	httpClient *http.Client
}

// InitFirebase initializes the Firebase application, auth client, and
// default storage bucket. apiKey is the project's Web API key, used for
// password sign-in against the Identity Toolkit endpoint.
func InitFirebase(ctx context.Context, credentialsPath, storageBucket, apiKey string) (*App, error) {
	if credentialsPath == "" {
		return nil, fmt.Errorf("firebase credentials path not provided")
	}
	if _, err := os.Stat(credentialsPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("firebase credentials file not found at %s", credentialsPath)
	}

	opt := option.WithCredentialsFile(credentialsPath)
	cfg := &firebase.Config{StorageBucket: storageBucket}

	firebaseApp, err := firebase.NewApp(ctx, cfg, opt)
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase app: %w", err)
	}

	authClient, err := firebaseApp.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting firebase auth client: %w", err)
	}

	storageClient, err := firebaseApp.Storage(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting firebase storage client: %w", err)
	}
	bucket, err := storageClient.DefaultBucket()
	if err != nil {
		return nil, fmt.Errorf("error getting default storage bucket: %w", err)
	}

	return &App{
		AuthClient: authClient,
		bucket:     bucket,
		bucketName: storageBucket,
		apiKey:     apiKey,
		signInURL:  signInEndpoint,
		httpClient: http.DefaultClient,
	}, nil
}

// Verify checks a bearer ID token and returns the auth user id it encodes.
func (a *App) Verify(ctx context.Context, idToken string) (string, error) {
	token, err := a.AuthClient.VerifyIDToken(ctx, idToken)
	if err != nil {
		return "", err
	}
	return token.UID, nil
}

// CreateUser registers a new email/password user with the auth provider
// and returns its user id.
func (a *App) CreateUser(ctx context.Context, email, password string) (string, error) {
	params := (&auth.UserToCreate{}).Email(email).Password(password)
	record, err := a.AuthClient.CreateUser(ctx, params)
	if err != nil {
		return "", mapCreateUserError(err)
	}
	return record.UID, nil
}

// mapCreateUserError translates auth provider failures into the package
// sentinels. The SDK rejects short passwords locally with a plain error,
// so that one is matched on its message.
func mapCreateUserError(err error) error {
	switch {
	case auth.IsEmailAlreadyExists(err):
		return ErrEmailInUse
	case strings.Contains(err.Error(), "at least 6 characters"):
		return ErrWeakPassword
	default:
		return err
	}
}
