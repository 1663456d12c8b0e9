package firebase

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
)

// UploadImage writes the image to the storage bucket under the given file
// name with a fresh download token and returns the public tokened URL.
func (a *App) UploadImage(ctx context.Context, fileName, contentType string, r io.Reader) (string, error) {
	token := uuid.NewString()

	w := a.bucket.Object(fileName).NewWriter(ctx)
	w.ContentType = contentType
	w.Metadata = map[string]string{"firebaseStorageDownloadTokens": token}

	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return "", fmt.Errorf("upload image: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalize image upload: %w", err)
	}

	url := fmt.Sprintf("https://firebasestorage.googleapis.com/v0/b/%s/o/%s?alt=media&token=%s",
		a.bucketName, fileName, token)
	return url, nil
}

// DefaultImageURL returns the URL of the placeholder profile image new
// accounts start with.
func (a *App) DefaultImageURL() string {
	return fmt.Sprintf("https://firebasestorage.googleapis.com/v0/b/%s/o/no-img.png?alt=media", a.bucketName)
}
