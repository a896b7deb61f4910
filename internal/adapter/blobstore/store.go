package blobstore

import (
	"context"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Store holds uploaded result files. Keys are opaque to callers; downloads
// go through short-lived presigned URLs so the bucket never needs to be
// public.
type Store interface {
	Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	PresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error)
	Remove(ctx context.Context, key string) error
}

var nonSafe = regexp.MustCompile(`[^a-z0-9\-_.]+`)

func sanitize(name string) string {
	name = strings.ToLower(name)
	name = strings.ReplaceAll(name, " ", "-")
	name = nonSafe.ReplaceAllString(name, "-")
	name = strings.Trim(name, "-_")
	if name == "" {
		name = "file"
	}
	return name
}

// ObjectKey builds the storage key for a result file:
// {testSlug}/{clientID}/{uuid}{ext}.
func ObjectKey(testSlug string, clientID int64, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	if ext == "" {
		ext = ".bin"
	}
	return fmt.Sprintf("%s/%d/%s%s", sanitize(testSlug), clientID, uuid.NewString(), ext)
}
