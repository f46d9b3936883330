// Package storage provides object storage for uploaded product images.
//
// Two implementations share the Storage interface:
// - LocalStorage: files under a directory, served by the application at /files
// - S3Storage: any S3-compatible bucket (Supabase Storage, R2, MinIO, AWS)
package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
)

// =============================================================================
// Interface Definition
// =============================================================================

// Storage defines the object operations used by the services.
// All methods are context-aware for timeout and cancellation support.
type Storage interface {
	// Put stores data at key. Returns ErrKeyExists when the key is taken and
	// opts.Overwrite is false, ErrTooLarge when data exceeds opts.MaxSize.
	Put(ctx context.Context, key string, data io.Reader, opts PutOptions) error

	// Delete removes the object at key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// URL returns the permanent public URL of the object at key.
	URL(key string) (string, error)

	// Exists reports whether an object is stored at key.
	Exists(ctx context.Context, key string) (bool, error)
}

// PutOptions configures how an object is stored.
type PutOptions struct {
	// ContentType is the MIME type of the object. Detected from the key
	// extension when empty.
	ContentType string

	// MaxSize is the maximum allowed size in bytes. 0 means no limit.
	MaxSize int64

	// Overwrite allows replacing an existing object at the same key.
	Overwrite bool

	// Public marks the object publicly readable (S3 ACL public-read).
	Public bool
}

// =============================================================================
// Configuration Types
// =============================================================================

// LocalConfig holds configuration for local filesystem storage.
type LocalConfig struct {
	// BasePath is the root directory where files are stored.
	BasePath string

	// BaseURL is the public URL prefix for accessing files.
	// Example: "http://localhost:8080/files"
	BaseURL string
}

// S3Config holds configuration for an S3-compatible bucket.
type S3Config struct {
	// Endpoint is the S3 API endpoint.
	// Supabase: "https://<project>.supabase.co/storage/v1/s3"
	Endpoint string

	// Region is the signing region. Most S3-compatible providers accept "auto".
	Region string

	AccessKeyID     string
	SecretAccessKey string

	// Bucket is the bucket name. Product images live in "box3".
	Bucket string

	// PublicURL is the prefix objects are publicly served from.
	// Supabase: "https://<project>.supabase.co/storage/v1/object/public/box3"
	// When empty, URLs are built as <Endpoint>/<Bucket>/<key>.
	PublicURL string
}

const (
	// ProviderLocal identifies the local filesystem storage provider.
	ProviderLocal = "local"

	// ProviderS3 identifies the S3-compatible storage provider.
	ProviderS3 = "s3"
)

// =============================================================================
// Key Generation Helpers
// =============================================================================

// productPrefix is the folder product images are stored under.
const productPrefix = "produto"

// ProductImageKey returns the key of an uploaded product image.
// Format: produto/{id}{ext}
func ProductImageKey(id uuid.UUID, ext string) string {
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return fmt.Sprintf("%s/%s%s", productPrefix, id, strings.ToLower(ext))
}

// ProductThumbnailKey returns the key of a product image thumbnail.
// Thumbnails are always JPEG. Format: produto/thumbs/{id}.jpg
func ProductThumbnailKey(id uuid.UUID) string {
	return fmt.Sprintf("%s/thumbs/%s.jpg", productPrefix, id)
}

// validateKey rejects empty keys and path traversal attempts.
func validateKey(key string) error {
	if key == "" || strings.Contains(key, "..") || strings.HasPrefix(key, "/") {
		return ErrInvalidKey
	}
	return nil
}
