package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

var (
	ErrPresignUnsupported = errors.New("presigned uploads are not supported by this storage")
	ErrInvalidKey         = errors.New("invalid storage key")
)

// Storage - хранилище загруженных файлов (фото, голосовые)
type Storage interface {
	// Save stores an object under key
	Save(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error

	// Delete removes an object, missing objects are not an error
	Delete(ctx context.Context, key string) error

	// Exists checks if an object exists
	Exists(ctx context.Context, key string) (bool, error)

	// GetURL returns the public URL of an object
	GetURL(key string) string

	// GetSignedUploadURL returns a temporary URL for a direct PUT from the client
	GetSignedUploadURL(ctx context.Context, key, contentType string, expiry time.Duration) (string, error)
}

// Config holds storage configuration
type Config struct {
	Type       string // local, s3
	BasePath   string // For local storage
	BaseURL    string // Public URL base
	Bucket     string
	Region     string
	AccessKey  string
	SecretKey  string
	Endpoint   string // S3-compatible endpoint
	UseSSL     bool
	PublicRead bool
}

// NewStorage creates a storage instance based on configuration
func NewStorage(cfg Config) (Storage, error) {
	switch cfg.Type {
	case "local":
		return NewLocalStorage(cfg)
	case "s3":
		return NewS3Storage(cfg)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}

// ValidateKey запрещает абсолютные пути и выход за пределы каталога
func ValidateKey(key string) error {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "..") || strings.Contains(key, "\\") {
		return ErrInvalidKey
	}
	return nil
}
