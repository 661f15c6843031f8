package dto

import "time"

// Base64UploadRequest - загрузка картинки в теле JSON
type Base64UploadRequest struct {
	Image       string `json:"image" validate:"required"`
	ContentType string `json:"content_type"`
}

type UploadResponse struct {
	ID       string `json:"id"`
	URL      string `json:"url"`
	Key      string `json:"key"`
	MimeType string `json:"mime_type"`
	Size     int64  `json:"size"`
}

type PresignRequest struct {
	ContentType string `json:"content_type" validate:"required"`
	Kind        string `json:"kind" validate:"required,oneof=photo voice"`
}

type PresignResponse struct {
	UploadURL string    `json:"upload_url"`
	FileURL   string    `json:"file_url"`
	Key       string    `json:"key"`
	ExpiresAt time.Time `json:"expires_at"`
}
