package dto

import "time"

type AddPhotoRequest struct {
	PhotoURL string `json:"photo_url" validate:"required,max=1024"`
}

type PhotoResponse struct {
	ID           string    `json:"id"`
	PhotoURL     string    `json:"photo_url"`
	DisplayOrder int       `json:"display_order"`
	CreatedAt    time.Time `json:"created_at"`
}

type PhotoListResponse struct {
	Photos []PhotoResponse `json:"photos"`
}
