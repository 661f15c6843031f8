package models

// UserPhoto - фото в галерее профиля
type UserPhoto struct {
	CreatedOnly
	UserID       string `gorm:"type:uuid;not null;index" json:"user_id"`
	PhotoURL     string `gorm:"not null" json:"photo_url"`
	DisplayOrder int    `gorm:"not null;default:0" json:"display_order"`
}
