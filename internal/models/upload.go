package models

// Upload - учет файлов, загруженных в хранилище
type Upload struct {
	CreatedOnly
	UserID   string     `gorm:"type:uuid;not null;index" json:"user_id"`
	Kind     UploadKind `gorm:"type:varchar(20);not null" json:"kind"`
	Key      string     `gorm:"not null;uniqueIndex" json:"key"`
	URL      string     `gorm:"not null" json:"url"`
	MimeType string     `json:"mime_type"`
	Size     int64      `json:"size"`
}
