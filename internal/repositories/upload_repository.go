package repositories

import (
	"auxchat_backend/internal/models"

	"gorm.io/gorm"
)

type UploadRepository interface {
	Create(db *gorm.DB, upload *models.Upload) error
	FindByUser(db *gorm.DB, userID string, kind models.UploadKind) ([]models.Upload, error)
	TotalSizeByUser(db *gorm.DB, userID string) (int64, error)
	DeleteByUser(db *gorm.DB, userID string) ([]string, error)
}

type UploadRepositoryImpl struct{}

func NewUploadRepository() UploadRepository {
	return &UploadRepositoryImpl{}
}

func (r *UploadRepositoryImpl) Create(db *gorm.DB, upload *models.Upload) error {
	return db.Create(upload).Error
}

func (r *UploadRepositoryImpl) FindByUser(db *gorm.DB, userID string, kind models.UploadKind) ([]models.Upload, error) {
	var uploads []models.Upload
	query := db.Where("user_id = ?", userID)
	if kind != "" {
		query = query.Where("kind = ?", kind)
	}
	err := query.Order("created_at DESC").Find(&uploads).Error
	return uploads, err
}

func (r *UploadRepositoryImpl) TotalSizeByUser(db *gorm.DB, userID string) (int64, error) {
	var total int64
	err := db.Model(&models.Upload{}).
		Select("COALESCE(SUM(size), 0)").
		Where("user_id = ?", userID).
		Scan(&total).Error
	return total, err
}

// DeleteByUser удаляет записи и возвращает ключи объектов для очистки хранилища
func (r *UploadRepositoryImpl) DeleteByUser(db *gorm.DB, userID string) ([]string, error) {
	var keys []string
	if err := db.Model(&models.Upload{}).Where("user_id = ?", userID).Pluck("key", &keys).Error; err != nil {
		return nil, err
	}
	if err := db.Where("user_id = ?", userID).Delete(&models.Upload{}).Error; err != nil {
		return nil, err
	}
	return keys, nil
}
