package repositories

import (
	"errors"

	"auxchat_backend/internal/models"

	"gorm.io/gorm"
)

var ErrPhotoNotFound = errors.New("photo not found")

// Порядок для фото, которые перестали быть главными
const SecondaryPhotoOrder = 999

type PhotoRepository interface {
	Create(db *gorm.DB, photo *models.UserPhoto) error
	FindByUser(db *gorm.DB, userID string, limit int) ([]models.UserPhoto, error)
	FindByIDForUser(db *gorm.DB, photoID, userID string) (*models.UserPhoto, error)
	CountByUser(db *gorm.DB, userID string) (int64, error)
	SetMain(db *gorm.DB, photoID, userID string) error
	Delete(db *gorm.DB, photoID, userID string) error
	FirstPhotoURLs(db *gorm.DB, userIDs []string) (map[string]string, error)
	DeleteByUser(db *gorm.DB, userID string) error
}

type PhotoRepositoryImpl struct{}

func NewPhotoRepository() PhotoRepository {
	return &PhotoRepositoryImpl{}
}

func (r *PhotoRepositoryImpl) Create(db *gorm.DB, photo *models.UserPhoto) error {
	return db.Create(photo).Error
}

func ordered(db *gorm.DB) *gorm.DB {
	return db.Order("display_order ASC").Order("created_at DESC")
}

func (r *PhotoRepositoryImpl) FindByUser(db *gorm.DB, userID string, limit int) ([]models.UserPhoto, error) {
	var photos []models.UserPhoto
	err := ordered(db.Where("user_id = ?", userID)).Limit(limit).Find(&photos).Error
	return photos, err
}

func (r *PhotoRepositoryImpl) FindByIDForUser(db *gorm.DB, photoID, userID string) (*models.UserPhoto, error) {
	var photo models.UserPhoto
	if err := db.First(&photo, "id = ? AND user_id = ?", photoID, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPhotoNotFound
		}
		return nil, err
	}
	return &photo, nil
}

func (r *PhotoRepositoryImpl) CountByUser(db *gorm.DB, userID string) (int64, error) {
	var count int64
	err := db.Model(&models.UserPhoto{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

// SetMain ставит выбранному фото порядок 0, остальным - 999.
// Вызывать внутри транзакции.
func (r *PhotoRepositoryImpl) SetMain(db *gorm.DB, photoID, userID string) error {
	if _, err := r.FindByIDForUser(db, photoID, userID); err != nil {
		return err
	}

	if err := db.Model(&models.UserPhoto{}).
		Where("user_id = ? AND id <> ?", userID, photoID).
		UpdateColumn("display_order", SecondaryPhotoOrder).Error; err != nil {
		return err
	}

	return db.Model(&models.UserPhoto{}).
		Where("id = ?", photoID).
		UpdateColumn("display_order", 0).Error
}

func (r *PhotoRepositoryImpl) Delete(db *gorm.DB, photoID, userID string) error {
	result := db.Where("id = ? AND user_id = ?", photoID, userID).Delete(&models.UserPhoto{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPhotoNotFound
	}
	return nil
}

// FirstPhotoURLs возвращает первое фото галереи для каждого пользователя
func (r *PhotoRepositoryImpl) FirstPhotoURLs(db *gorm.DB, userIDs []string) (map[string]string, error) {
	result := make(map[string]string, len(userIDs))
	if len(userIDs) == 0 {
		return result, nil
	}

	var photos []models.UserPhoto
	if err := ordered(db.Where("user_id IN ?", userIDs)).Find(&photos).Error; err != nil {
		return nil, err
	}

	for _, p := range photos {
		if _, ok := result[p.UserID]; !ok {
			result[p.UserID] = p.PhotoURL
		}
	}
	return result, nil
}

func (r *PhotoRepositoryImpl) DeleteByUser(db *gorm.DB, userID string) error {
	return db.Where("user_id = ?", userID).Delete(&models.UserPhoto{}).Error
}
