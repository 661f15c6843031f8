package repositories

import (
	"errors"
	"time"

	"auxchat_backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInsufficientEnergy = errors.New("insufficient energy")
	ErrUserBanned         = errors.New("user is banned")
)

type UserRepository interface {
	Create(db *gorm.DB, user *models.User) error
	FindByID(db *gorm.DB, id string) (*models.User, error)
	FindByPhone(db *gorm.DB, phone string) (*models.User, error)
	FindByTelegramID(db *gorm.DB, telegramID int64) (*models.User, error)
	FindByIDs(db *gorm.DB, ids []string) (map[string]models.User, error)
	FindAll(db *gorm.DB) ([]models.User, error)
	FindWithinBox(db *gorm.DB, box BoundingBox) ([]models.User, error)
	Exists(db *gorm.DB, id string) (bool, error)
	LockForUpdate(db *gorm.DB, id string) error
	UpdateFields(db *gorm.DB, id string, fields map[string]interface{}) error
	UpdateLastActivity(db *gorm.DB, id string, at time.Time) error

	// Энергия
	SpendEnergy(db *gorm.DB, id string, cost int) (int, error)
	AddEnergy(db *gorm.DB, id string, amount int) (int, error)
	RemoveEnergy(db *gorm.DB, id string, amount int) (int, error)

	Delete(db *gorm.DB, id string) error
}

// BoundingBox - грубый фильтр по координатам перед точным расчетом расстояния
type BoundingBox struct {
	MinLat, MaxLat float64
	MinLon, MaxLon float64
}

type UserRepositoryImpl struct{}

func NewUserRepository() UserRepository {
	return &UserRepositoryImpl{}
}

func (r *UserRepositoryImpl) Create(db *gorm.DB, user *models.User) error {
	if user.Phone != nil {
		var count int64
		if err := db.Model(&models.User{}).Where("phone = ?", *user.Phone).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrUserAlreadyExists
		}
	}

	if err := db.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrUserAlreadyExists
		}
		return err
	}
	return nil
}

func (r *UserRepositoryImpl) FindByID(db *gorm.DB, id string) (*models.User, error) {
	var user models.User
	if err := db.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserRepositoryImpl) FindByPhone(db *gorm.DB, phone string) (*models.User, error) {
	var user models.User
	if err := db.First(&user, "phone = ?", phone).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserRepositoryImpl) FindByTelegramID(db *gorm.DB, telegramID int64) (*models.User, error) {
	var user models.User
	if err := db.First(&user, "telegram_id = ?", telegramID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserRepositoryImpl) FindByIDs(db *gorm.DB, ids []string) (map[string]models.User, error) {
	result := make(map[string]models.User, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var users []models.User
	if err := db.Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	for _, u := range users {
		result[u.ID] = u
	}
	return result, nil
}

func (r *UserRepositoryImpl) FindAll(db *gorm.DB) ([]models.User, error) {
	var users []models.User
	err := db.Order("created_at DESC").Find(&users).Error
	return users, err
}

func (r *UserRepositoryImpl) FindWithinBox(db *gorm.DB, box BoundingBox) ([]models.User, error) {
	var users []models.User
	err := db.
		Where("latitude IS NOT NULL AND longitude IS NOT NULL").
		Where("latitude BETWEEN ? AND ?", box.MinLat, box.MaxLat).
		Where("longitude BETWEEN ? AND ?", box.MinLon, box.MaxLon).
		Find(&users).Error
	return users, err
}

func (r *UserRepositoryImpl) Exists(db *gorm.DB, id string) (bool, error) {
	var count int64
	err := db.Model(&models.User{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *UserRepositoryImpl) UpdateFields(db *gorm.DB, id string, fields map[string]interface{}) error {
	result := db.Model(&models.User{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *UserRepositoryImpl) UpdateLastActivity(db *gorm.DB, id string, at time.Time) error {
	result := db.Model(&models.User{}).Where("id = ?", id).UpdateColumn("last_activity", at)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// SpendEnergy списывает энергию одним условным UPDATE.
// Если строка не обновилась, причина уточняется отдельным чтением.
func (r *UserRepositoryImpl) SpendEnergy(db *gorm.DB, id string, cost int) (int, error) {
	result := db.Model(&models.User{}).
		Where("id = ? AND energy >= ? AND is_banned = ?", id, cost, false).
		UpdateColumn("energy", gorm.Expr("energy - ?", cost))
	if result.Error != nil {
		return 0, result.Error
	}

	if result.RowsAffected == 0 {
		user, err := r.FindByID(db, id)
		if err != nil {
			return 0, err
		}
		if user.IsBanned {
			return user.Energy, ErrUserBanned
		}
		return user.Energy, ErrInsufficientEnergy
	}

	return r.energyOf(db, id)
}

func (r *UserRepositoryImpl) AddEnergy(db *gorm.DB, id string, amount int) (int, error) {
	result := db.Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("energy", gorm.Expr("energy + ?", amount))
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected == 0 {
		return 0, ErrUserNotFound
	}
	return r.energyOf(db, id)
}

// RemoveEnergy уменьшает баланс, но не ниже нуля
func (r *UserRepositoryImpl) RemoveEnergy(db *gorm.DB, id string, amount int) (int, error) {
	result := db.Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("energy", gorm.Expr("CASE WHEN energy > ? THEN energy - ? ELSE 0 END", amount, amount))
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected == 0 {
		return 0, ErrUserNotFound
	}
	return r.energyOf(db, id)
}

func (r *UserRepositoryImpl) Delete(db *gorm.DB, id string) error {
	result := db.Where("id = ?", id).Delete(&models.User{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *UserRepositoryImpl) energyOf(db *gorm.DB, id string) (int, error) {
	var energy int
	err := db.Model(&models.User{}).Select("energy").Where("id = ?", id).Scan(&energy).Error
	return energy, err
}

// LockForUpdate блокирует строку пользователя до конца транзакции (SELECT ... FOR UPDATE).
// sqlite блокировки строк не поддерживает, там пишущие транзакции и так идут по одной.
func (r *UserRepositoryImpl) LockForUpdate(db *gorm.DB, id string) error {
	var user models.User
	err := db.Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
		Select("id").
		First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrUserNotFound
	}
	return err
}
