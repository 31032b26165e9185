package repositories

import (
	"errors"
	"fmt"

	"essay-feed/models"

	"gorm.io/gorm"
)

type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByRememberToken(token string) (*models.User, error)
	EmailTaken(email string, exceptID uint) (bool, error)
	Update(user *models.User) error
	UpdateColumn(id uint, column string, value interface{}) error
	Delete(id uint) error
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(user *models.User) error {
	if err := r.db.Create(user).Error; err != nil {
		return fmt.Errorf("create user failed: %w", err)
	}
	return nil
}

// GetByID returns nil, nil when no user has the id.
func (r *userRepository) GetByID(id uint) (*models.User, error) {
	return r.first("id = ?", id)
}

func (r *userRepository) GetByEmail(email string) (*models.User, error) {
	return r.first("email = ?", email)
}

func (r *userRepository) GetByRememberToken(token string) (*models.User, error) {
	if token == "" {
		return nil, nil
	}
	return r.first("remember_token = ?", token)
}

func (r *userRepository) first(query string, args ...interface{}) (*models.User, error) {
	var user models.User
	if err := r.db.Where(query, args...).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query user failed: %w", err)
	}
	return &user, nil
}

// EmailTaken compares case-insensitively and ignores the user with exceptID.
func (r *userRepository) EmailTaken(email string, exceptID uint) (bool, error) {
	var count int64
	query := r.db.Model(&models.User{}).Where("LOWER(email) = LOWER(?)", email)
	if exceptID != 0 {
		query = query.Where("id <> ?", exceptID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, fmt.Errorf("count users by email failed: %w", err)
	}
	return count > 0, nil
}

func (r *userRepository) Update(user *models.User) error {
	if err := r.db.Save(user).Error; err != nil {
		return fmt.Errorf("update user failed: %w", err)
	}
	return nil
}

// UpdateColumn writes a single column without touching the others.
func (r *userRepository) UpdateColumn(id uint, column string, value interface{}) error {
	res := r.db.Model(&models.User{}).Where("id = ?", id).Update(column, value)
	if res.Error != nil {
		return fmt.Errorf("update user %s failed: %w", column, res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes the user together with its essays and follow edges.
func (r *userRepository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("follower_id = ? OR followed_id = ?", id, id).Delete(&models.Relationship{}).Error; err != nil {
			return fmt.Errorf("delete relationships failed: %w", err)
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.Essay{}).Error; err != nil {
			return fmt.Errorf("delete essays failed: %w", err)
		}
		res := tx.Delete(&models.User{}, id)
		if res.Error != nil {
			return fmt.Errorf("delete user failed: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
