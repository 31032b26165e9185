package repositories

import (
	"errors"
	"fmt"

	"essay-feed/models"

	"gorm.io/gorm"
)

type EssayRepository interface {
	Create(essay *models.Essay) error
	GetByID(id uint) (*models.Essay, error)
	Delete(id uint) error
	ListByUser(userID uint) ([]models.Essay, error)
	Feed(userID uint, params models.FeedParams) ([]models.Essay, int64, error)
}

type essayRepository struct {
	db *gorm.DB
}

func NewEssayRepository(db *gorm.DB) EssayRepository {
	return &essayRepository{db: db}
}

func (r *essayRepository) Create(essay *models.Essay) error {
	if err := r.db.Create(essay).Error; err != nil {
		return fmt.Errorf("create essay failed: %w", err)
	}
	return nil
}

// GetByID returns nil, nil when the essay does not exist.
func (r *essayRepository) GetByID(id uint) (*models.Essay, error) {
	var essay models.Essay
	if err := r.db.Preload("User").First(&essay, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query essay failed: %w", err)
	}
	return &essay, nil
}

func (r *essayRepository) Delete(id uint) error {
	return r.db.Delete(&models.Essay{}, id).Error
}

// newestFirst is the feed order; id breaks ties between equal timestamps.
func newestFirst(db *gorm.DB) *gorm.DB {
	return db.Order("essays.created_at desc").Order("essays.id desc")
}

func (r *essayRepository) ListByUser(userID uint) ([]models.Essay, error) {
	var essays []models.Essay
	err := r.db.Where("user_id = ?", userID).
		Scopes(newestFirst).
		Find(&essays).Error
	return essays, err
}

// Feed lists the user's essays and those of every user they follow.
func (r *essayRepository) Feed(userID uint, params models.FeedParams) ([]models.Essay, int64, error) {
	var essays []models.Essay
	var total int64

	followed := r.db.Model(&models.Relationship{}).
		Select("followed_id").
		Where("follower_id = ?", userID)

	query := r.db.Model(&models.Essay{}).
		Where("essays.user_id = ? OR essays.user_id IN (?)", userID, followed).
		Session(&gorm.Session{})

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count feed failed: %w", err)
	}

	offset := (params.Page - 1) * params.Limit
	err := query.Preload("User").
		Scopes(newestFirst).
		Offset(offset).
		Limit(params.Limit).
		Find(&essays).Error
	if err != nil {
		return nil, 0, fmt.Errorf("query feed failed: %w", err)
	}

	return essays, total, nil
}
