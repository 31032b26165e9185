package repositories

import (
	"fmt"

	"essay-feed/models"

	"gorm.io/gorm"
)

type RelationshipRepository interface {
	Create(rel *models.Relationship) error
	Delete(followerID, followedID uint) error
	Exists(followerID, followedID uint) (bool, error)
	Following(userID uint) ([]models.User, error)
	Followers(userID uint) ([]models.User, error)
}

type relationshipRepository struct {
	db *gorm.DB
}

func NewRelationshipRepository(db *gorm.DB) RelationshipRepository {
	return &relationshipRepository{db: db}
}

func (r *relationshipRepository) Create(rel *models.Relationship) error {
	if err := r.db.Create(rel).Error; err != nil {
		return fmt.Errorf("create relationship failed: %w", err)
	}
	return nil
}

func (r *relationshipRepository) Delete(followerID, followedID uint) error {
	return r.db.Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		Delete(&models.Relationship{}).Error
}

func (r *relationshipRepository) Exists(followerID, followedID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.Relationship{}).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		Count(&count).Error
	return count > 0, err
}

func (r *relationshipRepository) Following(userID uint) ([]models.User, error) {
	var users []models.User
	err := r.db.Joins("JOIN relationships ON relationships.followed_id = users.id").
		Where("relationships.follower_id = ?", userID).
		Order("relationships.created_at desc").
		Find(&users).Error
	return users, err
}

func (r *relationshipRepository) Followers(userID uint) ([]models.User, error) {
	var users []models.User
	err := r.db.Joins("JOIN relationships ON relationships.follower_id = users.id").
		Where("relationships.followed_id = ?", userID).
		Order("relationships.created_at desc").
		Find(&users).Error
	return users, err
}
