package services

import (
	"essay-feed/models"
	"essay-feed/repositories"
)

type RelationshipService interface {
	Follow(followerID, followedID uint) error
	Unfollow(followerID, followedID uint) error
	IsFollowing(followerID, followedID uint) (bool, error)
	Following(userID uint) ([]models.User, error)
	Followers(userID uint) ([]models.User, error)
}

type relationshipService struct {
	relRepo  repositories.RelationshipRepository
	userRepo repositories.UserRepository
}

func NewRelationshipService(relRepo repositories.RelationshipRepository, userRepo repositories.UserRepository) RelationshipService {
	return &relationshipService{
		relRepo:  relRepo,
		userRepo: userRepo,
	}
}

// Follow is idempotent; following yourself is a validation error.
func (s *relationshipService) Follow(followerID, followedID uint) error {
	if followerID == followedID {
		return models.ValidationErrors{"followed_id": {"can't be yourself"}}
	}
	if err := s.requireUser(followedID); err != nil {
		return err
	}

	exists, err := s.relRepo.Exists(followerID, followedID)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	return s.relRepo.Create(&models.Relationship{
		FollowerID: followerID,
		FollowedID: followedID,
	})
}

func (s *relationshipService) Unfollow(followerID, followedID uint) error {
	return s.relRepo.Delete(followerID, followedID)
}

func (s *relationshipService) IsFollowing(followerID, followedID uint) (bool, error) {
	return s.relRepo.Exists(followerID, followedID)
}

func (s *relationshipService) Following(userID uint) ([]models.User, error) {
	if err := s.requireUser(userID); err != nil {
		return nil, err
	}
	return s.relRepo.Following(userID)
}

func (s *relationshipService) Followers(userID uint) ([]models.User, error) {
	if err := s.requireUser(userID); err != nil {
		return nil, err
	}
	return s.relRepo.Followers(userID)
}

func (s *relationshipService) requireUser(id uint) error {
	user, err := s.userRepo.GetByID(id)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrNotFound
	}
	return nil
}
