package services

import (
	"strings"

	"essay-feed/models"
	"essay-feed/repositories"
)

type EssayService interface {
	Create(userID uint, req models.CreateEssayRequest) (*models.Essay, error)
	GetByID(id uint) (*models.Essay, error)
	Delete(actor *models.User, id uint) error
	ListByUser(userID uint) ([]models.Essay, error)
	Feed(userID uint, params models.FeedParams) ([]models.Essay, int64, error)
}

type essayService struct {
	essayRepo repositories.EssayRepository
	userRepo  repositories.UserRepository
}

func NewEssayService(essayRepo repositories.EssayRepository, userRepo repositories.UserRepository) EssayService {
	return &essayService{
		essayRepo: essayRepo,
		userRepo:  userRepo,
	}
}

func (s *essayService) Create(userID uint, req models.CreateEssayRequest) (*models.Essay, error) {
	owner, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if owner == nil {
		return nil, ErrNotFound
	}

	essay := &models.Essay{
		UserID:  owner.ID,
		Content: strings.TrimSpace(req.Content),
	}
	if errs := models.ValidateEssay(essay); !errs.Valid() {
		return nil, errs
	}

	if err := s.essayRepo.Create(essay); err != nil {
		return nil, err
	}
	essay.User = owner
	return essay, nil
}

func (s *essayService) GetByID(id uint) (*models.Essay, error) {
	essay, err := s.essayRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if essay == nil {
		return nil, ErrNotFound
	}
	return essay, nil
}

// Delete removes an essay owned by actor; admins may remove any essay.
func (s *essayService) Delete(actor *models.User, id uint) error {
	essay, err := s.GetByID(id)
	if err != nil {
		return err
	}

	if actor == nil || (essay.UserID != actor.ID && !actor.Admin) {
		return ErrForbidden
	}

	return s.essayRepo.Delete(id)
}

func (s *essayService) ListByUser(userID uint) ([]models.Essay, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return s.essayRepo.ListByUser(userID)
}

// Feed returns the user's essays and those of followed users, newest first.
func (s *essayService) Feed(userID uint, params models.FeedParams) ([]models.Essay, int64, error) {
	params.Normalize()
	return s.essayRepo.Feed(userID, params)
}
