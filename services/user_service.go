package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"essay-feed/cache"
	"essay-feed/helper"
	"essay-feed/logger"
	"essay-feed/models"
	"essay-feed/repositories"

	"gorm.io/gorm"
)

const emailTakenMessage = "has already been taken"

type UserService interface {
	Validate(user *models.User) (models.ValidationErrors, error)
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	ChangePassword(ctx context.Context, id uint, password, confirmation string) (*models.User, error)
	ToggleAdmin(id uint) (*models.User, error)
	Delete(ctx context.Context, actor *models.User, id uint) error
}

type userService struct {
	userRepo   repositories.UserRepository
	sessions   cache.SessionCache
	bcryptCost int
}

func NewUserService(userRepo repositories.UserRepository, sessions cache.SessionCache, bcryptCost int) UserService {
	if sessions == nil {
		sessions = cache.NoopSessionCache{}
	}
	return &userService{
		userRepo:   userRepo,
		sessions:   sessions,
		bcryptCost: bcryptCost,
	}
}

// Validate runs the field rules and then the store backed email uniqueness check.
// A non-nil error means the store failed, not that the user is invalid.
func (s *userService) Validate(user *models.User) (models.ValidationErrors, error) {
	errs := models.ValidateUser(user)
	if _, bad := errs["email"]; bad {
		return errs, nil
	}

	taken, err := s.userRepo.EmailTaken(strings.TrimSpace(user.Email), user.ID)
	if err != nil {
		return nil, err
	}
	if taken {
		errs.Add("email", emailTakenMessage)
	}
	return errs, nil
}

// Create validates and persists a new user. Invalid input is returned as models.ValidationErrors.
func (s *userService) Create(user *models.User) error {
	user.Email = models.NormalizeEmail(user.Email)
	user.Name = strings.TrimSpace(user.Name)

	errs, err := s.Validate(user)
	if err != nil {
		return err
	}
	if !errs.Valid() {
		return errs
	}

	if err := s.prepareForSave(user); err != nil {
		return err
	}

	if err := s.userRepo.Create(user); err != nil {
		// Lost a signup race against the unique index.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.ValidationErrors{"email": {emailTakenMessage}}
		}
		return err
	}

	logger.Infof("user %d created", user.ID)
	return nil
}

// prepareForSave digests a pending password and issues a fresh remember token.
func (s *userService) prepareForSave(user *models.User) error {
	if user.Password != "" {
		digest, err := helper.HashPassword(user.Password, s.bcryptCost)
		if err != nil {
			return fmt.Errorf("hash password failed: %w", err)
		}
		user.PasswordDigest = digest
	}

	token, err := helper.NewRememberToken()
	if err != nil {
		return fmt.Errorf("generate remember token failed: %w", err)
	}
	user.RememberToken = token

	user.Password = ""
	user.PasswordConfirmation = ""
	return nil
}

func (s *userService) GetByID(id uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return user, nil
}

func (s *userService) ChangePassword(ctx context.Context, id uint, password, confirmation string) (*models.User, error) {
	user, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	oldToken := user.RememberToken
	user.Password = password
	user.PasswordConfirmation = confirmation

	errs := models.ValidationErrors{}
	models.ValidatePassword(user, errs)
	if !errs.Valid() {
		return nil, errs
	}

	if err := s.prepareForSave(user); err != nil {
		return nil, err
	}
	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}

	s.evict(ctx, oldToken)
	return user, nil
}

// ToggleAdmin flips the admin flag with a single column write.
func (s *userService) ToggleAdmin(id uint) (*models.User, error) {
	user, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	user.Admin = !user.Admin
	if err := s.userRepo.UpdateColumn(user.ID, "admin", user.Admin); err != nil {
		return nil, err
	}

	logger.Infof("user %d admin set to %t", user.ID, user.Admin)
	return user, nil
}

// Delete destroys a user and everything it owns. Only the user itself or an admin may do it.
func (s *userService) Delete(ctx context.Context, actor *models.User, id uint) error {
	if actor == nil || (actor.ID != id && !actor.Admin) {
		return ErrForbidden
	}

	user, err := s.GetByID(id)
	if err != nil {
		return err
	}

	if err := s.userRepo.Delete(user.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	s.evict(ctx, user.RememberToken)
	logger.Infof("user %d deleted by %d", user.ID, actor.ID)
	return nil
}

func (s *userService) evict(ctx context.Context, token string) {
	if token == "" {
		return
	}
	if err := s.sessions.Delete(ctx, token); err != nil {
		logger.Warningf("evict session failed: %v", err)
	}
}
