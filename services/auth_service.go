package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"essay-feed/cache"
	"essay-feed/helper"
	"essay-feed/logger"
	"essay-feed/models"
	"essay-feed/repositories"

	"github.com/golang-jwt/jwt/v4"
)

type Claims struct {
	UserID uint   `json:"user_id"`
	Name   string `json:"name"`
	Admin  bool   `json:"admin"`
	jwt.RegisteredClaims
}

type AuthService interface {
	Authenticate(email, password string) (*models.User, error)
	Register(req models.SignupRequest) (*models.AuthResponse, error)
	Login(req models.LoginRequest) (*models.AuthResponse, error)
	GenerateToken(user *models.User) (string, error)
	ParseToken(tokenString string) (*Claims, error)
	UserFromRememberToken(ctx context.Context, token string) (*models.User, error)
	SignOut(ctx context.Context, user *models.User) error
}

type authService struct {
	userRepo      repositories.UserRepository
	userService   UserService
	sessions      cache.SessionCache
	jwtSecret     []byte
	jwtExpiration time.Duration
}

func NewAuthService(userRepo repositories.UserRepository, userService UserService, sessions cache.SessionCache, jwtSecret string, jwtExpiration time.Duration) AuthService {
	if sessions == nil {
		sessions = cache.NoopSessionCache{}
	}
	return &authService{
		userRepo:      userRepo,
		userService:   userService,
		sessions:      sessions,
		jwtSecret:     []byte(jwtSecret),
		jwtExpiration: jwtExpiration,
	}
}

// Authenticate returns nil, nil when the email is unknown or the password is wrong.
func (s *authService) Authenticate(email, password string) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(models.NormalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, nil
	}

	if !helper.CheckPasswordHash(user.PasswordDigest, password) {
		return nil, nil
	}
	return user, nil
}

func (s *authService) Register(req models.SignupRequest) (*models.AuthResponse, error) {
	user := req.ToUser()
	if err := s.userService.Create(user); err != nil {
		return nil, err
	}
	return s.respond(user)
}

func (s *authService) Login(req models.LoginRequest) (*models.AuthResponse, error) {
	user, err := s.Authenticate(req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	return s.respond(user)
}

func (s *authService) respond(user *models.User) (*models.AuthResponse, error) {
	token, err := s.GenerateToken(user)
	if err != nil {
		return nil, err
	}

	return &models.AuthResponse{
		Token:         token,
		RememberToken: user.RememberToken,
		User:          *user,
	}, nil
}

func (s *authService) GenerateToken(user *models.User) (string, error) {
	now := time.Now()

	claims := Claims{
		UserID: user.ID,
		Name:   user.Name,
		Admin:  user.Admin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtExpiration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedToken, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("sign token failed: %w", err)
	}

	return signedToken, nil
}

func (s *authService) ParseToken(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("token is not valid")
	}
	return claims, nil
}

// UserFromRememberToken resolves the cookie value to a user, or nil when nobody holds it.
func (s *authService) UserFromRememberToken(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, nil
	}

	id, ok, err := s.sessions.Get(ctx, token)
	if err != nil {
		logger.Warningf("session cache get failed: %v", err)
	}
	if ok {
		user, err := s.userRepo.GetByID(id)
		if err != nil {
			return nil, err
		}
		if user != nil && user.RememberToken == token {
			return user, nil
		}
		// Stale entry, the token was rotated or the user is gone.
		_ = s.sessions.Delete(ctx, token)
	}

	user, err := s.userRepo.GetByRememberToken(token)
	if err != nil || user == nil {
		return nil, err
	}

	if err := s.sessions.Set(ctx, token, user.ID); err != nil {
		logger.Warningf("session cache set failed: %v", err)
	}
	return user, nil
}

// SignOut rotates the remember token so every cookie holding the old one stops working.
func (s *authService) SignOut(ctx context.Context, user *models.User) error {
	if err := s.sessions.Delete(ctx, user.RememberToken); err != nil {
		logger.Warningf("session cache delete failed: %v", err)
	}

	token, err := helper.NewRememberToken()
	if err != nil {
		return fmt.Errorf("generate remember token failed: %w", err)
	}
	if err := s.userRepo.UpdateColumn(user.ID, "remember_token", token); err != nil {
		return err
	}
	user.RememberToken = token
	return nil
}
