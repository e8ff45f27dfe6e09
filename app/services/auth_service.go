package services

import (
	"errors"

	"github.com/shashiranjanraj/dabba/app/models"
	"github.com/shashiranjanraj/dabba/app/repositories"
	"github.com/shashiranjanraj/dabba/pkg/auth"
	"gorm.io/gorm"
)

// AuthService handles registration, credential checks and profile updates.
type AuthService struct {
	users *repositories.UserRepository
}

func NewAuthService(users *repositories.UserRepository) *AuthService {
	return &AuthService{users: users}
}

// RegisterInput is the payload for account creation.
type RegisterInput struct {
	Username             string `json:"username" validate:"required,alpha_dash,min=3,max=80"`
	Email                string `json:"email" validate:"required,email"`
	Password             string `json:"password" validate:"required,min=8,max=72"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required"`
	Address              string `json:"address" validate:"nullable,max=500"`
	Phone                string `json:"phone" validate:"nullable,max=30"`
}

// Register creates a new account. Username and email must be unique.
func (s *AuthService) Register(input RegisterInput) (models.User, error) {
	if _, err := s.users.FindByEmail(input.Email); err == nil {
		return models.User{}, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, err
	}

	if _, err := s.users.FindByUsername(input.Username); err == nil {
		return models.User{}, ErrUsernameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, err
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return models.User{}, err
	}

	user := models.User{
		Username: input.Username,
		Email:    input.Email,
		Password: hash,
		Address:  input.Address,
		Phone:    input.Phone,
		Role:     models.RoleUser,
	}
	if err := s.users.Create(&user); err != nil {
		return models.User{}, err
	}

	return user, nil
}

// Login verifies credentials and returns the user.
func (s *AuthService) Login(email, password string) (models.User, error) {
	user, err := s.users.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, ErrInvalidCredentials
		}
		return models.User{}, err
	}

	if !auth.CheckPassword(user.Password, password) {
		return models.User{}, ErrInvalidCredentials
	}

	return user, nil
}

// IssueToken verifies credentials and mints a JWT for API clients.
func (s *AuthService) IssueToken(email, password string) (string, error) {
	user, err := s.Login(email, password)
	if err != nil {
		return "", err
	}
	return auth.GenerateToken(user.ID, user.Role)
}

// ProfileInput is the payload for profile updates.
type ProfileInput struct {
	Address string `json:"address" validate:"nullable,max=500"`
	Phone   string `json:"phone" validate:"nullable,max=30"`
}

// UpdateProfile updates the user's delivery details.
func (s *AuthService) UpdateProfile(userID uint, input ProfileInput) (models.User, error) {
	user, err := s.users.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, err
	}

	user.Address = input.Address
	user.Phone = input.Phone
	if err := s.users.Update(&user); err != nil {
		return models.User{}, err
	}

	return user, nil
}

// Profile loads a user by ID.
func (s *AuthService) Profile(userID uint) (models.User, error) {
	user, err := s.users.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, err
	}
	return user, nil
}
