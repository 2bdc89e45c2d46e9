package services

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/synergy-dev/synergy/internal/apperr"
	"github.com/synergy-dev/synergy/internal/models"
)

type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

type ProfilePatch struct {
	Name  *string
	Email *string
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a user with a bcrypt credential hash. The unique email
// index backstops the existence pre-check under concurrent registration.
func (s *UserService) Register(name, email, password string) (*models.User, error) {
	email = normalizeEmail(email)

	var existing models.User
	err := s.db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil, apperr.Conflict("User already exists")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: string(passwordHash),
		Role:         models.UserRoleUser,
	}

	if err := s.db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Conflict("User already exists")
		}
		return nil, err
	}

	return &user, nil
}

// Authenticate returns the user for valid credentials. Unknown email and bad
// password are indistinguishable to the caller.
func (s *UserService) Authenticate(email, password string) (*models.User, error) {
	var user models.User

	err := s.db.Where("email = ?", normalizeEmail(email)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Unauthorized("Invalid email or password")
	}
	if err != nil {
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, apperr.Unauthorized("Invalid email or password")
	}

	return &user, nil
}

func (s *UserService) Profile(userID uint) (*models.User, error) {
	var user models.User

	err := s.db.First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("User not found")
	}
	if err != nil {
		return nil, err
	}

	return &user, nil
}

func (s *UserService) UpdateProfile(userID uint, patch ProfilePatch) (*models.User, error) {
	user, err := s.Profile(userID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if patch.Name != nil && strings.TrimSpace(*patch.Name) != "" {
		updates["name"] = strings.TrimSpace(*patch.Name)
	}
	if patch.Email != nil {
		email := normalizeEmail(*patch.Email)
		if email != user.Email {
			var existing models.User
			err := s.db.Where("email = ? AND id != ?", email, userID).First(&existing).Error
			if err == nil {
				return nil, apperr.Conflict("Email already exists")
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, err
			}
			updates["email"] = email
		}
	}

	if len(updates) == 0 {
		return user, nil
	}

	err = s.db.Model(&models.User{}).Where("id = ?", userID).Updates(updates).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Conflict("Email already exists")
		}
		return nil, err
	}

	return s.Profile(userID)
}
