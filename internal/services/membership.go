package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/synergy-dev/synergy/internal/models"
)

// MembershipService is the single authorization primitive: every permission
// decision in the project and task services goes through HasRole, IsMember or
// GetRole. Pure lookups, no side effects.
type MembershipService struct {
	db *gorm.DB
}

func NewMembershipService(db *gorm.DB) *MembershipService {
	return &MembershipService{db: db}
}

// GetRole returns the caller's role in the project, or ok=false when no
// membership exists.
func (s *MembershipService) GetRole(projectID, userID uint) (models.Role, bool, error) {
	var membership models.Membership

	err := s.db.Where("project_id = ? AND user_id = ?", projectID, userID).First(&membership).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	return membership.Role, true, nil
}

func (s *MembershipService) IsMember(projectID, userID uint) (bool, error) {
	_, ok, err := s.GetRole(projectID, userID)
	return ok, err
}

func (s *MembershipService) HasRole(projectID, userID uint, allowed ...models.Role) (bool, error) {
	role, ok, err := s.GetRole(projectID, userID)
	if err != nil || !ok {
		return false, err
	}

	for _, candidate := range allowed {
		if role == candidate {
			return true, nil
		}
	}

	return false, nil
}
