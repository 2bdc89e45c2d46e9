package services

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/synergy-dev/synergy/internal/apperr"
	"github.com/synergy-dev/synergy/internal/models"
	"github.com/synergy-dev/synergy/internal/types"
)

const DefaultProjectLimit = 10

type ProjectService struct {
	db            *gorm.DB
	memberships   *MembershipService
	notifications *NotificationService
}

func NewProjectService(db *gorm.DB, memberships *MembershipService, notifications *NotificationService) *ProjectService {
	return &ProjectService{db: db, memberships: memberships, notifications: notifications}
}

// ProjectDetail pairs a project with its synchronously computed counts.
type ProjectDetail struct {
	Project        models.Project
	TaskCount      int64
	MemberCount    int64
	CompletedTasks int64
}

type ProjectPatch struct {
	Name        *string
	Description *string
}

// Create inserts the project and its OWNER membership in one transaction.
// Name validation lives upstream, but an empty name is rejected here as well
// so no caller can create a nameless project.
func (s *ProjectService) Create(name, description string, ownerID uint) (*ProjectDetail, error) {
	name = strings.TrimSpace(name)
	if len(name) < 2 {
		return nil, apperr.Validation("Project name must be at least 2 characters")
	}

	project := models.Project{
		Name:        name,
		Description: description,
		OwnerID:     ownerID,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&project).Error; err != nil {
			return err
		}
		membership := models.Membership{
			ProjectID: project.ID,
			UserID:    ownerID,
			Role:      models.RoleOwner,
		}
		return tx.Create(&membership).Error
	})
	if err != nil {
		return nil, err
	}

	return s.loadDetail(project.ID)
}

// List returns the projects the caller belongs to, newest-first.
func (s *ProjectService) List(userID uint, page, limit int) ([]ProjectDetail, types.PaginationMeta, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultProjectLimit
	}

	memberOf := func() *gorm.DB {
		return s.db.Model(&models.Project{}).
			Joins("JOIN memberships ON memberships.project_id = projects.id").
			Where("memberships.user_id = ?", userID)
	}

	var total int64
	if err := memberOf().Count(&total).Error; err != nil {
		return nil, types.PaginationMeta{}, err
	}

	var projects []models.Project
	err := memberOf().
		Preload("Owner").
		Preload("Memberships.User").
		Order("projects.created_at DESC, projects.id DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&projects).Error
	if err != nil {
		return nil, types.PaginationMeta{}, err
	}

	details := make([]ProjectDetail, 0, len(projects))
	for _, project := range projects {
		detail, err := s.withCounts(project)
		if err != nil {
			return nil, types.PaginationMeta{}, err
		}
		details = append(details, detail)
	}

	return details, types.NewPaginationMeta(page, limit, total), nil
}

// Get is membership-scoped: a project the caller does not belong to yields the
// same NotFound as a project that does not exist.
func (s *ProjectService) Get(projectID, userID uint) (*ProjectDetail, error) {
	var project models.Project

	err := s.db.
		Preload("Owner").
		Preload("Memberships.User").
		Joins("JOIN memberships ON memberships.project_id = projects.id").
		Where("projects.id = ? AND memberships.user_id = ?", projectID, userID).
		First(&project).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("Project not found")
	}
	if err != nil {
		return nil, err
	}

	detail, err := s.withCounts(project)
	if err != nil {
		return nil, err
	}
	return &detail, nil
}

// Update applies a partial name/description patch. OWNER or ADMIN only.
func (s *ProjectService) Update(projectID uint, patch ProjectPatch, userID uint) (*ProjectDetail, error) {
	allowed, err := s.memberships.HasRole(projectID, userID, models.RoleOwner, models.RoleAdmin)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, apperr.Forbidden("Insufficient permissions")
	}

	updates := make(map[string]interface{})
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if len(name) < 2 {
			return nil, apperr.Validation("Project name must be at least 2 characters")
		}
		updates["name"] = name
	}
	if patch.Description != nil {
		updates["description"] = *patch.Description
	}

	if len(updates) > 0 {
		err = s.db.Model(&models.Project{}).Where("id = ?", projectID).Updates(updates).Error
		if err != nil {
			return nil, err
		}
	}

	return s.loadDetail(projectID)
}

// Delete removes the project and cascades its tasks and memberships. Only the
// owner may delete; an ADMIN gets a distinct owner-only refusal.
func (s *ProjectService) Delete(projectID, userID uint) error {
	var project models.Project

	err := s.db.Select("id", "owner_id").First(&project, projectID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && project.OwnerID != userID) {
		return apperr.Forbidden("Only project owner can delete the project")
	}
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", projectID).Delete(&models.Task{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", projectID).Delete(&models.Membership{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Project{}, projectID).Error
	})
}

// AddMember resolves the email to a user, inserts the membership and notifies
// the new member. The unique (project, user) index backstops the existence
// pre-check, so two racing calls produce one membership and one Conflict.
func (s *ProjectService) AddMember(projectID uint, email string, role models.Role, actorID uint) (*models.Membership, error) {
	allowed, err := s.memberships.HasRole(projectID, actorID, models.RoleOwner, models.RoleAdmin)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, apperr.Forbidden("Insufficient permissions")
	}

	if role == "" {
		role = models.RoleMember
	}
	if role != models.RoleMember && role != models.RoleAdmin {
		return nil, apperr.Validation("Role must be MEMBER or ADMIN")
	}

	var user models.User
	err = s.db.Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("User not found")
	}
	if err != nil {
		return nil, err
	}

	_, exists, err := s.memberships.GetRole(projectID, user.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperr.Conflict("User is already a member of this project")
	}

	var project models.Project
	if err := s.db.First(&project, projectID).Error; err != nil {
		return nil, err
	}

	membership := models.Membership{
		ProjectID: projectID,
		UserID:    user.ID,
		Role:      role,
	}

	if err := s.db.Create(&membership).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Conflict("User is already a member of this project")
		}
		return nil, err
	}

	membership.User = user
	membership.Project = project

	s.notifications.Dispatch(
		models.NotificationProjectInvitation,
		user.ID,
		fmt.Sprintf("You have been added to project %q", project.Name),
		map[string]any{"project_id": project.ID},
	)

	return &membership, nil
}

// RemoveMember deletes the membership. The OWNER membership is never removable
// through this path; it only disappears with the project itself. The removed
// member's task assignments are cleared in the same transaction so no task is
// left pointing at a non-member.
func (s *ProjectService) RemoveMember(projectID, targetUserID, actorID uint) error {
	allowed, err := s.memberships.HasRole(projectID, actorID, models.RoleOwner, models.RoleAdmin)
	if err != nil {
		return err
	}
	if !allowed {
		return apperr.Forbidden("Insufficient permissions")
	}

	role, exists, err := s.memberships.GetRole(projectID, targetUserID)
	if err != nil {
		return err
	}
	if !exists {
		return apperr.NotFound("Membership not found")
	}
	if role == models.RoleOwner {
		return apperr.Validation("Cannot remove project owner")
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&models.Task{}).
			Where("project_id = ? AND assigned_to = ?", projectID, targetUserID).
			Update("assigned_to", nil).Error
		if err != nil {
			return err
		}
		return tx.Where("project_id = ? AND user_id = ?", projectID, targetUserID).
			Delete(&models.Membership{}).Error
	})
}

func (s *ProjectService) loadDetail(projectID uint) (*ProjectDetail, error) {
	var project models.Project

	err := s.db.
		Preload("Owner").
		Preload("Memberships.User").
		First(&project, projectID).Error
	if err != nil {
		return nil, err
	}

	detail, err := s.withCounts(project)
	if err != nil {
		return nil, err
	}
	return &detail, nil
}

func (s *ProjectService) withCounts(project models.Project) (ProjectDetail, error) {
	detail := ProjectDetail{Project: project}

	err := s.db.Model(&models.Task{}).
		Where("project_id = ?", project.ID).
		Count(&detail.TaskCount).Error
	if err != nil {
		return detail, err
	}

	err = s.db.Model(&models.Task{}).
		Where("project_id = ? AND status = ?", project.ID, models.TaskStatusDone).
		Count(&detail.CompletedTasks).Error
	if err != nil {
		return detail, err
	}

	err = s.db.Model(&models.Membership{}).
		Where("project_id = ?", project.ID).
		Count(&detail.MemberCount).Error

	return detail, err
}
