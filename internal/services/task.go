package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/synergy-dev/synergy/internal/apperr"
	"github.com/synergy-dev/synergy/internal/models"
	"github.com/synergy-dev/synergy/internal/types"
)

const DefaultTaskLimit = 10

type TaskService struct {
	db            *gorm.DB
	memberships   *MembershipService
	notifications *NotificationService
}

func NewTaskService(db *gorm.DB, memberships *MembershipService, notifications *NotificationService) *TaskService {
	return &TaskService{db: db, memberships: memberships, notifications: notifications}
}

type CreateTaskInput struct {
	Title       string
	Description string
	ProjectID   uint
	AssignedTo  *uint
	DueDate     *time.Time
}

type TaskPatch struct {
	Title       *string
	Description *string
	Status      *models.TaskStatus
	AssignedTo  *uint
	DueDate     *time.Time
}

type TaskFilters struct {
	ProjectID  uint
	Status     models.TaskStatus
	AssignedTo uint
}

// Create inserts a task in TODO state. The creator must belong to the project
// and so must the assignee, each violation with its own message. Assigning
// someone other than yourself notifies them.
func (s *TaskService) Create(input CreateTaskInput, creatorID uint) (*models.Task, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, apperr.Validation("Task title is required")
	}

	isMember, err := s.memberships.IsMember(input.ProjectID, creatorID)
	if err != nil {
		return nil, err
	}
	if !isMember {
		return nil, apperr.Validation("You are not a member of this project")
	}

	if input.AssignedTo != nil {
		assigneeIsMember, err := s.memberships.IsMember(input.ProjectID, *input.AssignedTo)
		if err != nil {
			return nil, err
		}
		if !assigneeIsMember {
			return nil, apperr.Validation("Assigned user is not a member of this project")
		}
	}

	task := models.Task{
		ProjectID:   input.ProjectID,
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		Status:      models.TaskStatusTodo,
		AssignedTo:  input.AssignedTo,
		DueDate:     input.DueDate,
	}

	if err := s.db.Create(&task).Error; err != nil {
		return nil, err
	}

	created, err := s.load(task.ID)
	if err != nil {
		return nil, err
	}

	if created.AssignedTo != nil && *created.AssignedTo != creatorID {
		s.notifications.Dispatch(
			models.NotificationTaskAssigned,
			*created.AssignedTo,
			fmt.Sprintf("You have been assigned a new task: %q in project %q", created.Title, created.Project.Name),
			map[string]any{"task_id": created.ID, "project_id": created.ProjectID},
		)
	}

	return created, nil
}

// List returns tasks across every project the caller belongs to. A projectId
// filter narrows within that visible set rather than overriding it. With no
// memberships at all, the task table is never queried.
func (s *TaskService) List(userID uint, filters TaskFilters, page, limit int) ([]models.Task, types.PaginationMeta, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultTaskLimit
	}

	var projectIDs []uint
	err := s.db.Model(&models.Membership{}).
		Where("user_id = ?", userID).
		Pluck("project_id", &projectIDs).Error
	if err != nil {
		return nil, types.PaginationMeta{}, err
	}

	if len(projectIDs) == 0 {
		return []models.Task{}, types.NewPaginationMeta(page, limit, 0), nil
	}

	visible := func() *gorm.DB {
		query := s.db.Model(&models.Task{}).Where("project_id IN ?", projectIDs)
		if filters.ProjectID != 0 {
			query = query.Where("project_id = ?", filters.ProjectID)
		}
		if filters.Status != "" {
			query = query.Where("status = ?", filters.Status)
		}
		if filters.AssignedTo != 0 {
			query = query.Where("assigned_to = ?", filters.AssignedTo)
		}
		return query
	}

	var total int64
	if err := visible().Count(&total).Error; err != nil {
		return nil, types.PaginationMeta{}, err
	}

	var tasks []models.Task
	err = visible().
		Preload("Project").
		Preload("Assignee").
		Order(models.TaskStatusRank()).
		Order("due_date IS NULL, due_date ASC").
		Order("created_at DESC, id DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&tasks).Error
	if err != nil {
		return nil, types.PaginationMeta{}, err
	}

	return tasks, types.NewPaginationMeta(page, limit, total), nil
}

// Get is visibility-scoped through project membership; a task in someone
// else's project looks exactly like a missing task.
func (s *TaskService) Get(taskID, userID uint) (*models.Task, error) {
	var task models.Task

	err := s.db.
		Preload("Project").
		Preload("Assignee").
		Joins("JOIN memberships ON memberships.project_id = tasks.project_id AND memberships.user_id = ?", userID).
		Where("tasks.id = ?", taskID).
		First(&task).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("Task not found")
	}
	if err != nil {
		return nil, err
	}

	return &task, nil
}

// Update applies a partial patch, then dispatches notifications from an
// explicit before/after diff. Old status and old assignee are captured before
// the write; the reassignment rule looks at the new assignee, the
// status-change rule at the old one. Both can fire on a single update.
func (s *TaskService) Update(taskID uint, patch TaskPatch, userID uint) (*models.Task, error) {
	task, err := s.Get(taskID, userID)
	if err != nil {
		return nil, err
	}

	reassigned := patch.AssignedTo != nil &&
		(task.AssignedTo == nil || *patch.AssignedTo != *task.AssignedTo)

	if reassigned {
		assigneeIsMember, err := s.memberships.IsMember(task.ProjectID, *patch.AssignedTo)
		if err != nil {
			return nil, err
		}
		if !assigneeIsMember {
			return nil, apperr.Validation("Assigned user is not a member of this project")
		}
	}

	// Snapshot before mutating; the notification rules below must not read
	// post-update state for the "old" side of the diff.
	oldStatus := task.Status
	var oldAssignee *uint
	if task.AssignedTo != nil {
		previous := *task.AssignedTo
		oldAssignee = &previous
	}

	updates := make(map[string]interface{})
	if patch.Title != nil {
		if strings.TrimSpace(*patch.Title) == "" {
			return nil, apperr.Validation("Task title is required")
		}
		updates["title"] = strings.TrimSpace(*patch.Title)
	}
	if patch.Description != nil {
		updates["description"] = *patch.Description
	}
	if patch.Status != nil {
		updates["status"] = *patch.Status
	}
	if patch.AssignedTo != nil {
		updates["assigned_to"] = *patch.AssignedTo
	}
	if patch.DueDate != nil {
		updates["due_date"] = *patch.DueDate
	}

	if len(updates) > 0 {
		err = s.db.Model(&models.Task{}).Where("id = ?", taskID).Updates(updates).Error
		if err != nil {
			return nil, err
		}
	}

	updated, err := s.load(taskID)
	if err != nil {
		return nil, err
	}

	if reassigned && *patch.AssignedTo != userID {
		s.notifications.Dispatch(
			models.NotificationTaskAssigned,
			*patch.AssignedTo,
			fmt.Sprintf("You have been assigned to task: %q in project %q", updated.Title, updated.Project.Name),
			map[string]any{"task_id": updated.ID, "project_id": updated.ProjectID},
		)
	}

	statusChanged := patch.Status != nil && *patch.Status != oldStatus
	if statusChanged && oldAssignee != nil && *oldAssignee != userID {
		s.notifications.Dispatch(
			models.NotificationTaskUpdated,
			*oldAssignee,
			fmt.Sprintf("Task %q status changed to %s", updated.Title, *patch.Status),
			map[string]any{"task_id": updated.ID, "project_id": updated.ProjectID},
		)
	}

	return updated, nil
}

// UpdateStatus is Update restricted to the status field.
func (s *TaskService) UpdateStatus(taskID uint, status models.TaskStatus, userID uint) (*models.Task, error) {
	return s.Update(taskID, TaskPatch{Status: &status}, userID)
}

// Delete requires OWNER/ADMIN in the project, or being the current assignee.
func (s *TaskService) Delete(taskID, userID uint) error {
	task, err := s.Get(taskID, userID)
	if err != nil {
		return err
	}

	privileged, err := s.memberships.HasRole(task.ProjectID, userID, models.RoleOwner, models.RoleAdmin)
	if err != nil {
		return err
	}

	isAssignee := task.AssignedTo != nil && *task.AssignedTo == userID
	if !privileged && !isAssignee {
		return apperr.Forbidden("Insufficient permissions to delete this task")
	}

	return s.db.Delete(&models.Task{}, taskID).Error
}

func (s *TaskService) load(taskID uint) (*models.Task, error) {
	var task models.Task
	err := s.db.Preload("Project").Preload("Assignee").First(&task, taskID).Error
	if err != nil {
		return nil, err
	}
	return &task, nil
}
