package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/synergy-dev/synergy/internal/apperr"
	"github.com/synergy-dev/synergy/internal/models"
	"github.com/synergy-dev/synergy/internal/services"
	"github.com/synergy-dev/synergy/internal/types"
	"github.com/synergy-dev/synergy/internal/utils"
)

type TaskHandler struct {
	tasks *services.TaskService
}

func NewTaskHandler(tasks *services.TaskService) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

type CreateTaskRequest struct {
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
	ProjectID   uint       `json:"project_id" binding:"required"`
	AssignedTo  *uint      `json:"assigned_to"`
	DueDate     *time.Time `json:"due_date"`
}

type UpdateTaskRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Status      *string    `json:"status" binding:"omitempty,oneof=TODO IN_PROGRESS DONE"`
	AssignedTo  *uint      `json:"assigned_to"`
	DueDate     *time.Time `json:"due_date"`
}

type UpdateTaskStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=TODO IN_PROGRESS DONE"`
}

type TaskProjectResponse struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type TaskResponse struct {
	ID          uint                `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Status      models.TaskStatus   `json:"status"`
	DueDate     *time.Time          `json:"due_date"`
	Project     TaskProjectResponse `json:"project"`
	Assignee    *types.UserResponse `json:"assignee"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

func newTaskResponse(task models.Task) TaskResponse {
	response := TaskResponse{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status,
		DueDate:     task.DueDate,
		Project:     TaskProjectResponse{ID: task.Project.ID, Name: task.Project.Name},
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}

	if task.Assignee != nil {
		response.Assignee = &types.UserResponse{
			ID:    task.Assignee.ID,
			Name:  task.Assignee.Name,
			Email: task.Assignee.Email,
		}
	}

	return response
}

func (h *TaskHandler) Create(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)
	if err != nil {
		unauthorized(ctx)
		return
	}

	var body CreateTaskRequest
	if err := ctx.ShouldBindJSON(&body); err != nil {
		bindError(ctx, err)
		return
	}

	task, err := h.tasks.Create(services.CreateTaskInput{
		Title:       body.Title,
		Description: body.Description,
		ProjectID:   body.ProjectID,
		AssignedTo:  body.AssignedTo,
		DueDate:     body.DueDate,
	}, userID)
	if err != nil {
		fail(ctx, err)
		return
	}

	success(ctx, http.StatusCreated, newTaskResponse(*task), "Task created successfully")
}

func (h *TaskHandler) List(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)
	if err != nil {
		unauthorized(ctx)
		return
	}

	page, limit := utils.GetPageParams(ctx, services.DefaultTaskLimit)

	filters := services.TaskFilters{
		Status: models.TaskStatus(ctx.Query("status")),
	}
	if raw := ctx.Query("project_id"); raw != "" {
		if parsed, err := strconv.ParseUint(raw, 10, 64); err == nil {
			filters.ProjectID = uint(parsed)
		}
	}
	if raw := ctx.Query("assigned_to"); raw != "" {
		if parsed, err := strconv.ParseUint(raw, 10, 64); err == nil {
			filters.AssignedTo = uint(parsed)
		}
	}

	tasks, meta, err := h.tasks.List(userID, filters, page, limit)
	if err != nil {
		fail(ctx, err)
		return
	}

	responses := make([]TaskResponse, 0, len(tasks))
	for _, task := range tasks {
		responses = append(responses, newTaskResponse(task))
	}

	paginated(ctx, responses, meta, "Tasks retrieved successfully")
}

func (h *TaskHandler) Get(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)
	if err != nil {
		unauthorized(ctx)
		return
	}

	taskID, err := utils.GetIDParam(ctx, "task_id")
	if err != nil {
		fail(ctx, apperr.Validation("Invalid task ID"))
		return
	}

	task, err := h.tasks.Get(taskID, userID)
	if err != nil {
		fail(ctx, err)
		return
	}

	success(ctx, http.StatusOK, newTaskResponse(*task), "")
}

func (h *TaskHandler) Update(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)
	if err != nil {
		unauthorized(ctx)
		return
	}

	taskID, err := utils.GetIDParam(ctx, "task_id")
	if err != nil {
		fail(ctx, apperr.Validation("Invalid task ID"))
		return
	}

	var body UpdateTaskRequest
	if err := ctx.ShouldBindJSON(&body); err != nil {
		bindError(ctx, err)
		return
	}

	patch := services.TaskPatch{
		Title:       body.Title,
		Description: body.Description,
		AssignedTo:  body.AssignedTo,
		DueDate:     body.DueDate,
	}
	if body.Status != nil {
		status := models.TaskStatus(*body.Status)
		patch.Status = &status
	}

	task, err := h.tasks.Update(taskID, patch, userID)
	if err != nil {
		fail(ctx, err)
		return
	}

	success(ctx, http.StatusOK, newTaskResponse(*task), "Task updated successfully")
}

func (h *TaskHandler) UpdateStatus(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)
	if err != nil {
		unauthorized(ctx)
		return
	}

	taskID, err := utils.GetIDParam(ctx, "task_id")
	if err != nil {
		fail(ctx, apperr.Validation("Invalid task ID"))
		return
	}

	var body UpdateTaskStatusRequest
	if err := ctx.ShouldBindJSON(&body); err != nil {
		bindError(ctx, err)
		return
	}

	task, err := h.tasks.UpdateStatus(taskID, models.TaskStatus(body.Status), userID)
	if err != nil {
		fail(ctx, err)
		return
	}

	success(ctx, http.StatusOK, newTaskResponse(*task), "Task status updated successfully")
}

func (h *TaskHandler) Delete(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)
	if err != nil {
		unauthorized(ctx)
		return
	}

	taskID, err := utils.GetIDParam(ctx, "task_id")
	if err != nil {
		fail(ctx, apperr.Validation("Invalid task ID"))
		return
	}

	if err := h.tasks.Delete(taskID, userID); err != nil {
		fail(ctx, err)
		return
	}

	success(ctx, http.StatusOK, nil, "Task deleted successfully")
}
