package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/synergy-dev/synergy/internal/apperr"
	"github.com/synergy-dev/synergy/internal/models"
	"github.com/synergy-dev/synergy/internal/services"
	"github.com/synergy-dev/synergy/internal/types"
	"github.com/synergy-dev/synergy/internal/utils"
)

type ProjectHandler struct {
	projects *services.ProjectService
}

func NewProjectHandler(projects *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{projects: projects}
}

type CreateProjectRequest struct {
	Name        string `json:"name" binding:"required,min=2"`
	Description string `json:"description"`
}

type UpdateProjectRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=2"`
	Description *string `json:"description"`
}

type AddMemberRequest struct {
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role" binding:"omitempty,oneof=MEMBER ADMIN"`
}

type MemberResponse struct {
	User types.UserResponse `json:"user"`
	Role models.Role        `json:"role"`
}

type ProjectCounts struct {
	Tasks          int64 `json:"tasks"`
	Members        int64 `json:"members"`
	CompletedTasks int64 `json:"completed_tasks"`
}

type ProjectResponse struct {
	ID          uint               `json:"id"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Owner       types.UserResponse `json:"owner"`
	Members     []MemberResponse   `json:"members"`
	Counts      ProjectCounts      `json:"counts"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

func newProjectResponse(detail services.ProjectDetail) ProjectResponse {
	members := make([]MemberResponse, 0, len(detail.Project.Memberships))
	for _, membership := range detail.Project.Memberships {
		members = append(members, MemberResponse{
			User: types.UserResponse{
				ID:    membership.User.ID,
				Name:  membership.User.Name,
				Email: membership.User.Email,
			},
			Role: membership.Role,
		})
	}

	return ProjectResponse{
		ID:          detail.Project.ID,
		Name:        detail.Project.Name,
		Description: detail.Project.Description,
		Owner: types.UserResponse{
			ID:    detail.Project.Owner.ID,
			Name:  detail.Project.Owner.Name,
			Email: detail.Project.Owner.Email,
		},
		Members: members,
		Counts: ProjectCounts{
			Tasks:          detail.TaskCount,
			Members:        detail.MemberCount,
			CompletedTasks: detail.CompletedTasks,
		},
		CreatedAt: detail.Project.CreatedAt,
		UpdatedAt: detail.Project.UpdatedAt,
	}
}

func (h *ProjectHandler) Create(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)
	if err != nil {
		unauthorized(ctx)
		return
	}

	var body CreateProjectRequest
	if err := ctx.ShouldBindJSON(&body); err != nil {
		bindError(ctx, err)
		return
	}

	detail, err := h.projects.Create(body.Name, body.Description, userID)
	if err != nil {
		fail(ctx, err)
		return
	}

	success(ctx, http.StatusCreated, newProjectResponse(*detail), "Project created successfully")
}

func (h *ProjectHandler) List(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)
	if err != nil {
		unauthorized(ctx)
		return
	}

	page, limit := utils.GetPageParams(ctx, services.DefaultProjectLimit)

	details, meta, err := h.projects.List(userID, page, limit)
	if err != nil {
		fail(ctx, err)
		return
	}

	responses := make([]ProjectResponse, 0, len(details))
	for _, detail := range details {
		responses = append(responses, newProjectResponse(detail))
	}

	paginated(ctx, responses, meta, "Projects retrieved successfully")
}

func (h *ProjectHandler) Get(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)
	if err != nil {
		unauthorized(ctx)
		return
	}

	projectID, err := utils.GetIDParam(ctx, "project_id")
	if err != nil {
		fail(ctx, apperr.Validation("Invalid project ID"))
		return
	}

	detail, err := h.projects.Get(projectID, userID)
	if err != nil {
		fail(ctx, err)
		return
	}

	success(ctx, http.StatusOK, newProjectResponse(*detail), "")
}

func (h *ProjectHandler) Update(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)
	if err != nil {
		unauthorized(ctx)
		return
	}

	projectID, err := utils.GetIDParam(ctx, "project_id")
	if err != nil {
		fail(ctx, apperr.Validation("Invalid project ID"))
		return
	}

	var body UpdateProjectRequest
	if err := ctx.ShouldBindJSON(&body); err != nil {
		bindError(ctx, err)
		return
	}

	detail, err := h.projects.Update(projectID, services.ProjectPatch{
		Name:        body.Name,
		Description: body.Description,
	}, userID)
	if err != nil {
		fail(ctx, err)
		return
	}

	success(ctx, http.StatusOK, newProjectResponse(*detail), "Project updated successfully")
}

func (h *ProjectHandler) Delete(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)
	if err != nil {
		unauthorized(ctx)
		return
	}

	projectID, err := utils.GetIDParam(ctx, "project_id")
	if err != nil {
		fail(ctx, apperr.Validation("Invalid project ID"))
		return
	}

	if err := h.projects.Delete(projectID, userID); err != nil {
		fail(ctx, err)
		return
	}

	success(ctx, http.StatusOK, nil, "Project deleted successfully")
}

func (h *ProjectHandler) AddMember(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)
	if err != nil {
		unauthorized(ctx)
		return
	}

	projectID, err := utils.GetIDParam(ctx, "project_id")
	if err != nil {
		fail(ctx, apperr.Validation("Invalid project ID"))
		return
	}

	var body AddMemberRequest
	if err := ctx.ShouldBindJSON(&body); err != nil {
		bindError(ctx, err)
		return
	}

	membership, err := h.projects.AddMember(projectID, body.Email, models.Role(body.Role), userID)
	if err != nil {
		fail(ctx, err)
		return
	}

	success(ctx, http.StatusOK, MemberResponse{
		User: types.UserResponse{
			ID:    membership.User.ID,
			Name:  membership.User.Name,
			Email: membership.User.Email,
		},
		Role: membership.Role,
	}, "Member added successfully")
}

func (h *ProjectHandler) RemoveMember(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)
	if err != nil {
		unauthorized(ctx)
		return
	}

	projectID, err := utils.GetIDParam(ctx, "project_id")
	if err != nil {
		fail(ctx, apperr.Validation("Invalid project ID"))
		return
	}

	targetUserID, err := utils.GetIDParam(ctx, "user_id")
	if err != nil {
		fail(ctx, apperr.Validation("Invalid user ID"))
		return
	}

	if err := h.projects.RemoveMember(projectID, targetUserID, userID); err != nil {
		fail(ctx, err)
		return
	}

	success(ctx, http.StatusOK, nil, "Member removed successfully")
}
