package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/synergy-dev/synergy/internal/auth"
	"github.com/synergy-dev/synergy/internal/models"
	"github.com/synergy-dev/synergy/internal/services"
	"github.com/synergy-dev/synergy/internal/types"
	"github.com/synergy-dev/synergy/internal/utils"
)

type AuthHandler struct {
	users  *services.UserService
	tokens *auth.Manager
}

func NewAuthHandler(users *services.UserService, tokens *auth.Manager) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens}
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UpdateProfileRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email" binding:"omitempty,email"`
}

type ProfileResponse struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type SessionResponse struct {
	User  types.UserResponse `json:"user"`
	Token string             `json:"token"`
}

func (h *AuthHandler) Register(ctx *gin.Context) {
	var body RegisterRequest

	if err := ctx.ShouldBindJSON(&body); err != nil {
		bindError(ctx, err)
		return
	}

	user, err := h.users.Register(body.Name, body.Email, body.Password)
	if err != nil {
		fail(ctx, err)
		return
	}

	token, err := h.tokens.Generate(user.ID, user.Email, user.Role)
	if err != nil {
		fail(ctx, err)
		return
	}

	success(ctx, http.StatusCreated, SessionResponse{
		User:  types.UserResponse{ID: user.ID, Name: user.Name, Email: user.Email},
		Token: token,
	}, "User registered successfully")
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var body LoginRequest

	if err := ctx.ShouldBindJSON(&body); err != nil {
		bindError(ctx, err)
		return
	}

	user, err := h.users.Authenticate(body.Email, body.Password)
	if err != nil {
		fail(ctx, err)
		return
	}

	token, err := h.tokens.Generate(user.ID, user.Email, user.Role)
	if err != nil {
		fail(ctx, err)
		return
	}

	success(ctx, http.StatusOK, SessionResponse{
		User:  types.UserResponse{ID: user.ID, Name: user.Name, Email: user.Email},
		Token: token,
	}, "Logged in successfully")
}

func (h *AuthHandler) Me(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)
	if err != nil {
		unauthorized(ctx)
		return
	}

	user, err := h.users.Profile(currentUser.ID)
	if err != nil {
		fail(ctx, err)
		return
	}

	success(ctx, http.StatusOK, newProfileResponse(user), "")
}

func (h *AuthHandler) UpdateProfile(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)
	if err != nil {
		unauthorized(ctx)
		return
	}

	var body UpdateProfileRequest
	if err := ctx.ShouldBindJSON(&body); err != nil {
		bindError(ctx, err)
		return
	}

	user, err := h.users.UpdateProfile(currentUser.ID, services.ProfilePatch{
		Name:  body.Name,
		Email: body.Email,
	})
	if err != nil {
		fail(ctx, err)
		return
	}

	success(ctx, http.StatusOK, newProfileResponse(user), "Profile updated successfully")
}

func newProfileResponse(user *models.User) ProfileResponse {
	return ProfileResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}
