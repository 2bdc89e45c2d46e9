package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/synergy-dev/synergy/internal/apperr"
	"github.com/synergy-dev/synergy/internal/types"
)

func success(ctx *gin.Context, status int, data any, message string) {
	ctx.JSON(status, types.APIResponse{
		Success: true,
		Data:    data,
		Message: message,
	})
}

func paginated(ctx *gin.Context, data any, meta types.PaginationMeta, message string) {
	ctx.JSON(http.StatusOK, types.APIResponse{
		Success: true,
		Data:    data,
		Meta:    &meta,
		Message: message,
	})
}

// fail maps service errors onto the failure envelope. Anything that is not an
// *apperr.Error is an unexpected storage-layer failure and surfaces as a
// generic 500.
func fail(ctx *gin.Context, err error) {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		response := types.APIResponse{Success: false, Message: appErr.Message}
		if len(appErr.Fields) > 0 {
			response.Errors = appErr.Fields
		}
		ctx.JSON(appErr.Status, response)
		return
	}

	ctx.JSON(http.StatusInternalServerError, types.APIResponse{
		Success: false,
		Message: "Internal server error",
	})
}

// bindError converts gin binding failures into the 400 envelope, surfacing
// per-field issues when the validator produced them.
func bindError(ctx *gin.Context, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		fields := make([]apperr.FieldError, 0, len(validationErrs))
		for _, fieldErr := range validationErrs {
			fields = append(fields, apperr.FieldError{
				Field:   fieldErr.Field(),
				Message: "failed on " + fieldErr.Tag() + " validation",
			})
		}
		fail(ctx, apperr.Validation("Invalid request", fields...))
		return
	}

	fail(ctx, apperr.Validation("Invalid request"))
}

func unauthorized(ctx *gin.Context) {
	fail(ctx, apperr.Unauthorized("User not authenticated"))
}
