package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "bukukas/internal/errors"
	"bukukas/internal/middleware"
	"bukukas/internal/models"
	"bukukas/internal/pagination"
	"bukukas/internal/policy"
	"bukukas/internal/validator"
)

// dateLayout is the wire format for calendar dates.
const dateLayout = "2006-01-02"

// Response is the success envelope.
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data"`
	Message string `json:"message,omitempty"`
}

// PageResponse is the success envelope for lists. Meta is null for short
// unpaginated lists.
type PageResponse struct {
	Success bool             `json:"success"`
	Data    any              `json:"data"`
	Message string           `json:"message,omitempty"`
	Meta    *pagination.Meta `json:"meta"`
}

// MessageResponse is the success envelope for operations without data.
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// getActor extracts the authenticated caller from the Gin context.
// Returns ErrUnauthorized if not present.
func getActor(c *gin.Context) (policy.Actor, error) {
	v, exists := c.Get(middleware.ActorKey)
	if !exists {
		return policy.Actor{}, apperrors.ErrUnauthorized
	}
	return v.(policy.Actor), nil
}

func respondWithError(c *gin.Context, err error) {
	middleware.WriteError(c, err)
}

func respond(c *gin.Context, status int, data any, message string) {
	c.JSON(status, Response{Success: true, Data: data, Message: message})
}

func respondPage[T any](c *gin.Context, page *pagination.Page[T]) {
	c.JSON(http.StatusOK, PageResponse{Success: true, Data: page.Items, Meta: page.Meta})
}

func respondMessage(c *gin.Context, message string) {
	c.JSON(http.StatusOK, MessageResponse{Success: true, Message: message})
}

// bindingError turns a Gin binding failure into a 422 with per-field messages.
func bindingError(err error) error {
	if fields := validator.Fields(err); fields != nil {
		return apperrors.WithFields(apperrors.ErrValidation, fields)
	}
	return apperrors.WithMessage(apperrors.ErrValidation, err.Error())
}

func bindJSON(c *gin.Context, obj any) error {
	if err := c.ShouldBindJSON(obj); err != nil {
		return bindingError(err)
	}
	return nil
}

func bindQuery(c *gin.Context, obj any) error {
	if err := c.ShouldBindQuery(obj); err != nil {
		return bindingError(err)
	}
	return nil
}

// parseDate parses a validated YYYY-MM-DD value.
func parseDate(field, value string) (time.Time, error) {
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, apperrors.Field(field, "The "+field+" is not a valid date.")
	}
	return models.Day(t), nil
}

// parseOptionalDate parses value when it is non-empty.
func parseOptionalDate(field, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := parseDate(field, value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func optional[T ~string](v string) *T {
	if v == "" {
		return nil
	}
	out := T(v)
	return &out
}
