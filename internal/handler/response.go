package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/careloop/hms-api/pkg/errors"
)

type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func NewSuccessResponse(data interface{}) *Response {
	return &Response{
		Status: "success",
		Data:   data,
	}
}

func NewErrorResponse(message string) *Response {
	return &Response{
		Status:  "error",
		Message: message,
	}
}

// StatusForError maps an application error kind onto an HTTP status.
// Guard failures (capacity, conflict, transition) are client-visible
// business outcomes, not server errors.
func StatusForError(err error) int {
	switch apperrors.KindOf(err) {
	case apperrors.KindValidation:
		return http.StatusBadRequest
	case apperrors.KindNotFound:
		return http.StatusNotFound
	case apperrors.KindConflict:
		return http.StatusConflict
	case apperrors.KindCapacity, apperrors.KindInvalidTransition:
		return http.StatusUnprocessableEntity
	case apperrors.KindTransient:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Error writes the standard error envelope for err.
func Error(c *gin.Context, err error) {
	c.JSON(StatusForError(err), NewErrorResponse(err.Error()))
}
