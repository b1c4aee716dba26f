package helper

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	. "devdash/internal/adapter/http/validation"
	"devdash/internal/core/domain"
	"devdash/internal/core/model/response"
)

func SendSuccess(c *gin.Context, statusCode int, data any, message ...string) {
	response := response.SuccessResponse{
		Data: data,
	}

	if len(message) > 0 && message[0] != "" {
		response.Message = message[0]
	}

	c.JSON(statusCode, response)
}

func SendError(c *gin.Context, statusCode int, code string, errors []response.ValidationError, details ...any) {
	errorResponse := response.ErrorResponse{
		Error: response.ResponseError{
			Code:   code,
			Errors: errors,
		},
	}

	if len(details) > 0 {
		errorResponse.Error.Details = details[0]
	}

	c.JSON(statusCode, errorResponse)
}

func SendValidationError(c *gin.Context, err error) {
	validationErrors := FormatValidationErrors(err)
	SendError(c, http.StatusBadRequest, "VALIDATION_ERROR", validationErrors)
}

func SendInternalError(c *gin.Context, message string, details ...any) {
	errors := []response.ValidationError{
		{
			Field:   "server",
			Message: message,
		},
	}

	SendError(c, http.StatusInternalServerError, "INTERNAL_ERROR", errors, details...)
}

func SendBadRequestError(c *gin.Context, field string, message string) {
	errors := []response.ValidationError{
		{
			Field:   field,
			Message: message,
		},
	}

	SendError(c, http.StatusBadRequest, "BAD_REQUEST", errors)
}

func SendNotFoundError(c *gin.Context, message string) {
	errors := []response.ValidationError{
		{
			Field:   "resource",
			Message: message,
		},
	}

	SendError(c, http.StatusNotFound, "NOT_FOUND", errors)
}

func SendUpstreamError(c *gin.Context, message string) {
	errors := []response.ValidationError{
		{
			Field:   "upstream",
			Message: message,
		},
	}

	SendError(c, http.StatusBadGateway, "UPSTREAM_ERROR", errors)
}

// SendTaskError maps task service errors onto the error envelope.
func SendTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrTaskNotFound):
		SendNotFoundError(c, err.Error())
	case errors.Is(err, domain.ErrEmptyText):
		SendError(c, http.StatusBadRequest, "VALIDATION_ERROR", []response.ValidationError{
			{Field: "text", Message: "Task text cannot be empty"},
		})
	case errors.Is(err, domain.ErrInvalidTask):
		SendBadRequestError(c, "task", err.Error())
	case errors.Is(err, domain.ErrInvalidCursor):
		SendBadRequestError(c, "cursor", err.Error())
	default:
		if validationErrors := FormatValidationErrors(err); len(validationErrors) > 0 {
			SendError(c, http.StatusBadRequest, "VALIDATION_ERROR", validationErrors)
			return
		}

		SendInternalError(c, "Unexpected error")
	}
}
