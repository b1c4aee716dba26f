package handler

import (
	"github.com/gin-gonic/gin"

	. "devdash/internal/adapter/http/helper"
	. "devdash/internal/adapter/http/validation"
)

// bindJSON decodes the body into T and runs the validator over it. On
// failure the error response is already written and ok is false.
func bindJSON[T any](c *gin.Context) (params T, ok bool) {
	if err := c.ShouldBindJSON(&params); err != nil {
		SendBadRequestError(c, "request", "Invalid request parameters")
		return params, false
	}

	if err := Validator.Struct(params); err != nil {
		SendValidationError(c, err)
		return params, false
	}

	return params, true
}
