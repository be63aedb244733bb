package handler

import (
	"errors"
	"net/http"

	"quantum-receipt-gateway/pkg/apperror"

	"github.com/gin-gonic/gin"
)

// bindJSON decodes the request body into v. Oversized bodies map to 413,
// everything else to a validation error.
func bindJSON(c *gin.Context, v interface{}) error {
	err := c.ShouldBindJSON(v)
	if err == nil {
		return nil
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return apperror.New(apperror.CodeValidation, "Request body too large", http.StatusRequestEntityTooLarge)
	}
	return apperror.Validation(err.Error())
}
