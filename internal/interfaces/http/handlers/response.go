// internal/interfaces/http/handlers/response.go
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sellasticpots/shop-backend/internal/pkg/apperr"
)

// respondError maps a service error onto an HTTP status and JSON body
func respondError(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)

	body := gin.H{"error": errorMessage(err, status)}

	var verr *apperr.ValidationError
	if errors.As(err, &verr) {
		body["field"] = verr.Field
		body["error"] = verr.Message
	}

	var berr *apperr.BackendError
	if errors.As(err, &berr) {
		body["error"] = berr.Err.Error()
	}

	if status >= http.StatusInternalServerError {
		c.Error(err)
	}

	c.JSON(status, body)
}

func errorMessage(err error, status int) string {
	switch {
	case errors.Is(err, apperr.ErrAuthRequired):
		return "authentication required"
	case errors.Is(err, apperr.ErrNotFound):
		return "not found"
	case errors.Is(err, apperr.ErrDuplicate):
		return "already exists"
	}
	if status >= http.StatusInternalServerError {
		return "internal server error"
	}
	return err.Error()
}

// parseUintParam parses a numeric path parameter
func parseUintParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return uint(id), true
}
