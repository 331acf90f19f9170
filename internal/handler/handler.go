// Package handler holds the helpers shared by the HTTP handlers.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/hms-api/internal/middleware"
	"github.com/jwalitptl/hms-api/internal/model"
	"github.com/jwalitptl/hms-api/pkg/httputil"
)

// Routes is implemented by every handler package.
type Routes interface {
	RegisterRoutes(*gin.RouterGroup)
}

// BindJSON decodes the body into obj and writes a 400 on failure.
func BindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		httputil.RespondWithStatus(c, http.StatusBadRequest, middleware.ValidationMessage(err))
		return false
	}
	return true
}

// UUIDParam parses a path parameter and writes a 400 when it is not a UUID.
func UUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		httputil.RespondWithStatus(c, http.StatusBadRequest, "Invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

// Caller returns the authenticated principal or writes a 401.
func Caller(c *gin.Context) (model.Principal, bool) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		httputil.RespondWithStatus(c, http.StatusUnauthorized, "Authentication is required to access this resource")
		return nil, false
	}
	return p, true
}

// OK writes a 200 success envelope.
func OK(c *gin.Context, data interface{}) {
	httputil.RespondWithSuccess(c, http.StatusOK, "", data)
}

// Created writes a 201 success envelope.
func Created(c *gin.Context, message string, data interface{}) {
	httputil.RespondWithSuccess(c, http.StatusCreated, message, data)
}
