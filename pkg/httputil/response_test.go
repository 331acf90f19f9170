package httputil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/jwalitptl/hms-api/pkg/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(t *testing.T, h gin.HandlerFunc) (*httptest.ResponseRecorder, Response) {
	t.Helper()
	r := gin.New()
	r.GET("/x", h)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

	var body Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func TestRespondWithSuccess(t *testing.T) {
	w, body := serve(t, func(c *gin.Context) {
		RespondWithSuccess(c, http.StatusCreated, "Created", gin.H{"id": "1"})
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, StatusSuccess, body.Status)
	assert.Equal(t, "Created", body.Message)
	assert.Equal(t, map[string]interface{}{"id": "1"}, body.Data)
}

func TestRespondWithError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		code    int
		message string
	}{
		{"not found", apperrors.NotFound("Doctor", nil), http.StatusNotFound, "Doctor not found"},
		{"bad request", apperrors.BadRequest("nope", nil), http.StatusBadRequest, "nope"},
		{"forbidden", apperrors.AccessDenied("denied"), http.StatusForbidden, "denied"},
		{"conflict", apperrors.Duplicate("taken"), http.StatusConflict, "taken"},
		{"wrapped", fmt.Errorf("outer: %w", apperrors.UnauthorizedMsg("who")), http.StatusUnauthorized, "who"},
		{"internal app error", apperrors.Internal(fmt.Errorf("db down")), http.StatusInternalServerError, "An unexpected error occurred"},
		{"plain error", fmt.Errorf("boom"), http.StatusInternalServerError, "An unexpected error occurred"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, body := serve(t, func(c *gin.Context) { RespondWithError(c, tt.err) })
			assert.Equal(t, tt.code, w.Code)
			assert.Equal(t, StatusError, body.Status)
			assert.Equal(t, tt.message, body.Message)
			assert.Nil(t, body.Data)
		})
	}
}
