package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"lingua_backend/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-test-secret-test-secret"

func newAuthRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", AuthMiddleware(testSecret), func(c *gin.Context) {
		util.Success(c, util.GetUserFromContext(c).UserID)
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	r := newAuthRouter()

	valid, err := util.GenerateJWT(7, "ana@example.com", testSecret, time.Hour)
	require.NoError(t, err)
	expired, err := util.GenerateJWT(7, "ana@example.com", testSecret, -time.Hour)
	require.NoError(t, err)
	foreign, err := util.GenerateJWT(7, "ana@example.com", "another-secret-another-secret-xx", time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"valid token", "Bearer " + valid, http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"expired token", "Bearer " + expired, http.StatusUnauthorized},
		{"wrong secret", "Bearer " + foreign, http.StatusUnauthorized},
		{"garbage", "Bearer not-a-jwt", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}
