package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenlearn/backend/internal/auth"
)

func newProtectedRouter(svc *auth.JWTService, roles ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	grp := r.Group("", JWT(svc))
	if len(roles) > 0 {
		grp.Use(RequireRole(roles...))
	}
	grp.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.MustGet(ContextUserID).(uuid.UUID)})
	})
	return r
}

func get(r *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestJWTMiddleware(t *testing.T) {
	svc := auth.NewJWTService("secret", 1)

	t.Run("missing header is 401", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, get(newProtectedRouter(svc), "").Code)
	})

	t.Run("malformed header is 401", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, get(newProtectedRouter(svc), "Token abc").Code)
	})

	t.Run("invalid token is 401", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, get(newProtectedRouter(svc), "Bearer bogus").Code)
	})

	t.Run("valid token passes claims through", func(t *testing.T) {
		token, err := svc.Generate(uuid.New(), "s@example.com", "student")
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, get(newProtectedRouter(svc), "Bearer "+token).Code)
	})
}

func TestRequireRole(t *testing.T) {
	svc := auth.NewJWTService("secret", 1)

	t.Run("student blocked from admin route", func(t *testing.T) {
		token, err := svc.Generate(uuid.New(), "s@example.com", "student")
		require.NoError(t, err)
		assert.Equal(t, http.StatusForbidden, get(newProtectedRouter(svc, "admin"), "Bearer "+token).Code)
	})

	t.Run("admin allowed", func(t *testing.T) {
		token, err := svc.Generate(uuid.New(), "a@example.com", "admin")
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, get(newProtectedRouter(svc, "admin"), "Bearer "+token).Code)
	})
}
