package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"go-leavedesk/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(os.Getenv("JWT_SECRET")))
	assert.NoError(t, err)
	return signed
}

func TestRequireRole(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newRouter := func(allowed ...string) *gin.Engine {
		r := gin.New()
		r.GET("/guarded", func(c *gin.Context) {
			c.Set("role", c.GetHeader("X-Test-Role"))
			c.Next()
		}, middleware.RequireRole(allowed...), func(c *gin.Context) {
			c.Status(http.StatusOK)
		})
		return r
	}

	t.Run("allowed role passes", func(t *testing.T) {
		r := newRouter("admin")
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
		req.Header.Set("X-Test-Role", "admin")

		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("negative role mismatch", func(t *testing.T) {
		r := newRouter("admin")
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
		req.Header.Set("X-Test-Role", "employee")

		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("negative role never set", func(t *testing.T) {
		r := gin.New()
		r.GET("/guarded", middleware.RequireRole("admin"), func(c *gin.Context) {
			c.Status(http.StatusOK)
		})
		w := httptest.NewRecorder()

		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/guarded", nil))

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("any of several roles passes", func(t *testing.T) {
		r := newRouter("admin", "employee")
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
		req.Header.Set("X-Test-Role", "employee")

		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newRouter := func() *gin.Engine {
		r := gin.New()
		r.GET("/me", middleware.AuthMiddleware(), func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"employee_id": c.GetString("employee_id"),
				"role":        c.GetString("role"),
			})
		})
		return r
	}

	t.Run("valid bearer token loads identity", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "test-secret")

		employeeID := uuid.New().String()
		token := signToken(t, jwt.MapClaims{
			"user_id":     uuid.New().String(),
			"employee_id": employeeID,
			"role":        "employee",
			"iat":         time.Now().Unix(),
			"exp":         time.Now().Add(time.Hour).Unix(),
		})

		r := newRouter()
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)

		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), employeeID)
	})

	t.Run("negative missing token", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "test-secret")

		r := newRouter()
		w := httptest.NewRecorder()

		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("negative expired token", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "test-secret")

		token := signToken(t, jwt.MapClaims{
			"user_id":     uuid.New().String(),
			"employee_id": uuid.New().String(),
			"role":        "employee",
			"iat":         time.Now().Add(-2 * time.Hour).Unix(),
			"exp":         time.Now().Add(-time.Hour).Unix(),
		})

		r := newRouter()
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)

		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "expired")
	})

	t.Run("negative wrong signing key", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "other-secret")
		token := signToken(t, jwt.MapClaims{
			"user_id":     uuid.New().String(),
			"employee_id": uuid.New().String(),
			"role":        "employee",
			"exp":         time.Now().Add(time.Hour).Unix(),
		})
		t.Setenv("JWT_SECRET", "test-secret")

		r := newRouter()
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)

		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
