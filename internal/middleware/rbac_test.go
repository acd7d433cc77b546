package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/campushub/activity-points-api/internal/models"
)

func serveWithClaims(t *testing.T, claims *models.JWTClaims, path string, allowed ...string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	recorder := httptest.NewRecorder()
	router := gin.New()
	router.Use(func(c *gin.Context) {
		if claims != nil {
			c.Set(ContextUserKey, claims)
		}
	})
	router.GET("/dashboard/:usn", RBAC(allowed...), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, path, nil)
	router.ServeHTTP(recorder, req)
	return recorder
}

func TestRBACAdminPasses(t *testing.T) {
	claims := &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin}
	recorder := serveWithClaims(t, claims, "/dashboard/1BY21CS001", string(models.RoleAdmin), "SELF")
	if recorder.Code != http.StatusNoContent {
		t.Fatalf("unexpected status: %d", recorder.Code)
	}
}

func TestRBACSelfMatchesOwnUSN(t *testing.T) {
	claims := &models.JWTClaims{UserID: "1BY21CS001", Role: models.RoleStudent}
	recorder := serveWithClaims(t, claims, "/dashboard/1BY21CS001", string(models.RoleAdmin), "SELF")
	if recorder.Code != http.StatusNoContent {
		t.Fatalf("unexpected status: %d", recorder.Code)
	}
}

func TestRBACSelfRejectsOtherUSN(t *testing.T) {
	claims := &models.JWTClaims{UserID: "1BY21CS001", Role: models.RoleStudent}
	recorder := serveWithClaims(t, claims, "/dashboard/1BY21CS002", string(models.RoleAdmin), "SELF")
	if recorder.Code != http.StatusForbidden {
		t.Fatalf("unexpected status: %d", recorder.Code)
	}
}

func TestRBACStudentWithoutSelfSentinel(t *testing.T) {
	claims := &models.JWTClaims{UserID: "1BY21CS001", Role: models.RoleStudent}
	recorder := serveWithClaims(t, claims, "/dashboard/1BY21CS001", string(models.RoleAdmin))
	if recorder.Code != http.StatusForbidden {
		t.Fatalf("unexpected status: %d", recorder.Code)
	}
}

func TestRBACMissingClaims(t *testing.T) {
	recorder := serveWithClaims(t, nil, "/dashboard/1BY21CS001", string(models.RoleAdmin), "SELF")
	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: %d", recorder.Code)
	}
}
