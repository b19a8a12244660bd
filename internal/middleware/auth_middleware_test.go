package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/fitzone-app/backend/internal/models"
)

func signToken(t *testing.T, secret, role string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": uuid.New().String(),
		"role":    role,
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	return signed
}

func newAuthRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	authed := r.Group("/", JWTAuthMiddleware())
	authed.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"is_admin": c.GetBool("is_admin")})
	})
	authed.GET("/admin", AdminMiddleware(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func TestJWTAuthMiddleware(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	r := newAuthRouter()

	tests := []struct {
		name       string
		authHeader string
		path       string
		wantStatus int
	}{
		{"missing header", "", "/me", http.StatusUnauthorized},
		{"malformed header", "Token abc", "/me", http.StatusUnauthorized},
		{"garbage token", "Bearer not-a-token", "/me", http.StatusUnauthorized},
		{"wrong secret", "Bearer " + signToken(t, "other-secret", models.RoleUser), "/me", http.StatusUnauthorized},
		{"valid user token", "Bearer " + signToken(t, "test-secret", models.RoleUser), "/me", http.StatusOK},
		{"user blocked from admin route", "Bearer " + signToken(t, "test-secret", models.RoleUser), "/admin", http.StatusForbidden},
		{"admin passes admin gate", "Bearer " + signToken(t, "test-secret", models.RoleAdmin), "/admin", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			w := httptest.NewRecorder()

			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}

func TestSeedRoleNamesCoverAuthRoles(t *testing.T) {
	seeded := map[string]bool{}
	for _, name := range models.SeedRoleNames() {
		seeded[name] = true
	}
	if !seeded[models.RoleUser] || !seeded[models.RoleAdmin] {
		t.Errorf("seeded roles %v must include %q and %q", models.SeedRoleNames(), models.RoleUser, models.RoleAdmin)
	}
}
