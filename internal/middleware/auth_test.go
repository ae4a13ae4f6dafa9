package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"evergreenrx.com/pharmanotify/internal/entity"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type fakeUserRepo struct {
	users map[string]*entity.User
}

func (f *fakeUserRepo) Create(context.Context, *entity.User) error { return nil }
func (f *fakeUserRepo) FindByEmail(context.Context, string) (*entity.User, error) {
	return nil, nil
}
func (f *fakeUserRepo) FindRoleByName(context.Context, string) (*entity.Role, error) {
	return nil, nil
}
func (f *fakeUserRepo) Count(context.Context) (int64, error) { return 0, nil }

func (f *fakeUserRepo) FindByID(_ context.Context, id string) (*entity.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func signToken(t *testing.T, secret, subject string) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatal(err)
	}
	return token
}

func setupRouter(t *testing.T, repo *fakeUserRepo, requireAdmin bool) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	m := NewAuthMiddleware(repo)
	router := gin.New()
	group := router.Group("/", m.RequireAuth())
	if requireAdmin {
		group.Use(m.RequireAdmin())
	}
	group.GET("/protected", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetString("user_id")})
	})
	return router
}

func TestRequireAuth(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	router := setupRouter(t, &fakeUserRepo{}, false)

	t.Run("rejects missing token", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		router.ServeHTTP(w, req)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", w.Code)
		}
	})

	t.Run("rejects forged token", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, "wrong-secret", "u1"))
		router.ServeHTTP(w, req)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", w.Code)
		}
	})

	t.Run("accepts bearer header", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, "test-secret", "u1"))
		router.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", w.Code)
		}
	})

	t.Run("accepts token query parameter for websocket upgrades", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected?token="+signToken(t, "test-secret", "u1"), nil)
		router.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", w.Code)
		}
	})
}

func TestRequireAdmin(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	adminID := uuid.New()
	staffID := uuid.New()
	repo := &fakeUserRepo{users: map[string]*entity.User{
		adminID.String(): {ID: adminID, Role: entity.Role{Name: entity.RoleAdmin}},
		staffID.String(): {ID: staffID, Role: entity.Role{Name: entity.RolePharmacist}},
	}}
	router := setupRouter(t, repo, true)

	t.Run("admin passes", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, "test-secret", adminID.String()))
		router.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", w.Code)
		}
	})

	t.Run("non-admin is forbidden", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, "test-secret", staffID.String()))
		router.ServeHTTP(w, req)
		if w.Code != http.StatusForbidden {
			t.Fatalf("status = %d, want 403", w.Code)
		}
	})
}

func TestRequireWebhookSecret(t *testing.T) {
	t.Setenv("WEBHOOK_SECRET", "hook-secret")
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.POST("/hook", RequireWebhookSecret(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/hook", nil)
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("missing secret: status = %d, want 401", w.Code)
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/hook", nil)
	req.Header.Set("X-Webhook-Secret", "hook-secret")
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("valid secret: status = %d, want 200", w.Code)
	}
}
