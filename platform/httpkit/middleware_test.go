package httpkit

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"leadscout_backend/platform/apperr"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type jwtConfig struct{ secret string }

func (c jwtConfig) GetJWTAccessSecret() string { return c.secret }

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func newAuthEngine(secret string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(AuthRequired(jwtConfig{secret: secret}))
	engine.GET("/whoami", func(c *gin.Context) {
		tenantID, ok := MustGetTenantID(c)
		if !ok {
			return
		}
		OK(c, gin.H{"tenantId": tenantID.String()})
	})
	return engine
}

func TestAuthRequired(t *testing.T) {
	const secret = "test-secret"
	userID := uuid.New()
	tenantID := uuid.New()

	valid := signToken(t, secret, jwt.MapClaims{
		"sub":       userID.String(),
		"type":      "access",
		"tenant_id": tenantID.String(),
		"exp":       time.Now().Add(time.Hour).Unix(),
	})
	noTenant := signToken(t, secret, jwt.MapClaims{
		"sub":  userID.String(),
		"type": "access",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	refresh := signToken(t, secret, jwt.MapClaims{
		"sub":  userID.String(),
		"type": "refresh",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	wrongSecret := signToken(t, "other", jwt.MapClaims{
		"sub":  userID.String(),
		"type": "access",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})

	tests := []struct {
		name   string
		header string
		query  string
		want   int
	}{
		{name: "missing token", want: http.StatusUnauthorized},
		{name: "valid bearer", header: "Bearer " + valid, want: http.StatusOK},
		{name: "valid query token", query: valid, want: http.StatusOK},
		{name: "no tenant claim", header: "Bearer " + noTenant, want: http.StatusBadRequest},
		{name: "refresh token rejected", header: "Bearer " + refresh, want: http.StatusUnauthorized},
		{name: "wrong secret", header: "Bearer " + wrongSecret, want: http.StatusUnauthorized},
	}

	engine := newAuthEngine(secret)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := "/whoami"
			if tt.query != "" {
				target += "?token=" + tt.query
			}
			req := httptest.NewRequest(http.MethodGet, target, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			engine.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestHandleErrorMapsWrappedKinds(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	err := apperr.InvalidFields("bad thresholds", []apperr.FieldError{{Field: "coldUpper", Message: "must be below warmUpper"}})
	if !HandleError(c, err) {
		t.Fatalf("expected error to be handled")
	}
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnprocessableEntity)
	}
}

func TestHandleErrorHidesUntypedErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	if !HandleError(c, errors.New("list leads: connection refused")) {
		t.Fatalf("expected error to be handled")
	}
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "connection refused") {
		t.Fatalf("cause leaked to the client: %s", rec.Body.String())
	}
	if len(c.Errors) != 1 {
		t.Fatalf("expected the cause on the gin context, got %d errors", len(c.Errors))
	}
}

func TestRequestIDEchoesHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(RequestID())
	engine.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-ID"); got != "abc-123" {
		t.Fatalf("X-Request-ID = %q, want abc-123", got)
	}
}

func TestRequireRole(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tests := []struct {
		name  string
		roles []string
		user  bool
		want  int
	}{
		{name: "admin", roles: []string{"member", "admin"}, user: true, want: http.StatusNoContent},
		{name: "member only", roles: []string{"member"}, user: true, want: http.StatusForbidden},
		{name: "anonymous", want: http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := gin.New()
			engine.Use(func(c *gin.Context) {
				if tt.user {
					c.Set(ContextUserIDKey, uuid.New())
					c.Set(ContextRolesKey, tt.roles)
				}
				c.Next()
			})
			engine.PUT("/settings", RequireRole("admin"), func(c *gin.Context) { NoContent(c) })

			rec := httptest.NewRecorder()
			engine.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/settings", nil))
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}
