package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/Willysmile/cash-stuffing/internal/config"
	apperrors "github.com/Willysmile/cash-stuffing/internal/errors"
	"github.com/Willysmile/cash-stuffing/internal/logger"
	"github.com/Willysmile/cash-stuffing/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test", "")
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	body := parseBody(t, rec)
	errObj, ok := body["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object in response, got %s", rec.Body.String())
	}
	code, _ := errObj["code"].(string)
	return code
}

func TestErrorHandler(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/app", func(c *gin.Context) {
		_ = c.Error(apperrors.NotFound(apperrors.ErrEnvelopeNotFound, "Envelope", "abc"))
	})
	r.GET("/wrapped", func(c *gin.Context) {
		_ = c.Error(apperrors.Wrap(apperrors.ErrInternalServer, errors.New("connection reset")))
	})
	r.GET("/plain", func(c *gin.Context) {
		_ = c.Error(errors.New("boom"))
	})
	r.GET("/panic", func(c *gin.Context) {
		panic("unexpected")
	})
	r.GET("/ok", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	tests := []struct {
		path       string
		wantStatus int
		wantCode   string
	}{
		{"/app", http.StatusNotFound, "ENVELOPE_NOT_FOUND"},
		{"/wrapped", http.StatusInternalServerError, "INTERNAL_ERROR"},
		{"/plain", http.StatusInternalServerError, "INTERNAL_ERROR"},
		{"/panic", http.StatusInternalServerError, "INTERNAL_ERROR"},
		{"/ok", http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, http.NoBody))

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantCode != "" {
				if code := errorCode(t, rec); code != tt.wantCode {
					t.Errorf("error code = %q, want %q", code, tt.wantCode)
				}
			}
		})
	}

	t.Run("internal cause is not rendered", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/wrapped", http.NoBody))
		body := parseBody(t, rec)
		msg := body["error"].(map[string]interface{})["message"].(string)
		if msg != apperrors.ErrInternalServer.Message {
			t.Errorf("expected generic message, got %q", msg)
		}
	})
}

func setupAuthRouter() *gin.Engine {
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/me", AuthMiddleware(), func(c *gin.Context) {
		id, _ := UserID(c)
		c.JSON(http.StatusOK, gin.H{"user_id": id})
	})
	return r
}

func authRequest(r *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", http.NoBody)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestAuthMiddleware(t *testing.T) {
	user := &models.User{Base: models.Base{ID: "0190a5f4-7c3b-7d2e-8f1a-2b3c4d5e6f70"}, Email: "a@test.com"}
	access, err := GenerateAccessToken(user)
	if err != nil {
		t.Fatalf("failed to sign access token: %v", err)
	}
	refresh, err := GenerateRefreshToken(user)
	if err != nil {
		t.Fatalf("failed to sign refresh token: %v", err)
	}

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, &JWTClaims{
		UserID:    user.ID,
		TokenType: tokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	})
	expiredToken, _ := expired.SignedString([]byte(config.Get().JWTSecret))

	forged := jwt.NewWithClaims(jwt.SigningMethodHS256, &JWTClaims{
		UserID:           user.ID,
		TokenType:        tokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{Issuer: tokenIssuer},
	})
	forgedToken, _ := forged.SignedString([]byte("some-other-secret"))

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"valid access token", "Bearer " + access, http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + access, http.StatusUnauthorized},
		{"refresh token rejected", "Bearer " + refresh, http.StatusUnauthorized},
		{"expired token", "Bearer " + expiredToken, http.StatusUnauthorized},
		{"wrong signing key", "Bearer " + forgedToken, http.StatusUnauthorized},
		{"garbage", "Bearer not.a.token", http.StatusUnauthorized},
	}

	r := setupAuthRouter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := authRequest(r, tt.header)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantStatus == http.StatusUnauthorized {
				if code := errorCode(t, rec); code != "UNAUTHORIZED" {
					t.Errorf("error code = %q, want UNAUTHORIZED", code)
				}
				return
			}
			if got := parseBody(t, rec)["user_id"]; got != user.ID {
				t.Errorf("user_id = %v, want %s", got, user.ID)
			}
		})
	}
}

func TestValidateRefreshToken(t *testing.T) {
	user := &models.User{Base: models.Base{ID: "0190a5f4-7c3b-7d2e-8f1a-2b3c4d5e6f71"}, Email: "b@test.com"}
	refresh, _ := GenerateRefreshToken(user)
	access, _ := GenerateAccessToken(user)

	claims, err := ValidateRefreshToken(refresh)
	if err != nil {
		t.Fatalf("expected refresh token to validate: %v", err)
	}
	if claims.UserID != user.ID {
		t.Errorf("user id = %s, want %s", claims.UserID, user.ID)
	}

	if _, err := ValidateRefreshToken(access); err == nil {
		t.Error("expected access token to be rejected as refresh token")
	}
}

func TestHashToken(t *testing.T) {
	a := HashToken("token-a")
	if len(a) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(a))
	}
	if a != HashToken("token-a") {
		t.Error("hash should be deterministic")
	}
	if a == HashToken("token-b") {
		t.Error("different tokens should hash differently")
	}
}

func TestRequestLogging(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogging())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	t.Run("generates request id", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", http.NoBody))
		if rec.Header().Get("X-Request-ID") == "" {
			t.Error("expected X-Request-ID header")
		}
	})

	t.Run("keeps valid caller id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ping", http.NoBody)
		req.Header.Set("X-Request-ID", "0190a5f4-7c3b-7d2e-8f1a-2b3c4d5e6f72")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		if got := rec.Header().Get("X-Request-ID"); got != "0190a5f4-7c3b-7d2e-8f1a-2b3c4d5e6f72" {
			t.Errorf("X-Request-ID = %q", got)
		}
	})

	t.Run("replaces malformed caller id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ping", http.NoBody)
		req.Header.Set("X-Request-ID", "<script>")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		if got := rec.Header().Get("X-Request-ID"); got == "<script>" {
			t.Error("expected malformed request id to be replaced")
		}
	})
}
