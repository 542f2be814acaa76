package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

const reconcileKey = "reconcile-key-0f3a"

// pipelineRouter mounts a stand-in reconcile endpoint that counts how often it ran.
func pipelineRouter(apiKey string, runs *int) *gin.Engine {
	r := gin.New()
	r.Use(ErrorHandler())
	g := r.Group("/pipeline", PipelineAuthMiddleware(apiKey))
	g.POST("/reconcile", func(c *gin.Context) {
		*runs++
		c.JSON(http.StatusOK, gin.H{"accounts_checked": 0, "accounts_corrected": 0})
	})
	return r
}

func parseBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse response body: %v", err)
	}
	return result
}

func TestPipelineAuthMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		configured string
		header     map[string]string
		wantStatus int
		wantCode   string
	}{
		{"matching key runs the job", reconcileKey, map[string]string{"X-API-Key": reconcileKey}, http.StatusOK, ""},
		{"header name is case-insensitive", reconcileKey, map[string]string{"x-api-key": reconcileKey}, http.StatusOK, ""},
		{"wrong key", reconcileKey, map[string]string{"X-API-Key": "reconcile-key-0f3b"}, http.StatusUnauthorized, "INVALID_API_KEY"},
		{"prefix of key", reconcileKey, map[string]string{"X-API-Key": "reconcile-key"}, http.StatusUnauthorized, "INVALID_API_KEY"},
		{"no header", reconcileKey, nil, http.StatusUnauthorized, "INVALID_API_KEY"},
		{"bearer token is not a key", reconcileKey, map[string]string{"Authorization": "Bearer " + reconcileKey}, http.StatusUnauthorized, "INVALID_API_KEY"},
		{"unconfigured rejects any key", "", map[string]string{"X-API-Key": reconcileKey}, http.StatusServiceUnavailable, "PIPELINE_NOT_CONFIGURED"},
		{"unconfigured rejects empty key", "", nil, http.StatusServiceUnavailable, "PIPELINE_NOT_CONFIGURED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runs := 0
			req := httptest.NewRequest(http.MethodPost, "/pipeline/reconcile", http.NoBody)
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()
			pipelineRouter(tt.configured, &runs).ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantCode == "" {
				if runs != 1 {
					t.Errorf("expected the job to run once, ran %d times", runs)
				}
				return
			}
			if runs != 0 {
				t.Errorf("job ran %d times behind a rejected key", runs)
			}
			if code := errorCode(t, rec); code != tt.wantCode {
				t.Errorf("error code = %q, want %q", code, tt.wantCode)
			}
		})
	}
}
