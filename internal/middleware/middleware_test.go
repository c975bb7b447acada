package middleware

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/travelease/internal/helpers"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON %q: %v", w.Body.String(), err)
	}
	return body
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(200, c.GetString(RequestIDKey)) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if got := w.Header().Get("X-Request-ID"); got == "" || got != w.Body.String() {
		t.Errorf("generated request id header %q, body %q", got, w.Body.String())
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Header().Get("X-Request-ID"); got != "abc-123" {
		t.Errorf("incoming request id not kept: %q", got)
	}
}

func TestAuthMiddleware(t *testing.T) {
	tokens := helpers.NewTokenManager("test-secret", time.Hour)
	valid, _, err := tokens.Issue(7, "ada@example.com")
	if err != nil {
		t.Fatal(err)
	}

	r := gin.New()
	r.Use(AuthMiddleware(tokens, discard))
	r.GET("/me", func(c *gin.Context) {
		claims, ok := CurrentUser(c)
		if !ok {
			c.Status(500)
			return
		}
		c.JSON(200, gin.H{"userId": claims.UserID})
	})

	tests := []struct {
		name   string
		header string
		status int
		errMsg string
	}{
		{"missing", "", http.StatusUnauthorized, "Access token required"},
		{"wrong scheme", "Basic " + valid, http.StatusUnauthorized, "Access token required"},
		{"invalid", "Bearer not.a.token", http.StatusForbidden, "Invalid or expired token"},
		{"valid", "Bearer " + valid, http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d (%s)", w.Code, tt.status, w.Body.String())
			}
			body := decode(t, w)
			if tt.errMsg != "" {
				if body["error"] != tt.errMsg || body["success"] != false {
					t.Errorf("body = %v", body)
				}
				return
			}
			if body["userId"] != float64(7) {
				t.Errorf("userId = %v", body["userId"])
			}
		})
	}
}

func TestErrorHandler(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), ErrorHandler(discard))
	r.GET("/boom", func(c *gin.Context) {
		_ = c.Error(errors.New("database exploded"))
	})
	r.GET("/handled", func(c *gin.Context) {
		_ = c.Error(errors.New("logged only"))
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "bad input"})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", w.Code)
	}
	body := decode(t, w)
	if body["error"] != "Internal server error" || body["request_id"] == "" || body["request_id"] == nil {
		t.Errorf("body = %v", body)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/handled", nil))
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, handler response overwritten", w.Code)
	}
	if decode(t, w)["error"] != "bad input" {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"http://localhost:8080"}))
	r.GET("/", func(c *gin.Context) { c.Status(204) })

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "http://localhost:8080")
	req.Header.Set("Access-Control-Request-Method", "GET")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:8080" {
		t.Errorf("allow origin = %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Errorf("disallowed origin status = %d", w.Code)
	}
}
