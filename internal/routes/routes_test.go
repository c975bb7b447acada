package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/travelease/internal/config"
	"github.com/joshua-takyi/travelease/internal/connect"
	"github.com/joshua-takyi/travelease/internal/container"
	"github.com/joshua-takyi/travelease/internal/helpers"
	"github.com/joshua-takyi/travelease/internal/models"
)

type testServer struct {
	t      *testing.T
	router *gin.Engine
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()
	db, err := connect.OpenDatabase(ctx, &config.Config{
		DBDriver:       "sqlite",
		DBName:         filepath.Join(t.TempDir(), "routes"),
		DBMaxOpenConns: 4,
	})
	if err != nil {
		t.Fatalf("OpenDatabase: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	repo := models.SQLNewRepo(db)
	if _, err := repo.Migrate(ctx); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	if _, err := models.SeedIfEmpty(ctx, repo); err != nil {
		t.Fatalf("SeedIfEmpty: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tokens := helpers.NewTokenManager("routes-test-secret", time.Hour)
	c := container.NewContainer(logger, db, nil, "", tokens)
	return &testServer{t: t, router: SetupRoutes(c, []string{"*"})}
}

func (s *testServer) do(method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	s.t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			s.t.Fatal(err)
		}
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) expect(w *httptest.ResponseRecorder, status int) map[string]interface{} {
	s.t.Helper()
	if w.Code != status {
		s.t.Fatalf("status = %d, want %d: %s", w.Code, status, w.Body.String())
	}
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		s.t.Fatalf("invalid JSON %q: %v", w.Body.String(), err)
	}
	return body
}

func (s *testServer) register(email string) string {
	s.t.Helper()
	body := s.expect(s.do(http.MethodPost, "/api/auth/register", map[string]string{
		"firstName": "Ada",
		"lastName":  "Lovelace",
		"email":     email,
		"password":  "secret123",
		"phone":     "0400000000",
		"address":   "1 Analytical Way",
	}, ""), http.StatusCreated)
	token, _ := body["token"].(string)
	if token == "" {
		s.t.Fatalf("register returned no token: %v", body)
	}
	return token
}

// packageIDs maps package names to ids from the public listing.
func (s *testServer) packageIDs() map[string]float64 {
	s.t.Helper()
	body := s.expect(s.do(http.MethodGet, "/api/packages", nil, ""), http.StatusOK)
	ids := make(map[string]float64)
	for _, p := range body["packages"].([]interface{}) {
		pkg := p.(map[string]interface{})
		ids[pkg["name"].(string)] = pkg["id"].(float64)
	}
	return ids
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	body := s.expect(s.do(http.MethodGet, "/api/health", nil, ""), http.StatusOK)
	if body["status"] != "OK" || body["database"] != "connected" {
		t.Errorf("health = %v", body)
	}
}

func TestCatalogRoutes(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		path   string
		status int
		count  int
	}{
		{"/api/packages", http.StatusOK, 10},
		{"/api/packages?category=all", http.StatusOK, 10},
		{"/api/packages?category=domestic", http.StatusOK, 5},
		{"/api/packages?category=international", http.StatusOK, 5},
		{"/api/packages?category=space", http.StatusBadRequest, 0},
		{"/api/packages/search?q=australia", http.StatusOK, 5},
		{"/api/packages/search?q=zzzz", http.StatusOK, 0},
		{"/api/packages/search", http.StatusBadRequest, 0},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			body := s.expect(s.do(http.MethodGet, tt.path, nil, ""), tt.status)
			if tt.status != http.StatusOK {
				if body["success"] != false {
					t.Errorf("error body = %v", body)
				}
				return
			}
			pkgs, ok := body["packages"].([]interface{})
			if !ok {
				t.Fatalf("packages missing or null: %v", body)
			}
			if len(pkgs) != tt.count {
				t.Errorf("got %d packages, want %d", len(pkgs), tt.count)
			}
		})
	}

	ids := s.packageIDs()
	reef := ids["Great Barrier Reef Adventure"]
	body := s.expect(s.do(http.MethodGet, "/api/packages/"+jsonID(reef), nil, ""), http.StatusOK)
	pkg := body["package"].(map[string]interface{})
	if pkg["price"] != 599.0 {
		t.Errorf("reef price = %v", pkg["price"])
	}
	if incl, ok := pkg["inclusions"].([]interface{}); !ok || len(incl) == 0 {
		t.Errorf("inclusions = %v", pkg["inclusions"])
	}

	s.expect(s.do(http.MethodGet, "/api/packages/99999", nil, ""), http.StatusNotFound)
	s.expect(s.do(http.MethodGet, "/api/packages/abc", nil, ""), http.StatusBadRequest)
}

func TestAuthRoutes(t *testing.T) {
	s := newTestServer(t)
	token := s.register("ada@example.com")

	body := s.expect(s.do(http.MethodPost, "/api/auth/register", map[string]string{
		"firstName": "Ada", "lastName": "Again", "email": "ADA@example.com",
		"password": "secret123", "phone": "1", "address": "2",
	}, ""), http.StatusConflict)
	if body["success"] != false {
		t.Errorf("duplicate body = %v", body)
	}

	body = s.expect(s.do(http.MethodPost, "/api/auth/register", map[string]string{"email": "bad"}, ""), http.StatusBadRequest)
	if details, ok := body["details"].([]interface{}); !ok || len(details) == 0 {
		t.Errorf("validation details = %v", body["details"])
	}

	wrongPassword := s.expect(s.do(http.MethodPost, "/api/auth/login",
		map[string]string{"email": "ada@example.com", "password": "nope"}, ""), http.StatusUnauthorized)
	unknownEmail := s.expect(s.do(http.MethodPost, "/api/auth/login",
		map[string]string{"email": "who@example.com", "password": "nope"}, ""), http.StatusUnauthorized)
	if wrongPassword["error"] != "Invalid email or password" || wrongPassword["error"] != unknownEmail["error"] {
		t.Errorf("login failures distinguishable: %v vs %v", wrongPassword, unknownEmail)
	}

	body = s.expect(s.do(http.MethodPost, "/api/auth/login",
		map[string]string{"email": "ada@example.com", "password": "secret123"}, ""), http.StatusOK)
	if body["token"] == "" || body["user"] == nil {
		t.Errorf("login body = %v", body)
	}
	if _, leaked := body["user"].(map[string]interface{})["password"]; leaked {
		t.Error("password hash serialised")
	}

	for _, path := range []string{"/api/user/profile", "/api/auth/me"} {
		body = s.expect(s.do(http.MethodGet, path, nil, token), http.StatusOK)
		if body["user"].(map[string]interface{})["email"] != "ada@example.com" {
			t.Errorf("%s user = %v", path, body["user"])
		}
	}

	body = s.expect(s.do(http.MethodPut, "/api/auth/profile", map[string]string{"phone": "0499999999"}, token), http.StatusOK)
	if body["user"].(map[string]interface{})["phone"] != "0499999999" {
		t.Errorf("updated user = %v", body["user"])
	}

	s.expect(s.do(http.MethodPut, "/api/user/password",
		map[string]string{"currentPassword": "wrong", "newPassword": "another1"}, token), http.StatusUnauthorized)
	s.expect(s.do(http.MethodPut, "/api/user/password",
		map[string]string{"currentPassword": "secret123", "newPassword": "another1"}, token), http.StatusOK)
	s.expect(s.do(http.MethodPost, "/api/auth/login",
		map[string]string{"email": "ada@example.com", "password": "another1"}, ""), http.StatusOK)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)

	body := s.expect(s.do(http.MethodGet, "/api/bookings", nil, ""), http.StatusUnauthorized)
	if body["error"] != "Access token required" {
		t.Errorf("missing token body = %v", body)
	}
	body = s.expect(s.do(http.MethodGet, "/api/bookings", nil, "garbage"), http.StatusForbidden)
	if body["error"] != "Invalid or expired token" {
		t.Errorf("bad token body = %v", body)
	}

	token := s.register("ada@example.com")
	if w := s.do(http.MethodGet, "/api/cart", nil, token); w.Code != http.StatusNotFound {
		t.Errorf("cart route without MongoDB = %d, want 404", w.Code)
	}
}

func TestBookingFlow(t *testing.T) {
	s := newTestServer(t)
	token := s.register("ada@example.com")
	other := s.register("grace@example.com")
	ids := s.packageIDs()
	reef := ids["Great Barrier Reef Adventure"]
	mel := ids["Melbourne Food & Wine"]

	items := []map[string]interface{}{
		{"packageId": reef, "quantity": 2},
		{"packageId": mel, "quantity": 1},
	}

	quote := s.expect(s.do(http.MethodPost, "/api/pricing/quote", map[string]interface{}{
		"items": items, "promoCode": "SAVE10", "processing": "express",
	}, ""), http.StatusOK)
	if total := quote["summary"].(map[string]interface{})["total"]; total != 1690.43 {
		t.Errorf("quote total = %v", total)
	}
	if _, ok := quote["warning"]; ok {
		t.Errorf("unexpected warning %v", quote["warning"])
	}

	opts := s.expect(s.do(http.MethodGet, "/api/pricing/options", nil, ""), http.StatusOK)
	if tiers := opts["tiers"].([]interface{}); len(tiers) != 3 {
		t.Errorf("tiers = %v", tiers)
	}

	created := s.expect(s.do(http.MethodPost, "/api/bookings", map[string]interface{}{
		"items":      items,
		"promoCode":  "SAVE10",
		"processing": "express",
		"summary":    map[string]interface{}{"total": 1},
	}, token), http.StatusCreated)
	summary := created["summary"].(map[string]interface{})
	if summary["total"] != 1690.43 || summary["discount"] != 165.7 || summary["tax"] != 149.13 {
		t.Errorf("created summary = %v", summary)
	}
	ref, _ := created["reference"].(string)
	if !strings.HasPrefix(ref, "TRV-") {
		t.Errorf("reference = %q", ref)
	}
	id := jsonID(created["bookingId"].(float64))

	s.expect(s.do(http.MethodPost, "/api/bookings", map[string]interface{}{"items": []interface{}{}}, token), http.StatusBadRequest)
	s.expect(s.do(http.MethodPost, "/api/bookings", map[string]interface{}{
		"items": []map[string]interface{}{{"packageId": 99999, "quantity": 1}},
	}, token), http.StatusNotFound)

	got := s.expect(s.do(http.MethodGet, "/api/bookings/"+id, nil, token), http.StatusOK)
	booking := got["booking"].(map[string]interface{})
	if booking["booking_reference"] != ref || len(booking["items"].([]interface{})) != 2 {
		t.Errorf("booking = %v", booking)
	}
	s.expect(s.do(http.MethodGet, "/api/bookings/"+id, nil, other), http.StatusNotFound)

	w := s.do(http.MethodGet, "/api/bookings/"+id+"/receipt", nil, token)
	if w.Code != http.StatusOK || w.Header().Get("Content-Type") != "application/pdf" {
		t.Fatalf("receipt status %d type %q", w.Code, w.Header().Get("Content-Type"))
	}
	if !bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF-")) {
		t.Error("receipt is not a PDF")
	}
	if !strings.Contains(w.Header().Get("Content-Disposition"), ref) {
		t.Errorf("Content-Disposition = %q", w.Header().Get("Content-Disposition"))
	}

	updated := s.expect(s.do(http.MethodPut, "/api/bookings/"+id, map[string]interface{}{
		"items": []map[string]interface{}{{"packageId": reef, "quantity": 1}},
	}, token), http.StatusOK)
	if total := updated["booking"].(map[string]interface{})["total_amount"]; total != 1097.42 {
		t.Errorf("updated total = %v, want 1097.42", total)
	}

	list := s.expect(s.do(http.MethodGet, "/api/bookings", nil, token), http.StatusOK)
	if n := len(list["bookings"].([]interface{})); n != 1 {
		t.Errorf("bookings = %d, want 1", n)
	}
	list = s.expect(s.do(http.MethodGet, "/api/bookings", nil, other), http.StatusOK)
	if n := len(list["bookings"].([]interface{})); n != 0 {
		t.Errorf("other user sees %d bookings", n)
	}

	s.expect(s.do(http.MethodDelete, "/api/bookings/"+id, nil, other), http.StatusNotFound)
	s.expect(s.do(http.MethodDelete, "/api/bookings/"+id, nil, token), http.StatusOK)
	s.expect(s.do(http.MethodDelete, "/api/bookings/"+id, nil, token), http.StatusConflict)
	s.expect(s.do(http.MethodPut, "/api/bookings/"+id, map[string]interface{}{
		"items": []map[string]interface{}{{"packageId": reef, "quantity": 2}},
	}, token), http.StatusConflict)

	list = s.expect(s.do(http.MethodGet, "/api/bookings?status=cancelled", nil, token), http.StatusOK)
	if n := len(list["bookings"].([]interface{})); n != 1 {
		t.Errorf("cancelled bookings = %d, want 1", n)
	}
	s.expect(s.do(http.MethodGet, "/api/bookings?status=lost", nil, token), http.StatusBadRequest)
}

func jsonID(id float64) string {
	b, _ := json.Marshal(int64(id))
	return string(b)
}
