package storefront

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/joshua-takyi/travelease/internal/models"
	"github.com/joshua-takyi/travelease/internal/pricing"
)

// APIError is a non-2xx answer from the TravelEase API.
type APIError struct {
	Status  int
	Message string
	Details []string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	if len(e.Details) > 0 {
		msg += " (" + strings.Join(e.Details, "; ") + ")"
	}
	return fmt.Sprintf("api error %d: %s", e.Status, msg)
}

// Unauthorized reports whether the token was missing or rejected.
func (e *APIError) Unauthorized() bool {
	return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

// NewClient talks to the API rooted at baseURL, e.g. http://localhost:3000/api.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// WithToken returns a copy of the client that sends token as a bearer token.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

func (c *Client) newRequest(ctx context.Context, method, path string, in interface{}) (*http.Request, error) {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

func (c *Client) send(req *http.Request) (*http.Response, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	defer resp.Body.Close()

	apiErr := &APIError{Status: resp.StatusCode}
	var env models.ApiResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&env); err == nil {
		apiErr.Message = env.Error
		apiErr.Details = env.Details
	}
	return nil, apiErr
}

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	req, err := c.newRequest(ctx, method, path, in)
	if err != nil {
		return err
	}
	resp, err := c.send(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s %s response: %w", method, path, err)
	}
	return nil
}

func (c *Client) ListPackages(ctx context.Context, category string) ([]*models.TravelPackage, error) {
	path := "/packages"
	if category != "" {
		path += "?category=" + url.QueryEscape(category)
	}
	var out struct {
		Packages []*models.TravelPackage `json:"packages"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Packages, nil
}

func (c *Client) SearchPackages(ctx context.Context, query string) ([]*models.TravelPackage, error) {
	var out struct {
		Packages []*models.TravelPackage `json:"packages"`
	}
	if err := c.do(ctx, http.MethodGet, "/packages/search?q="+url.QueryEscape(query), nil, &out); err != nil {
		return nil, err
	}
	return out.Packages, nil
}

func (c *Client) GetPackage(ctx context.Context, id int64) (*models.TravelPackage, error) {
	var out struct {
		Package *models.TravelPackage `json:"package"`
	}
	if err := c.do(ctx, http.MethodGet, "/packages/"+strconv.FormatInt(id, 10), nil, &out); err != nil {
		return nil, err
	}
	return out.Package, nil
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

func (c *Client) Register(ctx context.Context, req models.RegisterRequest) (*AuthResponse, error) {
	var out AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	var out AuthResponse
	in := models.LoginRequest{Email: email, Password: password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Profile(ctx context.Context) (*models.User, error) {
	var out struct {
		User *models.User `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, &out); err != nil {
		return nil, err
	}
	return out.User, nil
}

type ItemRequest struct {
	PackageID int64 `json:"packageId"`
	Quantity  int   `json:"quantity"`
}

type BookingRequest struct {
	Items           []ItemRequest    `json:"items"`
	PromoCode       string           `json:"promoCode,omitempty"`
	Processing      string           `json:"processing,omitempty"`
	SpecialRequests string           `json:"specialRequests,omitempty"`
	TravelDate      string           `json:"travelDate,omitempty"`
	Summary         *pricing.Summary `json:"summary,omitempty"`
}

type BookingCreated struct {
	BookingID int64           `json:"bookingId"`
	Reference string          `json:"reference"`
	Summary   pricing.Summary `json:"summary"`
}

type QuoteResponse struct {
	Summary pricing.Summary `json:"summary"`
	Warning string          `json:"warning"`
}

func (c *Client) Quote(ctx context.Context, req BookingRequest) (*QuoteResponse, error) {
	in := struct {
		Items      []ItemRequest `json:"items"`
		PromoCode  string        `json:"promoCode,omitempty"`
		Processing string        `json:"processing,omitempty"`
	}{req.Items, req.PromoCode, req.Processing}

	var out QuoteResponse
	if err := c.do(ctx, http.MethodPost, "/pricing/quote", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateBooking(ctx context.Context, req BookingRequest) (*BookingCreated, error) {
	var out BookingCreated
	if err := c.do(ctx, http.MethodPost, "/bookings", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListBookings(ctx context.Context, status string) ([]*models.Booking, error) {
	path := "/bookings"
	if status != "" {
		path += "?status=" + url.QueryEscape(status)
	}
	var out struct {
		Bookings []*models.Booking `json:"bookings"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Bookings, nil
}

func (c *Client) CancelBooking(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/bookings/"+strconv.FormatInt(id, 10), nil, nil)
}

// Receipt downloads the booking's PDF receipt.
func (c *Client) Receipt(ctx context.Context, id int64) ([]byte, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/bookings/"+strconv.FormatInt(id, 10)+"/receipt", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/pdf")
	resp, err := c.send(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}
