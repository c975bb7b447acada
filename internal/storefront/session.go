package storefront

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/joshua-takyi/travelease/internal/models"
	"github.com/joshua-takyi/travelease/internal/pricing"
)

var (
	ErrNotLoggedIn = errors.New("not logged in")
	ErrEmptyCart   = errors.New("cart is empty")
)

// Session owns the persisted state and an API client. Mutating methods
// persist before returning the new snapshot.
type Session struct {
	mu     sync.Mutex
	store  Storage
	client *Client
	state  State
}

func NewSession(store Storage, client *Client) (*Session, error) {
	st, err := LoadState(store)
	if err != nil {
		return nil, err
	}
	return &Session{store: store, client: client, state: st}, nil
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Cart() Cart {
	return s.State().Cart
}

func (s *Session) authed() (*Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.state.LoggedIn() {
		return nil, ErrNotLoggedIn
	}
	return s.client.WithToken(s.state.Token), nil
}

// checkAuth drops the stored credentials when the API rejects the token.
func (s *Session) checkAuth(err error) error {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Unauthorized() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if clearErr := s.clearAuthLocked(); clearErr != nil {
			return clearErr
		}
		return fmt.Errorf("%w: session expired, log in again", ErrNotLoggedIn)
	}
	return err
}

func (s *Session) setAuth(res *AuthResponse) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Set(keyToken, []byte(res.Token)); err != nil {
		return State{}, err
	}
	if err := saveJSON(s.store, keyUser, res.User); err != nil {
		return State{}, err
	}
	s.state.Token = res.Token
	s.state.User = res.User
	return s.state, nil
}

func (s *Session) clearAuthLocked() error {
	if err := s.store.Delete(keyToken); err != nil {
		return err
	}
	if err := s.store.Delete(keyUser); err != nil {
		return err
	}
	s.state.Token = ""
	s.state.User = nil
	return nil
}

func (s *Session) Register(ctx context.Context, req models.RegisterRequest) (State, error) {
	res, err := s.client.Register(ctx, req)
	if err != nil {
		return State{}, err
	}
	return s.setAuth(res)
}

func (s *Session) Login(ctx context.Context, email, password string) (State, error) {
	res, err := s.client.Login(ctx, email, password)
	if err != nil {
		return State{}, err
	}
	return s.setAuth(res)
}

// Logout forgets the user, the token and the cart.
func (s *Session) Logout() (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.clearAuthLocked(); err != nil {
		return State{}, err
	}
	if err := s.store.Delete(keyCart); err != nil {
		return State{}, err
	}
	s.state.Cart = Cart{}
	return s.state, nil
}

// Refresh reloads the profile, clearing credentials the API no longer accepts.
func (s *Session) Refresh(ctx context.Context) (State, error) {
	client, err := s.authed()
	if err != nil {
		return State{}, err
	}
	user, err := client.Profile(ctx)
	if err != nil {
		return State{}, s.checkAuth(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := saveJSON(s.store, keyUser, user); err != nil {
		return State{}, err
	}
	s.state.User = user
	return s.state, nil
}

func (s *Session) mutateCart(fn func(Cart) Cart) (Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := fn(s.state.Cart)
	if err := saveJSON(s.store, keyCart, next); err != nil {
		return s.state.Cart, err
	}
	s.state.Cart = next
	return next, nil
}

func (s *Session) AddToCart(pkg *models.TravelPackage) (Cart, error) {
	return s.mutateCart(func(c Cart) Cart { return c.Add(pkg) })
}

func (s *Session) UpdateCartItem(cartID string, quantity int) (Cart, error) {
	return s.mutateCart(func(c Cart) Cart { return c.Update(cartID, quantity) })
}

func (s *Session) RemoveFromCart(cartID string) (Cart, error) {
	return s.mutateCart(func(c Cart) Cart { return c.Remove(cartID) })
}

func (s *Session) ClearCart() (Cart, error) {
	return s.mutateCart(func(c Cart) Cart { return c.Clear() })
}

// Quote prices the current cart locally.
func (s *Session) Quote(tierID, promoCode string) (pricing.Summary, error) {
	return s.Cart().Quote(tierID, promoCode)
}

type CheckoutOptions struct {
	Processing      string
	PromoCode       string
	SpecialRequests string
	TravelDate      string
}

// Checkout books the cart. The locally computed summary travels with the
// request for comparison; the API prices the booking itself. The cart is
// cleared only after the booking is stored.
func (s *Session) Checkout(ctx context.Context, opts CheckoutOptions) (*BookingCreated, error) {
	client, err := s.authed()
	if err != nil {
		return nil, err
	}
	cart := s.Cart()
	if cart.IsEmpty() {
		return nil, ErrEmptyCart
	}

	req := BookingRequest{
		Items:           make([]ItemRequest, 0, cart.Len()),
		PromoCode:       opts.PromoCode,
		Processing:      opts.Processing,
		SpecialRequests: opts.SpecialRequests,
		TravelDate:      opts.TravelDate,
	}
	for _, it := range cart.Items() {
		req.Items = append(req.Items, ItemRequest{PackageID: it.PackageID, Quantity: it.Quantity})
	}
	if summary, err := cart.Quote(opts.Processing, opts.PromoCode); err == nil {
		req.Summary = &summary
	}

	created, err := client.CreateBooking(ctx, req)
	if err != nil {
		return nil, s.checkAuth(err)
	}
	if _, err := s.ClearCart(); err != nil {
		return created, fmt.Errorf("booking %s stored but the cart could not be cleared: %w", created.Reference, err)
	}
	return created, nil
}

func (s *Session) Bookings(ctx context.Context, status string) ([]*models.Booking, error) {
	client, err := s.authed()
	if err != nil {
		return nil, err
	}
	bookings, err := client.ListBookings(ctx, status)
	if err != nil {
		return nil, s.checkAuth(err)
	}
	return bookings, nil
}

func (s *Session) CancelBooking(ctx context.Context, id int64) error {
	client, err := s.authed()
	if err != nil {
		return err
	}
	return s.checkAuth(client.CancelBooking(ctx, id))
}

func (s *Session) Receipt(ctx context.Context, id int64) ([]byte, error) {
	client, err := s.authed()
	if err != nil {
		return nil, err
	}
	pdf, err := client.Receipt(ctx, id)
	if err != nil {
		return nil, s.checkAuth(err)
	}
	return pdf, nil
}
