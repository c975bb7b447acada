package storefront

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/joshua-takyi/travelease/internal/models"
	"github.com/joshua-takyi/travelease/internal/pricing"
	"github.com/shopspring/decimal"
)

// MaxQuantity matches the per-package limit the API enforces.
const MaxQuantity = 10

type CartItem struct {
	CartID      string          `json:"cartId"`
	PackageID   int64           `json:"packageId"`
	Name        string          `json:"name"`
	Destination string          `json:"destination"`
	Duration    string          `json:"duration"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
}

func (it CartItem) LineTotal() decimal.Decimal {
	return it.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
}

// Cart is an immutable list of cart items. Every change returns a new Cart.
type Cart struct {
	items []CartItem
}

func NewCart(items ...CartItem) Cart {
	return Cart{items: append([]CartItem(nil), items...)}
}

func (c Cart) Items() []CartItem {
	return append([]CartItem(nil), c.items...)
}

func (c Cart) Len() int { return len(c.items) }

func (c Cart) IsEmpty() bool { return len(c.items) == 0 }

// Count is the total quantity across items.
func (c Cart) Count() int {
	n := 0
	for _, it := range c.items {
		n += it.Quantity
	}
	return n
}

func (c Cart) index(cartID string) int {
	for i, it := range c.items {
		if it.CartID == cartID {
			return i
		}
	}
	return -1
}

func (c Cart) Find(cartID string) (CartItem, bool) {
	if i := c.index(cartID); i >= 0 {
		return c.items[i], true
	}
	return CartItem{}, false
}

// Add puts one unit of pkg in the cart. A package already in the cart has
// its quantity raised, up to MaxQuantity.
func (c Cart) Add(pkg *models.TravelPackage) Cart {
	items := c.Items()
	for i := range items {
		if items[i].PackageID == pkg.ID {
			if items[i].Quantity < MaxQuantity {
				items[i].Quantity++
			}
			return Cart{items: items}
		}
	}
	items = append(items, CartItem{
		CartID:      uuid.New().String(),
		PackageID:   pkg.ID,
		Name:        pkg.Name,
		Destination: pkg.Destination,
		Duration:    pkg.Duration,
		Price:       pkg.Price,
		Quantity:    1,
	})
	return Cart{items: items}
}

// Update sets the quantity of an item. A quantity of zero or less removes it;
// an unknown cartID leaves the cart unchanged.
func (c Cart) Update(cartID string, quantity int) Cart {
	i := c.index(cartID)
	if i < 0 {
		return c
	}
	if quantity <= 0 {
		return c.Remove(cartID)
	}
	if quantity > MaxQuantity {
		quantity = MaxQuantity
	}
	items := c.Items()
	items[i].Quantity = quantity
	return Cart{items: items}
}

func (c Cart) Remove(cartID string) Cart {
	i := c.index(cartID)
	if i < 0 {
		return c
	}
	items := make([]CartItem, 0, len(c.items)-1)
	items = append(items, c.items[:i]...)
	items = append(items, c.items[i+1:]...)
	return Cart{items: items}
}

func (c Cart) Clear() Cart { return Cart{} }

func (c Cart) Lines() []pricing.Line {
	lines := make([]pricing.Line, len(c.items))
	for i, it := range c.items {
		lines[i] = pricing.Line{Price: it.Price, Quantity: it.Quantity}
	}
	return lines
}

// Quote prices the cart locally with the same rules the API applies.
func (c Cart) Quote(tierID, promoCode string) (pricing.Summary, error) {
	return pricing.Quote(c.Lines(), tierID, promoCode)
}

func (c Cart) MarshalJSON() ([]byte, error) {
	if c.items == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(c.items)
}

func (c *Cart) UnmarshalJSON(data []byte) error {
	var items []CartItem
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	c.items = items
	return nil
}
