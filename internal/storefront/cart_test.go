package storefront

import (
	"encoding/json"
	"testing"

	"github.com/joshua-takyi/travelease/internal/models"
	"github.com/shopspring/decimal"
)

func pkg(id int64, name string, price int64) *models.TravelPackage {
	return &models.TravelPackage{ID: id, Name: name, Destination: name + " town", Price: decimal.NewFromInt(price)}
}

func TestCartAdd(t *testing.T) {
	reef := pkg(1, "Reef", 599)
	mel := pkg(2, "Melbourne", 459)

	empty := NewCart()
	one := empty.Add(reef)
	if !empty.IsEmpty() {
		t.Fatal("Add mutated the original cart")
	}
	two := one.Add(reef).Add(mel)

	if two.Len() != 2 || two.Count() != 3 {
		t.Fatalf("Len = %d, Count = %d, want 2 and 3", two.Len(), two.Count())
	}
	items := two.Items()
	if items[0].PackageID != 1 || items[0].Quantity != 2 {
		t.Errorf("first item = %+v", items[0])
	}
	if items[0].CartID == "" || items[0].CartID == items[1].CartID {
		t.Errorf("cart ids not unique: %q %q", items[0].CartID, items[1].CartID)
	}
	if one.Count() != 1 {
		t.Errorf("earlier snapshot changed: count %d", one.Count())
	}

	full := NewCart()
	for i := 0; i < MaxQuantity+3; i++ {
		full = full.Add(reef)
	}
	if full.Count() != MaxQuantity {
		t.Errorf("quantity not capped: %d", full.Count())
	}
}

func TestCartUpdateAndRemove(t *testing.T) {
	cart := NewCart().Add(pkg(1, "Reef", 599)).Add(pkg(2, "Melbourne", 459))
	reefID := cart.Items()[0].CartID

	tests := []struct {
		name      string
		cartID    string
		quantity  int
		wantLen   int
		wantCount int
	}{
		{"set quantity", reefID, 4, 2, 5},
		{"clamped", reefID, 99, 2, MaxQuantity + 1},
		{"zero removes", reefID, 0, 1, 1},
		{"negative removes", reefID, -1, 1, 1},
		{"unknown id", "nope", 3, 2, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cart.Update(tt.cartID, tt.quantity)
			if got.Len() != tt.wantLen || got.Count() != tt.wantCount {
				t.Errorf("Len = %d, Count = %d, want %d and %d", got.Len(), got.Count(), tt.wantLen, tt.wantCount)
			}
			if cart.Count() != 2 {
				t.Error("Update mutated the original cart")
			}
		})
	}

	removed := cart.Remove(reefID)
	if removed.Len() != 1 || removed.Remove(reefID).Len() != 1 {
		t.Error("Remove is not idempotent")
	}
	if _, ok := removed.Find(reefID); ok {
		t.Error("removed item still found")
	}
	if !cart.Clear().IsEmpty() {
		t.Error("Clear left items")
	}
}

func TestCartQuote(t *testing.T) {
	cart := NewCart().Add(pkg(1, "Reef", 599)).Add(pkg(1, "Reef", 599)).Add(pkg(2, "Melbourne", 459))
	s, err := cart.Quote("express", "SAVE10")
	if err != nil {
		t.Fatalf("Quote: %v", err)
	}
	if !s.Total.Equal(decimal.RequireFromString("1690.43")) {
		t.Errorf("total = %s, want 1690.43", s.Total)
	}
}

func TestCartJSON(t *testing.T) {
	raw, err := json.Marshal(NewCart())
	if err != nil || string(raw) != "[]" {
		t.Fatalf("empty cart JSON = %s, %v", raw, err)
	}

	cart := NewCart().Add(pkg(1, "Reef", 599))
	raw, err = json.Marshal(cart)
	if err != nil {
		t.Fatal(err)
	}
	var back Cart
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatal(err)
	}
	if back.Len() != 1 {
		t.Fatalf("restored %d items", back.Len())
	}
	got, want := back.Items()[0], cart.Items()[0]
	if got.CartID != want.CartID || got.PackageID != want.PackageID || got.Quantity != want.Quantity || !got.Price.Equal(want.Price) {
		t.Errorf("restored %+v, want %+v", got, want)
	}
}
