// Package pricing computes order summaries from cart lines, a processing tier
// and an optional promo code. The storefront uses it for display and the API
// uses it to derive the totals it stores.
package pricing

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrUnknownPromo = errors.New("unknown promo code")
	ErrUnknownTier  = errors.New("unknown processing tier")
)

// TaxRate is applied to the discounted subtotal.
var TaxRate = decimal.RequireFromString("0.10")

// MinimumNotMetError means the promo exists but the subtotal is below its
// qualifying amount. Callers surface it as a warning.
type MinimumNotMetError struct {
	Code    string
	Minimum decimal.Decimal
}

func (e *MinimumNotMetError) Error() string {
	return fmt.Sprintf("promo code %s requires a minimum order of $%s", e.Code, e.Minimum.StringFixed(2))
}

type Promo struct {
	Code        string          `json:"code"`
	Fraction    decimal.Decimal `json:"fraction"`
	Minimum     decimal.Decimal `json:"minimum"`
	Description string          `json:"description"`
}

var promos = map[string]Promo{
	"SAVE10":  {Code: "SAVE10", Fraction: decimal.RequireFromString("0.10"), Minimum: decimal.NewFromInt(1000), Description: "10% off orders of $1000 or more"},
	"WELCOME": {Code: "WELCOME", Fraction: decimal.RequireFromString("0.05"), Minimum: decimal.NewFromInt(500), Description: "5% off orders of $500 or more"},
	"STUDENT": {Code: "STUDENT", Fraction: decimal.RequireFromString("0.15"), Minimum: decimal.NewFromInt(800), Description: "15% off orders of $800 or more"},
}

// LookupPromo finds a promo by code, ignoring case and surrounding space.
func LookupPromo(code string) (Promo, bool) {
	p, ok := promos[strings.ToUpper(strings.TrimSpace(code))]
	return p, ok
}

// ApplyPromo returns the promo for code if subtotal qualifies. An empty code
// returns (nil, nil).
func ApplyPromo(code string, subtotal decimal.Decimal) (*Promo, error) {
	if strings.TrimSpace(code) == "" {
		return nil, nil
	}
	p, ok := LookupPromo(code)
	if !ok {
		return nil, ErrUnknownPromo
	}
	if subtotal.LessThan(p.Minimum) {
		return nil, &MinimumNotMetError{Code: p.Code, Minimum: p.Minimum}
	}
	return &p, nil
}

type ProcessingTier struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Cost        decimal.Decimal `json:"cost"`
	Description string          `json:"description"`
}

var tiers = []ProcessingTier{
	{ID: "standard", Name: "Standard Processing", Cost: decimal.Zero, Description: "7-14 business days"},
	{ID: "express", Name: "Express Processing", Cost: decimal.NewFromInt(50), Description: "3-5 business days"},
	{ID: "priority", Name: "Priority Processing", Cost: decimal.NewFromInt(100), Description: "1-2 business days"},
}

// Tiers lists the processing tiers in ascending cost.
func Tiers() []ProcessingTier {
	out := make([]ProcessingTier, len(tiers))
	copy(out, tiers)
	return out
}

// LookupTier resolves a tier id; the empty id means standard.
func LookupTier(id string) (ProcessingTier, error) {
	id = strings.ToLower(strings.TrimSpace(id))
	if id == "" {
		return tiers[0], nil
	}
	for _, t := range tiers {
		if t.ID == id {
			return t, nil
		}
	}
	return ProcessingTier{}, ErrUnknownTier
}

type Line struct {
	Price    decimal.Decimal
	Quantity int
}

type Summary struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	Discount       decimal.Decimal `json:"discount"`
	Taxable        decimal.Decimal `json:"taxable"`
	Tax            decimal.Decimal `json:"tax"`
	Shipping       decimal.Decimal `json:"shipping"`
	Total          decimal.Decimal `json:"total"`
	PromoCode      string          `json:"promo_code,omitempty"`
	ProcessingTier string          `json:"processing_tier"`
	ItemCount      int             `json:"item_count"`
}

// Calculate prices lines with the given tier and promo. A nil promo means no
// discount. Lines with a non-positive quantity are skipped.
func Calculate(lines []Line, tier ProcessingTier, promo *Promo) Summary {
	subtotal := decimal.Zero
	count := 0
	for _, l := range lines {
		if l.Quantity <= 0 {
			continue
		}
		subtotal = subtotal.Add(l.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
		count += l.Quantity
	}
	subtotal = subtotal.Round(2)

	discount := decimal.Zero
	code := ""
	if promo != nil {
		discount = subtotal.Mul(promo.Fraction).Round(2)
		code = promo.Code
	}
	taxable := subtotal.Sub(discount)
	tax := taxable.Mul(TaxRate).Round(2)

	return Summary{
		Subtotal:       subtotal,
		Discount:       discount,
		Taxable:        taxable,
		Tax:            tax,
		Shipping:       tier.Cost,
		Total:          taxable.Add(tax).Add(tier.Cost),
		PromoCode:      code,
		ProcessingTier: tier.ID,
		ItemCount:      count,
	}
}

// Quote resolves tier and promo codes and prices lines. A promo whose minimum
// is not met is left out of the summary and returned as a *MinimumNotMetError
// alongside it; the summary is always usable in that case.
func Quote(lines []Line, tierID, promoCode string) (Summary, error) {
	tier, err := LookupTier(tierID)
	if err != nil {
		return Summary{}, err
	}
	subtotal := Calculate(lines, tier, nil).Subtotal
	promo, err := ApplyPromo(promoCode, subtotal)
	if err != nil {
		var minErr *MinimumNotMetError
		if errors.As(err, &minErr) {
			return Calculate(lines, tier, nil), err
		}
		return Summary{}, err
	}
	return Calculate(lines, tier, promo), nil
}

// Equal reports whether two summaries carry the same amounts.
func (s Summary) Equal(o Summary) bool {
	return s.Subtotal.Equal(o.Subtotal) &&
		s.Discount.Equal(o.Discount) &&
		s.Tax.Equal(o.Tax) &&
		s.Shipping.Equal(o.Shipping) &&
		s.Total.Equal(o.Total)
}
