package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/joshua-takyi/travelease/internal/models"
	"github.com/joshua-takyi/travelease/internal/pricing"
)

const (
	MaxItemQuantity  = 10
	maxSearchLength  = 100
	maxDistinctLines = 50
)

type CatalogService struct {
	packageRepo models.PackageRepo
}

func NewCatalogService(packageRepo models.PackageRepo) *CatalogService {
	return &CatalogService{packageRepo: packageRepo}
}

func (cs *CatalogService) ListPackages(ctx context.Context, category string) ([]*models.TravelPackage, error) {
	cat, ok := models.ParseCategory(category)
	if !ok {
		return nil, validationf("category must be one of all, domestic, international")
	}
	return cs.packageRepo.ListPackages(ctx, cat)
}

func (cs *CatalogService) SearchPackages(ctx context.Context, query string) ([]*models.TravelPackage, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, validationf("search query is required")
	}
	if len(query) > maxSearchLength {
		return nil, validationf("search query must be at most %d characters", maxSearchLength)
	}
	return cs.packageRepo.SearchPackages(ctx, query)
}

func (cs *CatalogService) GetPackage(ctx context.Context, id int64) (*models.TravelPackage, error) {
	if id <= 0 {
		return nil, validationf("invalid package id")
	}
	pkg, err := cs.packageRepo.GetPackage(ctx, id)
	if errors.Is(err, models.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: package not found", ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return pkg, nil
}

type ItemRequest struct {
	PackageID       int64  `json:"packageId"`
	Quantity        int    `json:"quantity"`
	SpecialRequests string `json:"specialRequests,omitempty"`
}

type QuoteRequest struct {
	Items      []ItemRequest `json:"items"`
	PromoCode  string        `json:"promoCode"`
	Processing string        `json:"processing"`
}

type QuoteResult struct {
	Summary pricing.Summary
	// Warning is set when the promo code exists but the order does not
	// reach its minimum.
	Warning string
}

// pricedLine is a validated, merged order line with its catalog package.
type pricedLine struct {
	pkg             *models.TravelPackage
	quantity        int
	specialRequests string
}

// mergeItems validates item requests and sums quantities of repeated package
// ids, keeping first-seen order.
func mergeItems(items []ItemRequest) ([]ItemRequest, error) {
	if len(items) == 0 {
		return nil, validationf("at least one item is required")
	}

	merged := make([]ItemRequest, 0, len(items))
	index := make(map[int64]int, len(items))
	for _, it := range items {
		if it.PackageID <= 0 {
			return nil, validationf("invalid package id %d", it.PackageID)
		}
		if it.Quantity < 1 || it.Quantity > MaxItemQuantity {
			return nil, validationf("quantity for package %d must be between 1 and %d", it.PackageID, MaxItemQuantity)
		}
		if i, ok := index[it.PackageID]; ok {
			merged[i].Quantity += it.Quantity
			if merged[i].Quantity > MaxItemQuantity {
				return nil, validationf("quantity for package %d must be between 1 and %d", it.PackageID, MaxItemQuantity)
			}
			if it.SpecialRequests != "" {
				merged[i].SpecialRequests = strings.TrimSpace(merged[i].SpecialRequests + " " + it.SpecialRequests)
			}
			continue
		}
		index[it.PackageID] = len(merged)
		merged = append(merged, it)
	}
	if len(merged) > maxDistinctLines {
		return nil, validationf("at most %d distinct packages per booking", maxDistinctLines)
	}
	return merged, nil
}

// priceItems resolves every item against the current catalog.
func priceItems(ctx context.Context, repo models.PackageRepo, items []ItemRequest) ([]pricedLine, error) {
	merged, err := mergeItems(items)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, len(merged))
	for i, it := range merged {
		ids[i] = it.PackageID
	}
	pkgs, err := repo.GetPackagesByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	lines := make([]pricedLine, 0, len(merged))
	for _, it := range merged {
		pkg, ok := pkgs[it.PackageID]
		if !ok {
			return nil, fmt.Errorf("%w: package %d not found", ErrNotFound, it.PackageID)
		}
		if !pkg.Available {
			return nil, validationf("package %q is not available for booking", pkg.Name)
		}
		lines = append(lines, pricedLine{pkg: pkg, quantity: it.Quantity, specialRequests: strings.TrimSpace(it.SpecialRequests)})
	}
	return lines, nil
}

func pricingLines(lines []pricedLine) []pricing.Line {
	out := make([]pricing.Line, len(lines))
	for i, l := range lines {
		out[i] = pricing.Line{Price: l.pkg.Price, Quantity: l.quantity}
	}
	return out
}

// resolvePricing maps pricing errors onto service errors. When minimumIsError
// is false a promo below its minimum becomes a warning.
func resolvePricing(lines []pricing.Line, tierID, promoCode string, minimumIsError bool) (pricing.Summary, string, error) {
	summary, err := pricing.Quote(lines, tierID, promoCode)
	if err == nil {
		return summary, "", nil
	}

	var minErr *pricing.MinimumNotMetError
	switch {
	case errors.As(err, &minErr):
		if minimumIsError {
			return pricing.Summary{}, "", validationf("%s", minErr.Error())
		}
		return summary, minErr.Error(), nil
	case errors.Is(err, pricing.ErrUnknownPromo):
		return pricing.Summary{}, "", validationf("invalid promo code %q", strings.TrimSpace(promoCode))
	case errors.Is(err, pricing.ErrUnknownTier):
		return pricing.Summary{}, "", validationf("processing must be one of standard, express, priority")
	}
	return pricing.Summary{}, "", err
}

// Quote prices items from the catalog without persisting anything.
func (cs *CatalogService) Quote(ctx context.Context, req QuoteRequest) (*QuoteResult, error) {
	lines, err := priceItems(ctx, cs.packageRepo, req.Items)
	if err != nil {
		return nil, err
	}
	summary, warning, err := resolvePricing(pricingLines(lines), req.Processing, req.PromoCode, false)
	if err != nil {
		return nil, err
	}
	return &QuoteResult{Summary: summary, Warning: warning}, nil
}

func (cs *CatalogService) ProcessingOptions() []pricing.ProcessingTier {
	return pricing.Tiers()
}
