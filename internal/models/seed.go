package models

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

func seedPackage(name, destination, duration string, price, original int64, category PackageCategory, rating float64, description, image string, inclusions ...string) *TravelPackage {
	p := decimal.NewFromInt(price)
	o := decimal.NewFromInt(original)
	discount := 0
	if o.GreaterThan(p) {
		discount = int(o.Sub(p).Div(o).Mul(decimal.NewFromInt(100)).Round(0).IntPart())
	}
	return &TravelPackage{
		Name:               name,
		Destination:        destination,
		Duration:           duration,
		Price:              p,
		OriginalPrice:      o,
		Description:        description,
		ImageURL:           image,
		Category:           category,
		Rating:             rating,
		Available:          true,
		DiscountPercentage: discount,
		Inclusions:         inclusions,
	}
}

// DefaultPackages returns a fresh copy of the built-in catalog.
func DefaultPackages() []*TravelPackage {
	return []*TravelPackage{
		seedPackage("Bali Paradise Getaway", "Bali, Indonesia", "7 days", 1299, 1599, CategoryInternational, 4.8,
			"Experience the magic of Bali with pristine beaches, ancient temples, and vibrant culture.",
			"https://images.unsplash.com/photo-1544735716-392fe2489ffa?w=400&h=300&fit=crop",
			"Return flights", "4-star resort", "Daily breakfast", "Airport transfers"),
		seedPackage("Sydney Harbour Explorer", "Sydney, Australia", "5 days", 899, 1099, CategoryDomestic, 4.6,
			"Discover Sydney's iconic landmarks, from the Opera House to Bondi Beach.",
			"https://images.unsplash.com/photo-1506905925346-21bda4d32df4?w=400&h=300&fit=crop",
			"Harbour cruise", "City hotel", "Opera House tour"),
		seedPackage("Tokyo Culture Trail", "Tokyo, Japan", "8 days", 2199, 2499, CategoryInternational, 4.9,
			"Temples, neon districts and a day trip to Mount Fuji with a local guide.",
			"https://images.unsplash.com/photo-1540959733332-eab4deabeeaf?w=400&h=300&fit=crop",
			"Return flights", "JR rail pass", "Guided tours", "Daily breakfast"),
		seedPackage("Great Barrier Reef Adventure", "Cairns, Australia", "4 days", 599, 749, CategoryDomestic, 4.7,
			"Snorkel the reef, explore the Daintree rainforest and relax in tropical Cairns.",
			"https://images.unsplash.com/photo-1559128010-7c1ad6e1b6a5?w=400&h=300&fit=crop",
			"Reef cruise", "Snorkel gear", "Rainforest tour"),
		seedPackage("Melbourne Food & Wine", "Melbourne, Australia", "3 days", 459, 529, CategoryDomestic, 4.5,
			"Laneway cafes, Yarra Valley wineries and the best of Melbourne's dining scene.",
			"https://images.unsplash.com/photo-1514395462725-fb4566210144?w=400&h=300&fit=crop",
			"Winery tour", "Boutique hotel", "Food walking tour"),
		seedPackage("Paris Romance", "Paris, France", "6 days", 2499, 2899, CategoryInternational, 4.8,
			"Seine river cruise, Montmartre evenings and a day at Versailles.",
			"https://images.unsplash.com/photo-1502602898657-3e91760cbb34?w=400&h=300&fit=crop",
			"Return flights", "Seine dinner cruise", "Museum pass"),
		seedPackage("New Zealand Alpine Escape", "Queenstown, New Zealand", "6 days", 1499, 1699, CategoryInternational, 4.7,
			"Lakes, mountains and adventure sports in the heart of the Southern Alps.",
			"https://images.unsplash.com/photo-1507699622108-4be3abd695ad?w=400&h=300&fit=crop",
			"Return flights", "Milford Sound cruise", "Gondola pass"),
		seedPackage("Uluru Outback Experience", "Uluru, Australia", "3 days", 799, 899, CategoryDomestic, 4.4,
			"Sunrise over Uluru, dinner under the stars and cultural walks with local guides.",
			"https://images.unsplash.com/photo-1529108190281-9a4f620bc2d8?w=400&h=300&fit=crop",
			"Desert lodge", "Sounds of Silence dinner", "Base walk"),
		seedPackage("Tasmania Wilderness", "Hobart, Australia", "5 days", 699, 699, CategoryDomestic, 4.3,
			"Cradle Mountain hikes, MONA and fresh seafood along the east coast.",
			"https://images.unsplash.com/photo-1578632292335-df3abbb0d586?w=400&h=300&fit=crop",
			"Car hire", "National park pass", "Cottage stays"),
		seedPackage("Santorini Island Hopping", "Santorini, Greece", "9 days", 2799, 3199, CategoryInternational, 4.9,
			"Whitewashed villages, volcanic beaches and ferries between the Cyclades.",
			"https://images.unsplash.com/photo-1570077188670-e3a8d69ac5ff?w=400&h=300&fit=crop",
			"Return flights", "Ferry passes", "Sunset catamaran", "Daily breakfast"),
	}
}

// SeedIfEmpty inserts the built-in catalog when travel_packages has no rows and
// reports how many packages were written.
func SeedIfEmpty(ctx context.Context, repo PackageRepo) (int, error) {
	n, err := repo.CountPackages(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, nil
	}
	pkgs := DefaultPackages()
	if err := repo.SeedPackages(ctx, pkgs); err != nil {
		return 0, fmt.Errorf("failed to seed packages: %w", err)
	}
	return len(pkgs), nil
}
