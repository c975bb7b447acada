package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/joshua-takyi/travelease/internal/models"
	"github.com/shopspring/decimal"
)

// CartService stores one cart snapshot per user so a cart can follow the user
// between devices. Prices in the snapshot are refreshed from the catalog on
// save.
type CartService struct {
	cartRepo    models.CartRepo
	packageRepo models.PackageRepo
}

func NewCartService(cartRepo models.CartRepo, packageRepo models.PackageRepo) *CartService {
	return &CartService{
		cartRepo:    cartRepo,
		packageRepo: packageRepo,
	}
}

type SaveCartRequest struct {
	Items []models.SavedCartItem `json:"items"`
}

func (cs *CartService) GetCart(ctx context.Context, userID int64) (*models.SavedCart, error) {
	cart, err := cs.cartRepo.GetCart(ctx, userID)
	if errors.Is(err, models.ErrRecordNotFound) {
		now := time.Now().UTC()
		return &models.SavedCart{UserID: userID, Items: []models.SavedCartItem{}, CreatedAt: now, UpdatedAt: now}, nil
	}
	if err != nil {
		return nil, err
	}
	return cart, nil
}

func (cs *CartService) SaveCart(ctx context.Context, userID int64, req SaveCartRequest) (*models.SavedCart, error) {
	if req.Items == nil {
		req.Items = []models.SavedCartItem{}
	}
	if err := models.Validate.Struct(models.SavedCart{Items: req.Items}); err != nil {
		return nil, fromValidator(err)
	}

	ids := make([]int64, 0, len(req.Items))
	seen := make(map[string]bool, len(req.Items))
	for _, it := range req.Items {
		if seen[it.CartID] {
			return nil, validationf("duplicate cartId %q", it.CartID)
		}
		seen[it.CartID] = true
		ids = append(ids, it.PackageID)
	}

	pkgs, err := cs.packageRepo.GetPackagesByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	items := make([]models.SavedCartItem, 0, len(req.Items))
	for _, it := range req.Items {
		pkg, ok := pkgs[it.PackageID]
		if !ok {
			return nil, fmt.Errorf("%w: package %d not found", ErrNotFound, it.PackageID)
		}
		it.Name = pkg.Name
		it.Price = pkg.Price
		items = append(items, it)
	}

	return cs.cartRepo.SaveCart(ctx, userID, items)
}

func (cs *CartService) ClearCart(ctx context.Context, userID int64) error {
	return cs.cartRepo.DeleteCart(ctx, userID)
}

// CartTotal is the undiscounted sum of a saved cart.
func CartTotal(cart *models.SavedCart) decimal.Decimal {
	total := decimal.Zero
	for _, it := range cart.Items {
		total = total.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}
