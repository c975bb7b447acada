package storefront

import (
	"fmt"
	"sort"
	"strings"

	"github.com/joshua-takyi/travelease/internal/models"
	"github.com/shopspring/decimal"
)

const DefaultPerPage = 6

var sortKeys = map[string]bool{
	"name": true, "-name": true,
	"price": true, "-price": true,
	"rating": true, "-rating": true,
}

// Filter narrows and orders a package listing. A zero MaxPrice means no
// upper bound.
type Filter struct {
	Search   string
	Category string
	MinPrice decimal.Decimal
	MaxPrice decimal.Decimal
	SortBy   string
}

func DefaultFilter() Filter {
	return Filter{
		Category: "all",
		MaxPrice: decimal.NewFromInt(5000),
		SortBy:   "name",
	}
}

func (f Filter) matches(p *models.TravelPackage) bool {
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		if !strings.Contains(strings.ToLower(p.Name), q) &&
			!strings.Contains(strings.ToLower(p.Destination), q) &&
			!strings.Contains(strings.ToLower(p.Description), q) {
			return false
		}
	}
	if cat := strings.ToLower(f.Category); cat != "" && cat != "all" && string(p.Category) != cat {
		return false
	}
	if p.Price.LessThan(f.MinPrice) {
		return false
	}
	if !f.MaxPrice.IsZero() && p.Price.GreaterThan(f.MaxPrice) {
		return false
	}
	return true
}

func compareBy(field string, a, b *models.TravelPackage) int {
	switch field {
	case "price":
		return a.Price.Cmp(b.Price)
	case "rating":
		switch {
		case a.Rating < b.Rating:
			return -1
		case a.Rating > b.Rating:
			return 1
		}
		return 0
	default:
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	}
}

// Apply returns the matching packages in SortBy order; a leading "-" sorts
// descending. The input slice is not modified.
func (f Filter) Apply(pkgs []*models.TravelPackage) ([]*models.TravelPackage, error) {
	sortBy := f.SortBy
	if sortBy == "" {
		sortBy = "name"
	}
	if !sortKeys[sortBy] {
		return nil, fmt.Errorf("unknown sort %q: use name, price or rating, optionally prefixed with -", f.SortBy)
	}
	desc := strings.HasPrefix(sortBy, "-")
	field := strings.TrimPrefix(sortBy, "-")

	out := make([]*models.TravelPackage, 0, len(pkgs))
	for _, p := range pkgs {
		if f.matches(p) {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		c := compareBy(field, out[i], out[j])
		if desc {
			return c > 0
		}
		return c < 0
	})
	return out, nil
}

type Page struct {
	Items      []*models.TravelPackage
	Number     int
	TotalPages int
	Total      int
	// From and To are 1-based positions of the first and last item shown.
	From int
	To   int
}

// Paginate returns page number page (1-based) of pkgs. Out-of-range pages
// are clamped.
func Paginate(pkgs []*models.TravelPackage, page, perPage int) Page {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	total := len(pkgs)
	totalPages := (total + perPage - 1) / perPage
	if totalPages == 0 {
		return Page{Items: []*models.TravelPackage{}, Number: 1}
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * perPage
	end := start + perPage
	if end > total {
		end = total
	}
	return Page{
		Items:      pkgs[start:end],
		Number:     page,
		TotalPages: totalPages,
		Total:      total,
		From:       start + 1,
		To:         end,
	}
}

// VisiblePages lists the page links around current, two either side.
func VisiblePages(current, totalPages int) []int {
	start := current - 2
	if start < 1 {
		start = 1
	}
	end := current + 2
	if end > totalPages {
		end = totalPages
	}
	var pages []int
	for i := start; i <= end; i++ {
		pages = append(pages, i)
	}
	return pages
}
