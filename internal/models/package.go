package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type PackageCategory string

const (
	CategoryDomestic      PackageCategory = "domestic"
	CategoryInternational PackageCategory = "international"
)

// ParseCategory accepts "", "all", "domestic" or "international". The empty
// category means no filter.
func ParseCategory(s string) (PackageCategory, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return "", true
	case string(CategoryDomestic):
		return CategoryDomestic, true
	case string(CategoryInternational):
		return CategoryInternational, true
	}
	return "", false
}

type TravelPackage struct {
	ID                 int64           `db:"id" json:"id"`
	Name               string          `db:"name" json:"name"`
	Destination        string          `db:"destination" json:"destination"`
	Duration           string          `db:"duration" json:"duration"`
	Price              decimal.Decimal `db:"price" json:"price"`
	OriginalPrice      decimal.Decimal `db:"original_price" json:"original_price"`
	Description        string          `db:"description" json:"description"`
	ImageURL           string          `db:"image_url" json:"image_url"`
	Category           PackageCategory `db:"category" json:"category"`
	Rating             float64         `db:"rating" json:"rating"`
	Available          bool            `db:"available" json:"available"`
	DiscountPercentage int             `db:"discount_percentage" json:"discount_percentage"`
	CreatedAt          time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time       `db:"updated_at" json:"updated_at"`

	Inclusions     []string `db:"-" json:"inclusions"`
	InclusionsText string   `db:"-" json:"inclusions_text"`
}

func (p *TravelPackage) setInclusions(list []string) {
	if list == nil {
		list = []string{}
	}
	p.Inclusions = list
	p.InclusionsText = strings.Join(list, ", ")
}

type packageInclusion struct {
	PackageID int64  `db:"package_id"`
	Inclusion string `db:"inclusion"`
}
