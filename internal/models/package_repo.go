package models

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
)

type PackageRepo interface {
	ListPackages(ctx context.Context, category PackageCategory) ([]*TravelPackage, error)
	SearchPackages(ctx context.Context, query string) ([]*TravelPackage, error)
	GetPackage(ctx context.Context, id int64) (*TravelPackage, error)
	GetPackagesByIDs(ctx context.Context, ids []int64) (map[int64]*TravelPackage, error)
	CountPackages(ctx context.Context) (int, error)
	SeedPackages(ctx context.Context, pkgs []*TravelPackage) error
}

const packageColumns = `id, name, destination, duration, price, original_price, description, image_url,
	category, rating, available, discount_percentage, created_at, updated_at`

const packageOrder = ` ORDER BY rating DESC, created_at DESC, id ASC`

func (r *SQLRepo) ListPackages(ctx context.Context, category PackageCategory) ([]*TravelPackage, error) {
	query := `SELECT ` + packageColumns + ` FROM travel_packages WHERE available = ?`
	args := []interface{}{true}
	if category != "" {
		query += ` AND category = ?`
		args = append(args, string(category))
	}
	query += packageOrder

	var pkgs []*TravelPackage
	if err := r.db.SelectContext(ctx, &pkgs, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list packages: %w", err)
	}
	if err := r.attachInclusions(ctx, pkgs); err != nil {
		return nil, err
	}
	return pkgs, nil
}

// likePattern escapes LIKE wildcards with '!' so user input only ever matches
// literally.
func likePattern(q string) string {
	q = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_").Replace(strings.ToLower(q))
	return "%" + q + "%"
}

func (r *SQLRepo) SearchPackages(ctx context.Context, query string) ([]*TravelPackage, error) {
	pattern := likePattern(query)
	q := `SELECT ` + packageColumns + ` FROM travel_packages
		WHERE available = ?
		AND (LOWER(name) LIKE ? ESCAPE '!' OR LOWER(destination) LIKE ? ESCAPE '!' OR LOWER(description) LIKE ? ESCAPE '!')` +
		packageOrder

	var pkgs []*TravelPackage
	if err := r.db.SelectContext(ctx, &pkgs, r.db.Rebind(q), true, pattern, pattern, pattern); err != nil {
		return nil, fmt.Errorf("failed to search packages: %w", err)
	}
	if err := r.attachInclusions(ctx, pkgs); err != nil {
		return nil, err
	}
	return pkgs, nil
}

func (r *SQLRepo) GetPackage(ctx context.Context, id int64) (*TravelPackage, error) {
	var p TravelPackage
	err := r.db.GetContext(ctx, &p, r.db.Rebind(`SELECT `+packageColumns+` FROM travel_packages WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get package: %w", err)
	}
	if err := r.attachInclusions(ctx, []*TravelPackage{&p}); err != nil {
		return nil, err
	}
	return &p, nil
}

// GetPackagesByIDs returns the packages found, keyed by id. Missing ids are
// simply absent from the map.
func (r *SQLRepo) GetPackagesByIDs(ctx context.Context, ids []int64) (map[int64]*TravelPackage, error) {
	out := make(map[int64]*TravelPackage, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	query, args, err := sqlx.In(`SELECT `+packageColumns+` FROM travel_packages WHERE id IN (?)`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to build package query: %w", err)
	}

	var pkgs []*TravelPackage
	if err := r.db.SelectContext(ctx, &pkgs, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to get packages: %w", err)
	}
	for _, p := range pkgs {
		out[p.ID] = p
	}
	return out, nil
}

func (r *SQLRepo) CountPackages(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM travel_packages`); err != nil {
		return 0, fmt.Errorf("failed to count packages: %w", err)
	}
	return n, nil
}

// SeedPackages inserts pkgs and their inclusions in a single transaction.
func (r *SQLRepo) SeedPackages(ctx context.Context, pkgs []*TravelPackage) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	for i, p := range pkgs {
		// Distinct timestamps keep the created_at tie-break stable.
		p.CreatedAt = now.Add(time.Duration(i) * time.Second)
		p.UpdatedAt = p.CreatedAt

		id, err := insertReturningID(ctx, tx, `INSERT INTO travel_packages
			(name, destination, duration, price, original_price, description, image_url,
			category, rating, available, discount_percentage, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			p.Name, p.Destination, p.Duration, p.Price, p.OriginalPrice, p.Description, p.ImageURL,
			string(p.Category), p.Rating, p.Available, p.DiscountPercentage, p.CreatedAt, p.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert package %q: %w", p.Name, err)
		}
		p.ID = id

		for _, inc := range p.Inclusions {
			if _, err := tx.ExecContext(ctx, tx.Rebind(`INSERT INTO package_inclusions (package_id, inclusion) VALUES (?, ?)`), id, inc); err != nil {
				return fmt.Errorf("failed to insert inclusion for %q: %w", p.Name, err)
			}
		}
		p.setInclusions(p.Inclusions)
	}

	return tx.Commit()
}

// attachInclusions loads inclusions for every package with one IN query.
func (r *SQLRepo) attachInclusions(ctx context.Context, pkgs []*TravelPackage) error {
	if len(pkgs) == 0 {
		return nil
	}

	ids := make([]int64, len(pkgs))
	for i, p := range pkgs {
		ids[i] = p.ID
	}

	query, args, err := sqlx.In(`SELECT package_id, inclusion FROM package_inclusions WHERE package_id IN (?) ORDER BY id`, ids)
	if err != nil {
		return fmt.Errorf("failed to build inclusion query: %w", err)
	}

	var rows []packageInclusion
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("failed to load inclusions: %w", err)
	}

	byPackage := make(map[int64][]string, len(pkgs))
	for _, row := range rows {
		byPackage[row.PackageID] = append(byPackage[row.PackageID], row.Inclusion)
	}
	for _, p := range pkgs {
		p.setInclusions(byPackage[p.ID])
	}
	return nil
}
