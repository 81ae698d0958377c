package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// CategoryRepository handles database operations for categories.
type CategoryRepository struct {
	DB *sqlx.DB
}

// NewCategoryRepository creates a new CategoryRepository.
func NewCategoryRepository(db *sqlx.DB) *CategoryRepository {
	return &CategoryRepository{DB: db}
}

const categoryColumns = `id, name, slug, parent_id, created_time, last_mod_time`

// GetByID finds a category by its ID.
func (r *CategoryRepository) GetByID(ctx context.Context, id int64) (*Category, error) {
	var category Category
	err := r.DB.GetContext(ctx, &category, "SELECT "+categoryColumns+" FROM categories WHERE id = ?", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("category %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get category by id: %w", err)
	}
	return &category, nil
}

// GetBySlug finds a category by its slug.
func (r *CategoryRepository) GetBySlug(ctx context.Context, slug string) (*Category, error) {
	var category Category
	err := r.DB.GetContext(ctx, &category, "SELECT "+categoryColumns+" FROM categories WHERE slug = ? ORDER BY id LIMIT 1", slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("category %q: %w", slug, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get category by slug: %w", err)
	}
	return &category, nil
}

// GetAll retrieves all categories ordered by name.
func (r *CategoryRepository) GetAll(ctx context.Context) ([]*Category, error) {
	var categories []*Category
	if err := r.DB.SelectContext(ctx, &categories, "SELECT "+categoryColumns+" FROM categories ORDER BY name"); err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}
	return categories, nil
}

// Children returns the direct children of a category ordered by name.
func (r *CategoryRepository) Children(ctx context.Context, parentID int64) ([]*Category, error) {
	var categories []*Category
	err := r.DB.SelectContext(ctx, &categories, "SELECT "+categoryColumns+" FROM categories WHERE parent_id = ? ORDER BY name", parentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get child categories: %w", err)
	}
	return categories, nil
}

// Save creates a category, or updates it when ID is set. The slug is derived
// from the name.
func (r *CategoryRepository) Save(ctx context.Context, category *Category) (int64, error) {
	now := time.Now().UTC()
	category.Slug = Slugify(category.Name)
	category.LastModTime = now

	if category.ID != 0 {
		_, err := r.DB.NamedExecContext(ctx,
			`UPDATE categories SET name = :name, slug = :slug, parent_id = :parent_id, last_mod_time = :last_mod_time WHERE id = :id`,
			category)
		if err != nil {
			return 0, fmt.Errorf("failed to update category: %w", err)
		}
		return category.ID, nil
	}

	category.CreatedAt = now
	res, err := r.DB.NamedExecContext(ctx,
		`INSERT INTO categories (name, slug, parent_id, created_time, last_mod_time)
		 VALUES (:name, :slug, :parent_id, :created_time, :last_mod_time)`,
		category)
	if err != nil {
		return 0, fmt.Errorf("failed to insert category: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	category.ID = id
	return id, nil
}
