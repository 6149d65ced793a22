package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/tuanvumaihuynh/digital-store/internal/model"
	"github.com/tuanvumaihuynh/digital-store/internal/storage/db"
)

const (
	CategoryNameUniqueConstraint = "categories_category_name_key"
	ProductCategoryFKConstraint  = "products_category_id_fkey"
)

type CreateCategoryParams struct {
	Name        string
	Description *string
}

type UpdateCategoryParams struct {
	Name        string
	Description *string
}

type CategoryRepository interface {
	WithDB(db db.DB) CategoryRepository
	ListCategories(ctx context.Context) ([]model.Category, error)
	GetCategory(ctx context.Context, id int64) (model.Category, error)
	CategoryExists(ctx context.Context, id int64) (bool, error)
	// CategoryNameExists reports whether another category than excludeID uses name.
	CategoryNameExists(ctx context.Context, name string, excludeID int64) (bool, error)
	CountCategoryProducts(ctx context.Context, id int64) (int64, error)
	CreateCategory(ctx context.Context, params CreateCategoryParams) (model.Category, error)
	UpdateCategory(ctx context.Context, id int64, params UpdateCategoryParams) (model.Category, error)
	DeleteCategory(ctx context.Context, id int64) (int64, error)
}

type categoryRepository struct {
	db db.DB
}

func NewCategoryRepository(db db.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r categoryRepository) WithDB(db db.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

const categoryColumns = `category_id, category_name, category_description, created_at, updated_at`

func (r categoryRepository) ListCategories(ctx context.Context) ([]model.Category, error) {
	rows, err := r.db.Query(ctx, `SELECT `+categoryColumns+` FROM categories ORDER BY category_name ASC`)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}

	categories, err := pgx.CollectRows(rows, scanCategory)
	if err != nil {
		return nil, fmt.Errorf("collect categories: %w", err)
	}

	return categories, nil
}

func (r categoryRepository) GetCategory(ctx context.Context, id int64) (model.Category, error) {
	rows, err := r.db.Query(ctx, `SELECT `+categoryColumns+` FROM categories WHERE category_id = $1`, id)
	if err != nil {
		return model.Category{}, fmt.Errorf("query category: %w", err)
	}

	c, err := pgx.CollectExactlyOneRow(rows, scanCategory)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Category{}, ErrNotFound
		}
		return model.Category{}, fmt.Errorf("collect category: %w", err)
	}

	return c, nil
}

func (r categoryRepository) CategoryExists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	if err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM categories WHERE category_id = $1)`, id,
	).Scan(&exists); err != nil {
		return false, fmt.Errorf("check category exists: %w", err)
	}

	return exists, nil
}

func (r categoryRepository) CategoryNameExists(ctx context.Context, name string, excludeID int64) (bool, error) {
	var exists bool
	if err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM categories WHERE category_name = $1 AND category_id <> $2)`,
		name, excludeID,
	).Scan(&exists); err != nil {
		return false, fmt.Errorf("check category name exists: %w", err)
	}

	return exists, nil
}

func (r categoryRepository) CountCategoryProducts(ctx context.Context, id int64) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM products WHERE category_id = $1`, id,
	).Scan(&count); err != nil {
		return 0, fmt.Errorf("count category products: %w", err)
	}

	return count, nil
}

func (r categoryRepository) CreateCategory(ctx context.Context, params CreateCategoryParams) (model.Category, error) {
	rows, err := r.db.Query(ctx, `
		INSERT INTO categories (category_name, category_description)
		VALUES ($1, $2)
		RETURNING `+categoryColumns,
		params.Name, params.Description,
	)
	if err != nil {
		return model.Category{}, fmt.Errorf("insert category: %w", err)
	}

	c, err := pgx.CollectExactlyOneRow(rows, scanCategory)
	if err != nil {
		return model.Category{}, fmt.Errorf("insert category: %w", err)
	}

	return c, nil
}

func (r categoryRepository) UpdateCategory(ctx context.Context, id int64, params UpdateCategoryParams) (model.Category, error) {
	rows, err := r.db.Query(ctx, `
		UPDATE categories
		SET category_name = $1, category_description = $2, updated_at = NOW()
		WHERE category_id = $3
		RETURNING `+categoryColumns,
		params.Name, params.Description, id,
	)
	if err != nil {
		return model.Category{}, fmt.Errorf("update category: %w", err)
	}

	c, err := pgx.CollectExactlyOneRow(rows, scanCategory)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Category{}, ErrNotFound
		}
		return model.Category{}, fmt.Errorf("update category: %w", err)
	}

	return c, nil
}

func (r categoryRepository) DeleteCategory(ctx context.Context, id int64) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM categories WHERE category_id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("delete category: %w", err)
	}

	return tag.RowsAffected(), nil
}

func scanCategory(row pgx.CollectableRow) (model.Category, error) {
	var c model.Category
	err := row.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}
