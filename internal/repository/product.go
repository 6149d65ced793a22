package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/tuanvumaihuynh/digital-store/internal/model"
	"github.com/tuanvumaihuynh/digital-store/internal/productquery"
	"github.com/tuanvumaihuynh/digital-store/internal/storage/db"
)

type ListProductsParams struct {
	Filter productquery.Filter
	Sort   productquery.SortKey
	Page   int
	Limit  int
}

type CreateProductParams struct {
	Name           string
	Description    string
	Price          decimal.Decimal
	CategoryID     int64
	StockAvailable *int
	FilePath       string
	CoverImagePath string
}

// UpdateProductParams holds the columns to change. Nil fields are left as they are.
// Stock is changed only when SetStock is true, and a nil StockAvailable then means unlimited.
type UpdateProductParams struct {
	Name           *string
	Description    *string
	Price          *decimal.Decimal
	CategoryID     *int64
	SetStock       bool
	StockAvailable *int
	FilePath       *string
	CoverImagePath *string
}

// IsEmpty reports whether the params change no column.
func (p UpdateProductParams) IsEmpty() bool {
	return p.Name == nil &&
		p.Description == nil &&
		p.Price == nil &&
		p.CategoryID == nil &&
		!p.SetStock &&
		p.FilePath == nil &&
		p.CoverImagePath == nil
}

type ProductRepository interface {
	WithDB(db db.DB) ProductRepository
	ListProducts(ctx context.Context, params ListProductsParams) ([]model.Product, error)
	CountProducts(ctx context.Context, filter productquery.Filter) (int64, error)
	GetProduct(ctx context.Context, id int64) (model.Product, error)
	CreateProduct(ctx context.Context, params CreateProductParams) (int64, error)
	UpdateProduct(ctx context.Context, id int64, params UpdateProductParams) (int64, error)
	DeleteProduct(ctx context.Context, id int64) (int64, error)
}

type productRepository struct {
	db db.DB
}

func NewProductRepository(db db.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r productRepository) WithDB(db db.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r productRepository) ListProducts(ctx context.Context, params ListProductsParams) ([]model.Product, error) {
	q, _ := productquery.Build(params.Filter, params.Sort, params.Page, params.Limit)

	rows, err := r.db.Query(ctx, q.SQL, q.Args...)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	products := []model.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}

	return products, nil
}

func (r productRepository) CountProducts(ctx context.Context, filter productquery.Filter) (int64, error) {
	filter.ProductID = nil
	_, q := productquery.Build(filter, productquery.DefaultSort, productquery.DefaultPage, productquery.DefaultLimit)

	var total int64
	if err := r.db.QueryRow(ctx, q.SQL, q.Args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}

	return total, nil
}

func (r productRepository) GetProduct(ctx context.Context, id int64) (model.Product, error) {
	q, _ := productquery.Build(productquery.Filter{ProductID: &id}, productquery.DefaultSort, 0, 0)

	p, err := scanProduct(r.db.QueryRow(ctx, q.SQL, q.Args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Product{}, ErrNotFound
		}
		return model.Product{}, err
	}

	return p, nil
}

func (r productRepository) CreateProduct(ctx context.Context, params CreateProductParams) (int64, error) {
	var id int64
	if err := r.db.QueryRow(ctx, `
		INSERT INTO products (
			product_name, description, price, category_id, stock_available,
			file_path, cover_image_path
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING product_id
	`,
		params.Name,
		params.Description,
		params.Price,
		params.CategoryID,
		params.StockAvailable,
		params.FilePath,
		params.CoverImagePath,
	).Scan(&id); err != nil {
		return 0, fmt.Errorf("insert product: %w", err)
	}

	return id, nil
}

// UpdateProduct sets only the columns present in params, plus updated_at,
// and returns the number of affected rows.
func (r productRepository) UpdateProduct(ctx context.Context, id int64, params UpdateProductParams) (int64, error) {
	if params.IsEmpty() {
		return 0, nil
	}

	sql, args := buildUpdateProduct(id, params)
	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("update product: %w", err)
	}

	return tag.RowsAffected(), nil
}

func buildUpdateProduct(id int64, params UpdateProductParams) (string, []any) {
	var (
		sets []string
		args []any
	)
	set := func(column string, v any) {
		args = append(args, v)
		sets = append(sets, column+" = $"+strconv.Itoa(len(args)))
	}

	if params.Name != nil {
		set("product_name", *params.Name)
	}
	if params.Description != nil {
		set("description", *params.Description)
	}
	if params.Price != nil {
		set("price", *params.Price)
	}
	if params.CategoryID != nil {
		set("category_id", *params.CategoryID)
	}
	if params.SetStock {
		set("stock_available", params.StockAvailable)
	}
	if params.FilePath != nil {
		set("file_path", *params.FilePath)
	}
	if params.CoverImagePath != nil {
		set("cover_image_path", *params.CoverImagePath)
	}
	sets = append(sets, "updated_at = NOW()")

	args = append(args, id)
	sql := "UPDATE products SET " + strings.Join(sets, ", ") +
		" WHERE product_id = $" + strconv.Itoa(len(args))

	return sql, args
}

func (r productRepository) DeleteProduct(ctx context.Context, id int64) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM products WHERE product_id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("delete product: %w", err)
	}

	return tag.RowsAffected(), nil
}

func scanProduct(row pgx.Row) (model.Product, error) {
	var (
		p      model.Product
		price  decimal.Decimal
		rating decimal.Decimal
	)

	if err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&price,
		&p.CategoryID,
		&p.CategoryName,
		&p.StockAvailable,
		&p.FilePath,
		&p.PreviewPath,
		&p.CoverImagePath,
		&rating,
		&p.TotalRatings,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Product{}, err
		}
		return model.Product{}, fmt.Errorf("scan product: %w", err)
	}

	p.Price = price.InexactFloat64()
	p.AverageRating = rating.InexactFloat64()

	return p, nil
}
