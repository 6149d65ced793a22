package repository

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/tuanvumaihuynh/digital-store/pkg/ptr"
)

func TestBuildUpdateProduct(t *testing.T) {
	price := decimal.RequireFromString("12.50")

	tests := []struct {
		name     string
		params   UpdateProductParams
		wantSQL  string
		wantArgs []any
	}{
		{
			name:     "Should set only the price",
			params:   UpdateProductParams{Price: &price},
			wantSQL:  "UPDATE products SET price = $1, updated_at = NOW() WHERE product_id = $2",
			wantArgs: []any{price, int64(7)},
		},
		{
			name:     "Should set stock to NULL for unlimited",
			params:   UpdateProductParams{SetStock: true},
			wantSQL:  "UPDATE products SET stock_available = $1, updated_at = NOW() WHERE product_id = $2",
			wantArgs: []any{(*int)(nil), int64(7)},
		},
		{
			name:     "Should set a finite stock",
			params:   UpdateProductParams{SetStock: true, StockAvailable: ptr.New(3)},
			wantSQL:  "UPDATE products SET stock_available = $1, updated_at = NOW() WHERE product_id = $2",
			wantArgs: []any{ptr.New(3), int64(7)},
		},
		{
			name:     "Should ignore stock when it is not being set",
			params:   UpdateProductParams{StockAvailable: ptr.New(3), CoverImagePath: ptr.New("covers/b.png")},
			wantSQL:  "UPDATE products SET cover_image_path = $1, updated_at = NOW() WHERE product_id = $2",
			wantArgs: []any{"covers/b.png", int64(7)},
		},
		{
			name: "Should number every column in order",
			params: UpdateProductParams{
				Name:           ptr.New("Go in Action"),
				Description:    ptr.New("A book"),
				Price:          &price,
				CategoryID:     ptr.New(int64(4)),
				SetStock:       true,
				StockAvailable: ptr.New(10),
				FilePath:       ptr.New("products/a.pdf"),
				CoverImagePath: ptr.New("covers/a.png"),
			},
			wantSQL: "UPDATE products SET product_name = $1, description = $2, price = $3, category_id = $4, " +
				"stock_available = $5, file_path = $6, cover_image_path = $7, updated_at = NOW() " +
				"WHERE product_id = $8",
			wantArgs: []any{
				"Go in Action", "A book", price, int64(4), ptr.New(10),
				"products/a.pdf", "covers/a.png", int64(7),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args := buildUpdateProduct(7, tt.params)
			assert.Equal(t, tt.wantSQL, sql)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}
