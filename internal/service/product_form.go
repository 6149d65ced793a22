package service

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/tuanvumaihuynh/digital-store/internal/repository"
	"github.com/tuanvumaihuynh/digital-store/internal/upload"
	"github.com/tuanvumaihuynh/digital-store/pkg/ptr"
)

// ProductForm is the submitted product form. A nil field was not submitted.
type ProductForm struct {
	Name           *string
	Description    *string
	Price          *string
	CategoryID     *string
	StockAvailable *string

	ProductFile *upload.File
	CoverImage  *upload.File
}

const (
	maxProductNameLen = 255
	maxPrice          = "99999999.99"
)

var maxPriceDecimal = decimal.RequireFromString(maxPrice)

// parsePrice accepts a non-negative decimal that fits numeric(10,2).
func parsePrice(s string) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil || d.IsNegative() || d.GreaterThan(maxPriceDecimal) {
		return decimal.Decimal{}, false
	}
	return d.Round(2), true
}

func parseID(s string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}

// parseStock maps "" to unlimited (nil) and anything else to a non-negative quantity.
func parseStock(s string) (*int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, true
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 || n > math.MaxInt32 {
		return nil, false
	}
	return &n, true
}

// validateCreate checks a create form and collects every problem found.
func (s *productService) validateCreate(ctx context.Context, form ProductForm) (repository.CreateProductParams, []string, error) {
	var (
		params repository.CreateProductParams
		errs   []string
	)

	params.Name = strings.TrimSpace(ptr.Deref(form.Name))
	switch {
	case params.Name == "":
		errs = append(errs, "Product name is required.")
	case utf8.RuneCountInString(params.Name) > maxProductNameLen:
		errs = append(errs, fmt.Sprintf("Product name cannot exceed %d characters.", maxProductNameLen))
	}

	params.Description = strings.TrimSpace(ptr.Deref(form.Description))
	if params.Description == "" {
		errs = append(errs, "Description is required.")
	}

	if price, ok := parsePrice(ptr.Deref(form.Price)); ok {
		params.Price = price
	} else {
		errs = append(errs, "Valid price is required (must be a positive number).")
	}

	categoryID, categoryOK := parseID(ptr.Deref(form.CategoryID))
	if categoryOK {
		params.CategoryID = categoryID
	} else {
		errs = append(errs, "Valid category ID is required.")
	}

	if form.StockAvailable != nil {
		stock, ok := parseStock(*form.StockAvailable)
		if ok {
			params.StockAvailable = stock
		} else {
			errs = append(errs, "Stock available must be a valid integer or empty for unlimited.")
		}
	}

	if categoryOK {
		exists, err := s.categoryRepo.CategoryExists(ctx, categoryID)
		if err != nil {
			return params, nil, fmt.Errorf("category repository category exists: %w", err)
		}
		if !exists {
			errs = append(errs, msgCategoryMissing)
		}
	}

	return params, errs, nil
}

// validateUpdate checks only the submitted fields of an update form.
func (s *productService) validateUpdate(ctx context.Context, form ProductForm) (repository.UpdateProductParams, []string, error) {
	var (
		params repository.UpdateProductParams
		errs   []string
	)

	if form.Name != nil {
		name := strings.TrimSpace(*form.Name)
		switch {
		case name == "":
			errs = append(errs, "Product name cannot be empty if provided.")
		case utf8.RuneCountInString(name) > maxProductNameLen:
			errs = append(errs, fmt.Sprintf("Product name cannot exceed %d characters.", maxProductNameLen))
		default:
			params.Name = &name
		}
	}

	if form.Description != nil {
		description := strings.TrimSpace(*form.Description)
		if description == "" {
			errs = append(errs, "Description cannot be empty if provided.")
		} else {
			params.Description = &description
		}
	}

	if form.Price != nil {
		if price, ok := parsePrice(*form.Price); ok {
			params.Price = &price
		} else {
			errs = append(errs, "If provided, price must be a valid positive number.")
		}
	}

	if form.CategoryID != nil {
		categoryID, ok := parseID(*form.CategoryID)
		if !ok {
			errs = append(errs, "If provided, category ID must be a valid integer.")
		} else {
			exists, err := s.categoryRepo.CategoryExists(ctx, categoryID)
			if err != nil {
				return params, nil, fmt.Errorf("category repository category exists: %w", err)
			}
			if exists {
				params.CategoryID = &categoryID
			} else {
				errs = append(errs, msgCategoryMissing)
			}
		}
	}

	if form.StockAvailable != nil {
		if stock, ok := parseStock(*form.StockAvailable); ok {
			params.SetStock = true
			params.StockAvailable = stock
		} else {
			errs = append(errs, "If provided, stock available must be a valid integer or empty for unlimited.")
		}
	}

	return params, errs, nil
}

const msgCategoryMissing = "Selected category does not exist."

// changedFields names the columns params would set, for the updated event.
func changedFields(params repository.UpdateProductParams) []string {
	var fields []string
	if params.Name != nil {
		fields = append(fields, "product_name")
	}
	if params.Description != nil {
		fields = append(fields, "description")
	}
	if params.Price != nil {
		fields = append(fields, "price")
	}
	if params.CategoryID != nil {
		fields = append(fields, "category_id")
	}
	if params.SetStock {
		fields = append(fields, "stock_available")
	}
	if params.FilePath != nil {
		fields = append(fields, "file_path")
	}
	if params.CoverImagePath != nil {
		fields = append(fields, "cover_image_path")
	}
	return fields
}
