package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tuanvumaihuynh/digital-store/internal/apperr"
	"github.com/tuanvumaihuynh/digital-store/internal/model"
	"github.com/tuanvumaihuynh/digital-store/internal/repository"
	"github.com/tuanvumaihuynh/digital-store/internal/storage/db"
)

type CreateCategoryParams struct {
	Name        string
	Description *string
}

type UpdateCategoryParams struct {
	ID          int64
	Name        string
	Description *string
}

type CategoryService interface {
	ListCategories(ctx context.Context) ([]model.Category, error)
	GetCategory(ctx context.Context, id int64) (model.Category, error)
	CreateCategory(ctx context.Context, params CreateCategoryParams) (model.Category, error)
	UpdateCategory(ctx context.Context, params UpdateCategoryParams) (model.Category, error)
	DeleteCategory(ctx context.Context, id int64) error
}

type categoryService struct {
	categoryRepo repository.CategoryRepository
	logger       *slog.Logger
}

func NewCategoryService(logger *slog.Logger, categoryRepo repository.CategoryRepository) CategoryService {
	return &categoryService{
		categoryRepo: categoryRepo,
		logger:       logger.With(slog.String("service", "category")),
	}
}

var errMsgAnotherCategoryName = "Another category with this name already exists."

func (s *categoryService) ListCategories(ctx context.Context) ([]model.Category, error) {
	categories, err := s.categoryRepo.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("category repository list categories: %w", err)
	}
	return categories, nil
}

func (s *categoryService) GetCategory(ctx context.Context, id int64) (model.Category, error) {
	c, err := s.categoryRepo.GetCategory(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Category{}, apperr.CategoryNotFound
		}
		return model.Category{}, fmt.Errorf("category repository get category: %w", err)
	}
	return c, nil
}

func (s *categoryService) CreateCategory(ctx context.Context, params CreateCategoryParams) (model.Category, error) {
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return model.Category{}, apperr.ValidationErr.WithMsg("Category name is required.")
	}

	exists, err := s.categoryRepo.CategoryNameExists(ctx, name, 0)
	if err != nil {
		return model.Category{}, fmt.Errorf("category repository category name exists: %w", err)
	}
	if exists {
		return model.Category{}, apperr.CategoryNameExists
	}

	c, err := s.categoryRepo.CreateCategory(ctx, repository.CreateCategoryParams{
		Name:        name,
		Description: normalizeOptional(params.Description),
	})
	if err != nil {
		if db.IsUniqueViolation(err, repository.CategoryNameUniqueConstraint) {
			return model.Category{}, apperr.CategoryNameExists
		}
		return model.Category{}, fmt.Errorf("category repository create category: %w", err)
	}

	s.logger.InfoContext(ctx, "category created", slog.Int64("category_id", c.ID))
	return c, nil
}

func (s *categoryService) UpdateCategory(ctx context.Context, params UpdateCategoryParams) (model.Category, error) {
	name := strings.TrimSpace(params.Name)
	if params.ID < 1 || name == "" {
		return model.Category{}, apperr.ValidationErr.WithMsg("Category ID and name are required for update.")
	}

	exists, err := s.categoryRepo.CategoryNameExists(ctx, name, params.ID)
	if err != nil {
		return model.Category{}, fmt.Errorf("category repository category name exists: %w", err)
	}
	if exists {
		return model.Category{}, apperr.CategoryNameExists.WithMsg(errMsgAnotherCategoryName)
	}

	c, err := s.categoryRepo.UpdateCategory(ctx, params.ID, repository.UpdateCategoryParams{
		Name:        name,
		Description: normalizeOptional(params.Description),
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return model.Category{}, apperr.CategoryNotFound
		case db.IsUniqueViolation(err, repository.CategoryNameUniqueConstraint):
			return model.Category{}, apperr.CategoryNameExists.WithMsg(errMsgAnotherCategoryName)
		default:
			return model.Category{}, fmt.Errorf("category repository update category: %w", err)
		}
	}

	return c, nil
}

func (s *categoryService) DeleteCategory(ctx context.Context, id int64) error {
	if id < 1 {
		return apperr.ValidationErr.WithMsg("Category ID is required for deletion.")
	}

	count, err := s.categoryRepo.CountCategoryProducts(ctx, id)
	if err != nil {
		return fmt.Errorf("category repository count category products: %w", err)
	}
	if count > 0 {
		return categoryInUse(count)
	}

	affected, err := s.categoryRepo.DeleteCategory(ctx, id)
	if err != nil {
		if db.IsForeignKeyViolation(err, repository.ProductCategoryFKConstraint) {
			return apperr.CategoryInUse.WrapParent(err)
		}
		return fmt.Errorf("category repository delete category: %w", err)
	}
	if affected == 0 {
		return apperr.CategoryNotFound
	}

	s.logger.InfoContext(ctx, "category deleted", slog.Int64("category_id", id))
	return nil
}

func categoryInUse(count int64) error {
	return apperr.CategoryInUse.WithMsg(fmt.Sprintf(
		"Cannot delete category. It is currently associated with %d product(s). Please reassign products before deleting.",
		count,
	))
}

// normalizeOptional trims s and maps blank input to nil.
func normalizeOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
