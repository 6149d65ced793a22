package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/tuanvumaihuynh/digital-store/internal/apperr"
	"github.com/tuanvumaihuynh/digital-store/internal/config"
	"github.com/tuanvumaihuynh/digital-store/internal/event"
	"github.com/tuanvumaihuynh/digital-store/internal/metric"
	"github.com/tuanvumaihuynh/digital-store/internal/model"
	"github.com/tuanvumaihuynh/digital-store/internal/productquery"
	"github.com/tuanvumaihuynh/digital-store/internal/repository"
	"github.com/tuanvumaihuynh/digital-store/internal/storage/cache"
	"github.com/tuanvumaihuynh/digital-store/internal/storage/db"
	"github.com/tuanvumaihuynh/digital-store/internal/upload"
	"github.com/tuanvumaihuynh/digital-store/pkg/compensate"
	"github.com/tuanvumaihuynh/digital-store/pkg/outbox"
	"github.com/tuanvumaihuynh/digital-store/pkg/zerror"
)

// FileStore persists uploaded files. *upload.Uploader implements it.
type FileStore interface {
	Store(ctx context.Context, f *upload.File, spec upload.Spec) (string, error)
	Remove(ctx context.Context, path string) error
}

type ListProductsParams struct {
	Filter productquery.Filter
	Sort   productquery.SortKey
	Page   int
	Limit  int
}

type CreateProductResult struct {
	ProductID      int64
	FilePath       string
	CoverImagePath string
}

type UpdateProductParams struct {
	ProductID int64
	Form      ProductForm
}

type UpdateProductResult struct {
	// Changed is false when the form carried nothing to update.
	Changed bool
	Fields  []string
	// CleanupErrors lists replaced files that could not be removed after the
	// update was committed.
	CleanupErrors []string
}

type ProductService interface {
	// ListProducts returns one page of products. When the page lies past the
	// last page it returns the page metadata together with apperr.PageNotFound.
	ListProducts(ctx context.Context, params ListProductsParams) (model.ProductPage, error)
	GetProduct(ctx context.Context, id int64) (model.Product, error)
	CreateProduct(ctx context.Context, form ProductForm) (CreateProductResult, error)
	UpdateProduct(ctx context.Context, params UpdateProductParams) (UpdateProductResult, error)
	DeleteProduct(ctx context.Context, id int64) error
}

type productService struct {
	db            db.DB
	productRepo   repository.ProductRepository
	categoryRepo  repository.CategoryRepository
	outboxMsgRepo repository.OutboxMsgRepository
	files         FileStore
	productCache  cache.ProductCache
	metrics       *metric.Metrics
	logger        *slog.Logger

	productFileSpec upload.Spec
	coverImageSpec  upload.Spec
}

func NewProductService(
	cfg config.Upload,
	logger *slog.Logger,
	db db.DB,
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	outboxMsgRepo repository.OutboxMsgRepository,
	files FileStore,
	productCache cache.ProductCache,
	metrics *metric.Metrics,
) ProductService {
	return &productService{
		db:            db,
		productRepo:   productRepo,
		categoryRepo:  categoryRepo,
		outboxMsgRepo: outboxMsgRepo,
		files:         files,
		productCache:  productCache,
		metrics:       metrics,
		logger:        logger.With(slog.String("service", "product")),
		productFileSpec: upload.Spec{
			Field:       "product_file",
			Dir:         upload.ProductFileDir,
			AllowedExts: upload.ProductFileExts,
			MaxSizeMB:   cfg.ProductFileMaxMB,
		},
		coverImageSpec: upload.Spec{
			Field:       "cover_image",
			Dir:         upload.CoverImageDir,
			AllowedExts: upload.CoverImageExts,
			MaxSizeMB:   cfg.CoverImageMaxMB,
		},
	}
}

func (s *productService) ListProducts(ctx context.Context, params ListProductsParams) (model.ProductPage, error) {
	page, limit := productquery.NormalizePage(params.Page, params.Limit)
	params.Filter.ProductID = nil

	total, err := s.productRepo.CountProducts(ctx, params.Filter)
	if err != nil {
		return model.ProductPage{}, fmt.Errorf("product repository count products: %w", err)
	}

	result := model.ProductPage{
		Products:   []model.Product{},
		TotalItems: total,
		Page:       page,
		Limit:      limit,
		TotalPages: productquery.TotalPages(total, page, limit),
	}

	if productquery.OutOfRange(page, total, limit) {
		return result, apperr.PageNotFound
	}
	if total == 0 {
		return result, nil
	}

	products, err := s.productRepo.ListProducts(ctx, repository.ListProductsParams{
		Filter: params.Filter,
		Sort:   params.Sort,
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		return model.ProductPage{}, fmt.Errorf("product repository list products: %w", err)
	}
	result.Products = products

	return result, nil
}

func (s *productService) GetProduct(ctx context.Context, id int64) (model.Product, error) {
	if s.productCache != nil {
		p, ok, err := s.productCache.Get(ctx, id)
		if err != nil {
			s.logger.WarnContext(ctx, "error reading product cache",
				slog.Int64("product_id", id), slog.Any("error", err))
		} else if ok {
			return p, nil
		}
	}

	p, err := s.productRepo.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Product{}, apperr.ProductNotFound
		}
		return model.Product{}, fmt.Errorf("product repository get product: %w", err)
	}

	if s.productCache != nil {
		if err := s.productCache.Set(ctx, p); err != nil {
			s.logger.WarnContext(ctx, "error writing product cache",
				slog.Int64("product_id", id), slog.Any("error", err))
		}
	}

	return p, nil
}

func (s *productService) CreateProduct(ctx context.Context, form ProductForm) (CreateProductResult, error) {
	params, validationErrs, err := s.validateCreate(ctx, form)
	if err != nil {
		return CreateProductResult{}, err
	}
	if len(validationErrs) > 0 {
		return CreateProductResult{}, apperr.ValidationErr.WithDetails(validationErrs...)
	}

	var undo compensate.Compensator

	fileSpec := s.productFileSpec
	fileSpec.Required = true
	coverSpec := s.coverImageSpec
	coverSpec.Required = true

	paths, uploadErrs, err := s.storeFiles(ctx, &undo, []fileUpload{
		{file: form.ProductFile, spec: fileSpec},
		{file: form.CoverImage, spec: coverSpec},
	})
	if err != nil || len(uploadErrs) > 0 {
		s.compensate(ctx, &undo, "create")
		if err != nil {
			return CreateProductResult{}, err
		}
		return CreateProductResult{}, apperr.UploadErr.WithDetails(uploadErrs...)
	}
	params.FilePath, params.CoverImagePath = paths[0], paths[1]

	var id int64
	if err := s.db.WithTx(ctx, func(db db.DB) error {
		var err error
		id, err = s.productRepo.
			WithDB(db).
			CreateProduct(ctx, params)
		if err != nil {
			return fmt.Errorf("product repository create product: %w", err)
		}

		ev := event.ProductCreatedEvent{
			ProductID:      id,
			Name:           params.Name,
			CategoryID:     params.CategoryID,
			Price:          params.Price.InexactFloat64(),
			StockAvailable: params.StockAvailable,
			FilePath:       params.FilePath,
			CoverImagePath: params.CoverImagePath,
		}
		return s.enqueue(ctx, db, event.TopicProductCreated, id, ev)
	}); err != nil {
		s.compensate(ctx, &undo, "create")
		if isCategoryFKViolation(err) {
			return CreateProductResult{}, apperr.ValidationErr.WithDetails(msgCategoryMissing)
		}
		return CreateProductResult{}, fmt.Errorf("db with tx: %w", err)
	}
	undo.Discard()

	s.logger.InfoContext(ctx, "product created", slog.Int64("product_id", id))

	return CreateProductResult{
		ProductID:      id,
		FilePath:       params.FilePath,
		CoverImagePath: params.CoverImagePath,
	}, nil
}

func (s *productService) UpdateProduct(ctx context.Context, req UpdateProductParams) (UpdateProductResult, error) {
	existing, err := s.productRepo.GetProduct(ctx, req.ProductID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return UpdateProductResult{}, apperr.ProductNotFound
		}
		return UpdateProductResult{}, fmt.Errorf("product repository get product: %w", err)
	}

	params, validationErrs, err := s.validateUpdate(ctx, req.Form)
	if err != nil {
		return UpdateProductResult{}, err
	}
	if len(validationErrs) > 0 {
		return UpdateProductResult{}, apperr.ValidationErr.WithDetails(validationErrs...)
	}

	var undo compensate.Compensator

	paths, uploadErrs, err := s.storeFiles(ctx, &undo, []fileUpload{
		{file: req.Form.ProductFile, spec: s.productFileSpec},
		{file: req.Form.CoverImage, spec: s.coverImageSpec},
	})
	if err != nil || len(uploadErrs) > 0 {
		s.compensate(ctx, &undo, "update")
		if err != nil {
			return UpdateProductResult{}, err
		}
		return UpdateProductResult{}, apperr.UploadErr.WithDetails(uploadErrs...)
	}
	if paths[0] != "" {
		params.FilePath = &paths[0]
	}
	if paths[1] != "" {
		params.CoverImagePath = &paths[1]
	}

	if params.IsEmpty() {
		return UpdateProductResult{Changed: false}, nil
	}

	fields := changedFields(params)
	if err := s.db.WithTx(ctx, func(db db.DB) error {
		affected, err := s.productRepo.
			WithDB(db).
			UpdateProduct(ctx, req.ProductID, params)
		if err != nil {
			return fmt.Errorf("product repository update product: %w", err)
		}
		if affected == 0 {
			return apperr.ProductNotFound
		}

		return s.enqueue(ctx, db, event.TopicProductUpdated, req.ProductID, event.ProductUpdatedEvent{
			ProductID: req.ProductID,
			Fields:    fields,
		})
	}); err != nil {
		s.compensate(ctx, &undo, "update")
		switch {
		case errors.Is(err, apperr.ProductNotFound):
			return UpdateProductResult{}, apperr.ProductNotFound
		case isCategoryFKViolation(err):
			return UpdateProductResult{}, apperr.ValidationErr.WithDetails(msgCategoryMissing)
		default:
			return UpdateProductResult{}, fmt.Errorf("db with tx: %w", err)
		}
	}
	undo.Discard()

	// The row no longer references the replaced files. A failure here leaves
	// an orphan on storage but the update stays committed.
	var cleanupErrs []string
	if params.FilePath != nil && existing.FilePath != "" && existing.FilePath != *params.FilePath {
		if err := s.files.Remove(ctx, existing.FilePath); err != nil {
			cleanupErrs = append(cleanupErrs, "Failed to delete old product file: "+existing.FilePath)
			s.recordCleanupFailure(ctx, "update", existing.FilePath, err)
		}
	}
	if params.CoverImagePath != nil && existing.CoverImagePath != "" && existing.CoverImagePath != *params.CoverImagePath {
		if err := s.files.Remove(ctx, existing.CoverImagePath); err != nil {
			cleanupErrs = append(cleanupErrs, "Failed to delete old cover image: "+existing.CoverImagePath)
			s.recordCleanupFailure(ctx, "update", existing.CoverImagePath, err)
		}
	}

	s.invalidate(ctx, req.ProductID)
	s.logger.InfoContext(ctx, "product updated",
		slog.Int64("product_id", req.ProductID),
		slog.Any("fields", fields),
	)

	return UpdateProductResult{
		Changed:       true,
		Fields:        fields,
		CleanupErrors: cleanupErrs,
	}, nil
}

func (s *productService) DeleteProduct(ctx context.Context, id int64) error {
	existing, err := s.productRepo.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.ProductNotFound
		}
		return fmt.Errorf("product repository get product: %w", err)
	}

	if err := s.db.WithTx(ctx, func(db db.DB) error {
		affected, err := s.productRepo.
			WithDB(db).
			DeleteProduct(ctx, id)
		if err != nil {
			return fmt.Errorf("product repository delete product: %w", err)
		}
		if affected == 0 {
			return apperr.ProductNotFound
		}

		if err := s.enqueue(ctx, db, event.TopicProductDeleted, id, event.ProductDeletedEvent{ProductID: id}); err != nil {
			return err
		}

		// Files go before commit so that a failed removal rolls the row back.
		var failed []string
		if existing.FilePath != "" {
			if err := s.files.Remove(ctx, existing.FilePath); err != nil {
				failed = append(failed, "Failed to delete product file: "+existing.FilePath)
				s.recordCleanupFailure(ctx, "delete", existing.FilePath, err)
			}
		}
		if existing.CoverImagePath != "" {
			if err := s.files.Remove(ctx, existing.CoverImagePath); err != nil {
				failed = append(failed, "Failed to delete cover image: "+existing.CoverImagePath)
				s.recordCleanupFailure(ctx, "delete", existing.CoverImagePath, err)
			}
		}
		if len(failed) > 0 {
			return apperr.FileCleanupFailed.WithDetails(failed...)
		}

		return nil
	}); err != nil {
		switch {
		case errors.Is(err, apperr.ProductNotFound):
			return apperr.ProductNotFound
		case errors.Is(err, apperr.FileCleanupFailed):
			var zErr zerror.ZError
			errors.As(err, &zErr)
			return zErr
		default:
			return fmt.Errorf("db with tx: %w", err)
		}
	}

	s.invalidate(ctx, id)
	s.logger.InfoContext(ctx, "product deleted", slog.Int64("product_id", id))

	return nil
}

type fileUpload struct {
	file *upload.File
	spec upload.Spec
}

// storeFiles stores every file, registering an undo step for each stored one.
// User facing upload problems are collected; any other failure is returned as err.
func (s *productService) storeFiles(ctx context.Context, undo *compensate.Compensator, uploads []fileUpload) ([]string, []string, error) {
	paths := make([]string, len(uploads))
	var uploadErrs []string

	for i, u := range uploads {
		p, err := s.files.Store(ctx, u.file, u.spec)
		if err != nil {
			var uErr *upload.Error
			if !errors.As(err, &uErr) {
				return nil, nil, fmt.Errorf("store %s: %w", u.spec.Field, err)
			}
			if uErr.Kind == upload.KindStorage || uErr.Kind == upload.KindTransport {
				s.logger.ErrorContext(ctx, "error storing upload",
					slog.String("field", uErr.Field),
					slog.String("kind", uErr.Kind.String()),
					slog.Any("error", err),
				)
			}
			uploadErrs = append(uploadErrs, uErr.Msg)
			continue
		}

		if p == "" {
			continue
		}
		paths[i] = p
		undo.Add(func(ctx context.Context) error {
			return s.files.Remove(ctx, p)
		})
	}

	return paths, uploadErrs, nil
}

// compensate removes files stored by a request that did not commit.
func (s *productService) compensate(ctx context.Context, undo *compensate.Compensator, op string) {
	if undo.Len() == 0 {
		return
	}
	if err := undo.Run(context.WithoutCancel(ctx)); err != nil {
		s.logger.ErrorContext(ctx, "error removing uploaded files",
			slog.String("operation", op),
			slog.Any("error", err),
		)
		if s.metrics != nil {
			s.metrics.FileCleanupFailures.WithLabelValues(op).Inc()
		}
	}
}

func (s *productService) recordCleanupFailure(ctx context.Context, op, path string, err error) {
	s.logger.ErrorContext(ctx, "error removing product file",
		slog.String("operation", op),
		slog.String("path", path),
		slog.Any("error", err),
	)
	if s.metrics != nil {
		s.metrics.FileCleanupFailures.WithLabelValues(op).Inc()
	}
}

func (s *productService) enqueue(ctx context.Context, db db.DB, topic string, productID int64, ev any) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	key := strconv.FormatInt(productID, 10)
	if err := s.outboxMsgRepo.
		WithDB(db).
		CreateOutboxMsg(ctx, repository.CreateOutboxMsgParams{
			Topic:        topic,
			Headers:      outbox.BuildHeaders(ctx),
			Payload:      payload,
			PartitionKey: &key,
		}); err != nil {
		return fmt.Errorf("outbox msg repository create outbox msg: %w", err)
	}

	return nil
}

func (s *productService) invalidate(ctx context.Context, id int64) {
	if s.productCache == nil {
		return
	}
	if err := s.productCache.Delete(ctx, id); err != nil {
		s.logger.WarnContext(ctx, "error invalidating product cache",
			slog.Int64("product_id", id), slog.Any("error", err))
	}
}

func isCategoryFKViolation(err error) bool {
	return db.IsForeignKeyViolation(err, repository.ProductCategoryFKConstraint)
}
