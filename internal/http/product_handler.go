package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/oapi-codegen/runtime"

	"github.com/tuanvumaihuynh/digital-store/internal/apperr"
	"github.com/tuanvumaihuynh/digital-store/internal/config"
	"github.com/tuanvumaihuynh/digital-store/internal/http/apierr"
	"github.com/tuanvumaihuynh/digital-store/internal/model"
	"github.com/tuanvumaihuynh/digital-store/internal/productquery"
	"github.com/tuanvumaihuynh/digital-store/internal/service"
	"github.com/tuanvumaihuynh/digital-store/internal/upload"
)

var errProductIDRequired = apperr.ValidationErr.WithMsg("Product ID is required and must be an integer.")

// formSlackBytes covers the text fields and multipart framing sent next to
// the two files.
const formSlackBytes = 1 << 20

type productHandler struct {
	responder
	productSvc     service.ProductService
	maxMemoryBytes int64
	maxBodyBytes   int64
}

func newProductHandler(
	rs responder,
	productSvc service.ProductService,
	maxMemoryMB int64,
	uploadCfg config.Upload,
) *productHandler {
	return &productHandler{
		responder:      rs,
		productSvc:     productSvc,
		maxMemoryBytes: maxMemoryMB << 20,
		maxBodyBytes:   (max(uploadCfg.ProductFileMaxMB, 0)+max(uploadCfg.CoverImageMaxMB, 0))<<20 + formSlackBytes,
	}
}

// parseProductForm caps the body at both file limits plus slack before
// parsing, so oversized uploads are rejected while streaming.
func (h *productHandler) parseProductForm(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	return parseForm(r, h.maxMemoryBytes)
}

type productListResponse struct {
	Status  string `json:"status"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
	model.ProductPage
}

type createProductResponse struct {
	Status         string `json:"status"`
	Message        string `json:"message"`
	ProductID      int64  `json:"product_id"`
	FilePath       string `json:"file_path"`
	CoverImagePath string `json:"cover_image_path"`
}

// bindOptional binds an optional query parameter. Values that do not parse
// are treated as absent.
func bindOptional[T any](q url.Values, name string) *T {
	var v *T
	if err := runtime.BindQueryParameter("form", true, false, name, q, &v); err != nil {
		return nil
	}
	return v
}

func (h *productHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if productID := bindOptional[int64](q, "product_id"); productID != nil && *productID > 0 {
		p, err := h.productSvc.GetProduct(r.Context(), *productID)
		if err != nil {
			h.error(w, r, err)
			return
		}
		h.json(w, r, http.StatusOK, dataResponse[model.Product]{Status: statusSuccess, Data: p})
		return
	}

	params := service.ListProductsParams{
		Sort: productquery.ParseSortKey(q.Get("sort_by")),
	}
	if categoryID := bindOptional[int64](q, "category_id"); categoryID != nil && *categoryID > 0 {
		params.Filter.CategoryID = categoryID
	}
	if term := bindOptional[string](q, "search_term"); term != nil {
		params.Filter.SearchTerm = *term
	}
	if page := bindOptional[int](q, "page"); page != nil {
		params.Page = *page
	}
	if limit := bindOptional[int](q, "limit"); limit != nil {
		params.Limit = *limit
	}

	page, err := h.productSvc.ListProducts(r.Context(), params)
	if err != nil {
		if errors.Is(err, apperr.PageNotFound) {
			res := apierr.New(err)
			h.json(w, r, res.StatusCode, productListResponse{
				Status:      res.Status,
				Code:        res.Code,
				Message:     res.Message,
				ProductPage: page,
			})
			return
		}
		h.error(w, r, err)
		return
	}

	h.json(w, r, http.StatusOK, productListResponse{Status: statusSuccess, ProductPage: page})
}

func (h *productHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.parseProductForm(w, r); err != nil {
		h.error(w, r, err)
		return
	}
	defer removeMultipartFiles(r)

	res, err := h.productSvc.CreateProduct(r.Context(), productForm(r))
	if err != nil {
		h.error(w, r, err)
		return
	}

	h.json(w, r, http.StatusCreated, createProductResponse{
		Status:         statusSuccess,
		Message:        "Product created successfully.",
		ProductID:      res.ProductID,
		FilePath:       res.FilePath,
		CoverImagePath: res.CoverImagePath,
	})
}

func (h *productHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.parseProductForm(w, r); err != nil {
		h.error(w, r, err)
		return
	}
	defer removeMultipartFiles(r)

	productID, ok := parseID(r.PostFormValue("product_id"))
	if !ok {
		h.error(w, r, errProductIDRequired)
		return
	}

	res, err := h.productSvc.UpdateProduct(r.Context(), service.UpdateProductParams{
		ProductID: productID,
		Form:      productForm(r),
	})
	if err != nil {
		h.error(w, r, err)
		return
	}

	if !res.Changed {
		h.json(w, r, http.StatusOK, messageResponse{Status: statusInfo, Message: "No changes provided for update."})
		return
	}

	h.json(w, r, http.StatusOK, messageResponse{
		Status:  statusSuccess,
		Message: "Product updated successfully.",
		Errors:  res.CleanupErrors,
	})
}

func (h *productHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	productID, ok := h.productIDFromRequest(w, r)
	if !ok {
		h.error(w, r, errProductIDRequired)
		return
	}

	if err := h.productSvc.DeleteProduct(r.Context(), productID); err != nil {
		h.error(w, r, err)
		return
	}

	h.json(w, r, http.StatusOK, messageResponse{
		Status:  statusSuccess,
		Message: "Product and associated files deleted successfully.",
	})
}

// productIDFromRequest reads product_id from the query string, then from a
// form body, then from a JSON body.
func (h *productHandler) productIDFromRequest(w http.ResponseWriter, r *http.Request) (int64, bool) {
	if id, ok := parseID(r.URL.Query().Get("product_id")); ok {
		return id, true
	}

	if isFormRequest(r) {
		if err := parseForm(r, maxBodyBytes); err != nil {
			return 0, false
		}
		defer removeMultipartFiles(r)
		return parseID(r.PostFormValue("product_id"))
	}

	var body struct {
		ProductID json.Number `json:"product_id"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&body); err != nil {
		return 0, false
	}
	return parseID(body.ProductID.String())
}

func productForm(r *http.Request) service.ProductForm {
	return service.ProductForm{
		Name:           formValue(r, "product_name"),
		Description:    formValue(r, "description"),
		Price:          formValue(r, "price"),
		CategoryID:     formValue(r, "category_id"),
		StockAvailable: formValue(r, "stock_available"),
		ProductFile:    formFile(r, "product_file"),
		CoverImage:     formFile(r, "cover_image"),
	}
}

func formFile(r *http.Request, key string) *upload.File {
	if r.MultipartForm == nil {
		return nil
	}
	files := r.MultipartForm.File[key]
	if len(files) == 0 {
		return nil
	}
	return upload.FromFileHeader(files[0])
}

func removeMultipartFiles(r *http.Request) {
	if r.MultipartForm != nil {
		//nolint:errcheck
		r.MultipartForm.RemoveAll()
	}
}
