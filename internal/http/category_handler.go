package http

import (
	"encoding/json"
	"net/http"

	"github.com/tuanvumaihuynh/digital-store/internal/apperr"
	"github.com/tuanvumaihuynh/digital-store/internal/model"
	"github.com/tuanvumaihuynh/digital-store/internal/service"
)

type categoryHandler struct {
	responder
	categorySvc service.CategoryService
}

func newCategoryHandler(rs responder, categorySvc service.CategoryService) *categoryHandler {
	return &categoryHandler{
		responder:   rs,
		categorySvc: categorySvc,
	}
}

type categoryRequest struct {
	CategoryID          json.Number `json:"category_id"`
	CategoryName        string      `json:"category_name"`
	CategoryDescription *string     `json:"category_description"`
}

func (req categoryRequest) id() int64 {
	id, _ := parseID(req.CategoryID.String())
	return id
}

type createCategoryResponse struct {
	Status     string `json:"status"`
	Message    string `json:"message"`
	CategoryID int64  `json:"category_id"`
}

// GetCategories returns one category when category_id is given, all of them otherwise.
func (h *categoryHandler) GetCategories(w http.ResponseWriter, r *http.Request) {
	if raw := r.URL.Query().Get("category_id"); raw != "" {
		id, ok := parseID(raw)
		if !ok {
			h.error(w, r, apperr.CategoryNotFound)
			return
		}

		c, err := h.categorySvc.GetCategory(r.Context(), id)
		if err != nil {
			h.error(w, r, err)
			return
		}
		h.json(w, r, http.StatusOK, dataResponse[model.Category]{Status: statusSuccess, Data: c})
		return
	}

	categories, err := h.categorySvc.ListCategories(r.Context())
	if err != nil {
		h.error(w, r, err)
		return
	}
	if categories == nil {
		categories = []model.Category{}
	}
	h.json(w, r, http.StatusOK, dataResponse[[]model.Category]{Status: statusSuccess, Data: categories})
}

func (h *categoryHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := bindBody(w, r, &req); err != nil {
		h.error(w, r, err)
		return
	}

	c, err := h.categorySvc.CreateCategory(r.Context(), service.CreateCategoryParams{
		Name:        req.CategoryName,
		Description: req.CategoryDescription,
	})
	if err != nil {
		h.error(w, r, err)
		return
	}

	h.json(w, r, http.StatusCreated, createCategoryResponse{
		Status:     statusSuccess,
		Message:    "Category created successfully.",
		CategoryID: c.ID,
	})
}

func (h *categoryHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := bindBody(w, r, &req); err != nil {
		h.error(w, r, err)
		return
	}

	if _, err := h.categorySvc.UpdateCategory(r.Context(), service.UpdateCategoryParams{
		ID:          req.id(),
		Name:        req.CategoryName,
		Description: req.CategoryDescription,
	}); err != nil {
		h.error(w, r, err)
		return
	}

	h.json(w, r, http.StatusOK, messageResponse{Status: statusSuccess, Message: "Category updated successfully."})
}

func (h *categoryHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, _ := parseID(r.URL.Query().Get("category_id"))
	if id == 0 {
		var req categoryRequest
		if err := bindBody(w, r, &req); err != nil {
			h.error(w, r, err)
			return
		}
		id = req.id()
	}

	if err := h.categorySvc.DeleteCategory(r.Context(), id); err != nil {
		h.error(w, r, err)
		return
	}

	h.json(w, r, http.StatusOK, messageResponse{Status: statusSuccess, Message: "Category deleted successfully."})
}
