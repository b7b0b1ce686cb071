package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"visa-advisory-portal/internal/apperror"
	"visa-advisory-portal/internal/model/requestresponse"
	"visa-advisory-portal/internal/ports"
	"visa-advisory-portal/internal/util"
)

type CategoryHandler struct {
	ports.CategoryService
}

func NewCategoryHandler(categoryService ports.CategoryService) *CategoryHandler {
	return &CategoryHandler{categoryService}
}

// ListCategoryNames godoc
// @Summary Required document categories
// @Description Active category names in checklist order
// @Tags Categories
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {array} string
// @Failure 401 {object} requestresponse.ErrorResponse
// @Router /categories [get]
func (h *CategoryHandler) ListCategoryNames(w http.ResponseWriter, r *http.Request) {
	names, err := h.CategoryService.Names(r.Context())
	if err != nil {
		util.WriteError(w, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, names)
}

// AdminListCategories godoc
// @Summary All categories with their settings
// @Tags Admin
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {array} model.Category
// @Failure 403 {object} requestresponse.ErrorResponse
// @Router /admin/categories [get]
func (h *CategoryHandler) AdminListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.CategoryService.List(r.Context())
	if err != nil {
		util.WriteError(w, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, categories)
}

// CreateCategory godoc
// @Summary Create a category
// @Tags Admin
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body requestresponse.CategoryRequest true "Category"
// @Success 201 {object} model.Category
// @Failure 400 {object} requestresponse.ErrorResponse
// @Failure 409 {object} requestresponse.ErrorResponse "Name already used"
// @Router /admin/categories [post]
func (h *CategoryHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req requestresponse.CategoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}

	category, err := h.CategoryService.Create(r.Context(), req)
	if err != nil {
		util.WriteError(w, err)
		return
	}
	util.WriteJSON(w, http.StatusCreated, category)
}

// UpdateCategory godoc
// @Summary Update a category
// @Tags Admin
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Category id"
// @Param body body requestresponse.CategoryRequest true "Category"
// @Success 200 {object} model.Category
// @Failure 400 {object} requestresponse.ErrorResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Failure 409 {object} requestresponse.ErrorResponse
// @Router /admin/categories/{id} [put]
func (h *CategoryHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := categoryID(w, r)
	if !ok {
		return
	}

	var req requestresponse.CategoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}

	category, err := h.CategoryService.Update(r.Context(), id, req)
	if err != nil {
		util.WriteError(w, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, category)
}

// DeleteCategory godoc
// @Summary Delete a category
// @Tags Admin
// @Security ApiKeyAuth
// @Param id path int true "Category id"
// @Success 204
// @Failure 404 {object} requestresponse.ErrorResponse
// @Router /admin/categories/{id} [delete]
func (h *CategoryHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := categoryID(w, r)
	if !ok {
		return
	}

	if err := h.CategoryService.Delete(r.Context(), id); err != nil {
		util.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func categoryID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		util.WriteError(w, apperror.WithMessage(apperror.ErrValidation, "invalid category id"))
		return 0, false
	}
	return id, true
}
