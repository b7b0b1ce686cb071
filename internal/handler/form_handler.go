package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"visa-advisory-portal/internal/apperror"
	"visa-advisory-portal/internal/model"
	"visa-advisory-portal/internal/ports"
	"visa-advisory-portal/internal/util"
)

type FormHandler struct {
	ports.FormService
}

func NewFormHandler(formService ports.FormService) *FormHandler {
	return &FormHandler{formService}
}

// MyForm godoc
// @Summary Caller's intake form
// @Description 404 when nothing was saved yet
// @Tags Forms
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} model.IntakeForm
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Router /forms/me [get]
func (h *FormHandler) MyForm(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	form, err := h.FormService.MyForm(r.Context(), claims.UserUUID)
	if err != nil {
		util.WriteError(w, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, form)
}

// SaveForm godoc
// @Summary Save the intake form
// @Description Full upsert. is_completed=true submits the form; a submitted form stays submitted.
// @Tags Forms
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body model.IntakeForm true "Whole form"
// @Success 200 {object} model.IntakeForm
// @Failure 400 {object} requestresponse.ErrorResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Router /forms [post]
func (h *FormHandler) SaveForm(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	var form model.IntakeForm
	if err := decodeJSON(w, r, &form); err != nil {
		return
	}

	saved, err := h.FormService.Save(r.Context(), claims.UserUUID, &form)
	if err != nil {
		util.WriteError(w, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, saved)
}

// AdminListForms godoc
// @Summary Intake forms
// @Tags Admin
// @Produce json
// @Security ApiKeyAuth
// @Param completed query bool false "Only submitted (true) or only drafts (false)"
// @Success 200 {array} model.IntakeForm
// @Failure 400 {object} requestresponse.ErrorResponse
// @Failure 403 {object} requestresponse.ErrorResponse
// @Router /admin/forms [get]
func (h *FormHandler) AdminListForms(w http.ResponseWriter, r *http.Request) {
	var filter model.IntakeFormFilter
	if raw := r.URL.Query().Get("completed"); raw != "" {
		completed, err := strconv.ParseBool(raw)
		if err != nil {
			util.WriteError(w, apperror.WithMessage(apperror.ErrValidation, "completed must be a boolean"))
			return
		}
		filter.Completed = &completed
	}

	forms, err := h.FormService.List(r.Context(), filter)
	if err != nil {
		util.WriteError(w, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, forms)
}

// AdminGetForm godoc
// @Summary One intake form
// @Tags Admin
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Form id"
// @Success 200 {object} model.IntakeForm
// @Failure 403 {object} requestresponse.ErrorResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Router /admin/forms/{id} [get]
func (h *FormHandler) AdminGetForm(w http.ResponseWriter, r *http.Request) {
	form, err := h.FormService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		util.WriteError(w, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, form)
}
