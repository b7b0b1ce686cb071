package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"visa-advisory-portal/internal/model/requestresponse"
	"visa-advisory-portal/internal/ports"
	"visa-advisory-portal/internal/util"
)

type ClientHandler struct {
	ports.ClientService
	exports ports.ExportService
}

func NewClientHandler(clientService ports.ClientService, exports ports.ExportService) *ClientHandler {
	return &ClientHandler{clientService, exports}
}

// Profile godoc
// @Summary Caller's client record
// @Tags Clients
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} model.Client
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Router /clients/me/profile [get]
func (h *ClientHandler) Profile(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	client, err := h.ClientService.Profile(r.Context(), claims.UserUUID)
	if err != nil {
		util.WriteError(w, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, client)
}

// UpdateProfile godoc
// @Summary Update the caller's client record
// @Description Absent fields are left unchanged
// @Tags Clients
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body requestresponse.UpdateProfileRequest true "Fields to change"
// @Success 200 {object} model.Client
// @Failure 400 {object} requestresponse.ErrorResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Router /clients/me/profile [put]
func (h *ClientHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	var req requestresponse.UpdateProfileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}

	client, err := h.ClientService.UpdateProfile(r.Context(), claims.UserUUID, req)
	if err != nil {
		util.WriteError(w, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, client)
}

// AdminListClients godoc
// @Summary Clients
// @Tags Admin
// @Produce json
// @Security ApiKeyAuth
// @Param status query string false "pending, active, completed or inactive"
// @Success 200 {array} model.Client
// @Failure 403 {object} requestresponse.ErrorResponse
// @Router /admin/clients [get]
func (h *ClientHandler) AdminListClients(w http.ResponseWriter, r *http.Request) {
	clients, err := h.ClientService.List(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		util.WriteError(w, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, clients)
}

// AdminGetClient godoc
// @Summary One client
// @Tags Admin
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Client id"
// @Success 200 {object} model.Client
// @Failure 403 {object} requestresponse.ErrorResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Router /admin/clients/{id} [get]
func (h *ClientHandler) AdminGetClient(w http.ResponseWriter, r *http.Request) {
	client, err := h.ClientService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		util.WriteError(w, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, client)
}

// AdminUpdateClient godoc
// @Summary Update a client
// @Tags Admin
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Client id"
// @Param body body requestresponse.AdminUpdateClientRequest true "Fields to change"
// @Success 200 {object} model.Client
// @Failure 400 {object} requestresponse.ErrorResponse
// @Failure 403 {object} requestresponse.ErrorResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Router /admin/clients/{id} [put]
func (h *ClientHandler) AdminUpdateClient(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	var req requestresponse.AdminUpdateClientRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}

	client, err := h.ClientService.AdminUpdate(r.Context(), claims, chi.URLParam(r, "id"), req)
	if err != nil {
		util.WriteError(w, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, client)
}

// Stats godoc
// @Summary Dashboard totals
// @Tags Admin
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} model.DashboardStats
// @Failure 403 {object} requestresponse.ErrorResponse
// @Router /admin/stats [get]
func (h *ClientHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.ClientService.Stats(r.Context())
	if err != nil {
		util.WriteError(w, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, stats)
}

// ExportDashboardCSV godoc
// @Summary Client report as CSV
// @Tags Admin
// @Produce text/csv
// @Security ApiKeyAuth
// @Success 200 {file} file
// @Failure 403 {object} requestresponse.ErrorResponse
// @Router /admin/export/dashboard [get]
func (h *ClientHandler) ExportDashboardCSV(w http.ResponseWriter, r *http.Request) {
	data, err := h.exports.DashboardCSV(r.Context())
	if err != nil {
		util.WriteError(w, err)
		return
	}
	writeAttachment(w, "text/csv; charset=utf-8", "reporte_clientes.csv", data)
}

// ExportDashboardPDF godoc
// @Summary Client report as PDF
// @Tags Admin
// @Produce application/pdf
// @Security ApiKeyAuth
// @Success 200 {file} file
// @Failure 403 {object} requestresponse.ErrorResponse
// @Router /admin/export/dashboard.pdf [get]
func (h *ClientHandler) ExportDashboardPDF(w http.ResponseWriter, r *http.Request) {
	data, err := h.exports.DashboardPDF(r.Context())
	if err != nil {
		util.WriteError(w, err)
		return
	}
	writeAttachment(w, "application/pdf", "reporte_clientes.pdf", data)
}

func writeAttachment(w http.ResponseWriter, contentType, filename string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
