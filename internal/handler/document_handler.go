package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"visa-advisory-portal/internal/apperror"
	"visa-advisory-portal/internal/model"
	"visa-advisory-portal/internal/model/requestresponse"
	"visa-advisory-portal/internal/ports"
	"visa-advisory-portal/internal/util"
)

// multipartOverhead : room for the form fields and part headers around the file
const multipartOverhead = 1 << 20

type DocumentHandler struct {
	ports.DocumentService
	maxFileSize int64
}

func NewDocumentHandler(documentService ports.DocumentService, maxFileSize int64) *DocumentHandler {
	return &DocumentHandler{documentService, maxFileSize}
}

// ListDocuments godoc
// @Summary Caller's documents
// @Description Newest first
// @Tags Documents
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {array} model.Document
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /documents [get]
func (h *DocumentHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	documents, err := h.DocumentService.ListDocuments(r.Context(), claims.UserUUID)
	if err != nil {
		util.WriteError(w, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, documents)
}

// UploadDocument godoc
// @Summary Upload a document
// @Description PDF, JPEG or PNG up to 10 MiB for an active category. A second upload for a category that already has a pending or approved document needs replace=true.
// @Tags Documents
// @Accept multipart/form-data
// @Produce json
// @Security ApiKeyAuth
// @Param category formData string true "Category name"
// @Param family_member_name formData string false "Family member the document belongs to"
// @Param file formData file true "Document file"
// @Param replace query bool false "Replace the pending or approved document of the same category"
// @Success 201 {object} model.Document
// @Failure 400 {object} requestresponse.ErrorResponse "Missing file or invalid category"
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 409 {object} requestresponse.ErrorResponse "Category already has a document under review"
// @Failure 413 {object} requestresponse.ErrorResponse "File too large"
// @Failure 415 {object} requestresponse.ErrorResponse "Unsupported format"
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /documents [post]
func (h *DocumentHandler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	// the body may exceed the file limit so that the format check still runs first
	r.Body = http.MaxBytesReader(w, r.Body, 2*h.maxFileSize+multipartOverhead)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			util.WriteError(w, apperror.ErrPayloadTooLarge)
			return
		}
		util.WriteError(w, apperror.Wrap(apperror.ErrValidation, err, "invalid multipart body"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		util.WriteError(w, apperror.WithMessage(apperror.ErrValidation, "file is required"))
		return
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, h.maxFileSize+1))
	if err != nil {
		util.WriteError(w, apperror.Wrap(apperror.ErrValidation, err, "read file"))
		return
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = http.DetectContentType(content)
	}

	replace, _ := strconv.ParseBool(r.URL.Query().Get("replace"))
	document, err := h.DocumentService.Upload(r.Context(), requestresponse.UploadDocumentRequest{
		UserID:           claims.UserUUID,
		Category:         strings.TrimSpace(r.FormValue("category")),
		FamilyMemberName: r.FormValue("family_member_name"),
		OriginalName:     header.Filename,
		MimeType:         mimeType,
		Content:          content,
		Replace:          replace,
	})
	if err != nil {
		util.WriteError(w, err)
		return
	}
	util.WriteJSON(w, http.StatusCreated, document)
}

// DownloadDocument godoc
// @Summary Download a document
// @Description Redirects to a pre-signed object storage URL. Owners and admins only.
// @Tags Documents
// @Security ApiKeyAuth
// @Param id path string true "Document id"
// @Success 302
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Router /documents/{id} [get]
func (h *DocumentHandler) DownloadDocument(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	url, err := h.DocumentService.DownloadURL(r.Context(), claims, chi.URLParam(r, "id"))
	if err != nil {
		util.WriteError(w, err)
		return
	}
	http.Redirect(w, r, url, http.StatusFound)
}

// DeleteDocument godoc
// @Summary Delete a document
// @Description Only the owner, only while the document is not approved
// @Tags Documents
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Document id"
// @Success 200 {object} requestresponse.DeleteDocumentResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Failure 409 {object} requestresponse.ErrorResponse "Document already approved"
// @Router /documents/{id} [delete]
func (h *DocumentHandler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.DocumentService.DeleteDocument(r.Context(), claims.UserUUID, id); err != nil {
		util.WriteError(w, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, requestresponse.DeleteDocumentResponse{ID: id, Deleted: true})
}

// AdminListDocuments godoc
// @Summary All documents
// @Tags Admin
// @Produce json
// @Security ApiKeyAuth
// @Param status query string false "pending, approved or rejected"
// @Param user_id query string false "Owner id"
// @Param limit query int false "Maximum rows"
// @Success 200 {array} model.Document
// @Failure 400 {object} requestresponse.ErrorResponse
// @Failure 403 {object} requestresponse.ErrorResponse
// @Router /admin/documents [get]
func (h *DocumentHandler) AdminListDocuments(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	limit, _ := strconv.Atoi(query.Get("limit"))

	documents, err := h.DocumentService.ListAll(r.Context(), model.DocumentFilter{
		Status: model.DocumentStatus(query.Get("status")),
		UserID: query.Get("user_id"),
		Limit:  limit,
	})
	if err != nil {
		util.WriteError(w, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, documents)
}

// ReviewDocument godoc
// @Summary Approve or reject a document
// @Tags Admin
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Document id"
// @Param body body requestresponse.ReviewDocumentRequest true "Decision"
// @Success 200 {object} model.Document
// @Failure 400 {object} requestresponse.ErrorResponse
// @Failure 403 {object} requestresponse.ErrorResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Router /admin/documents/{id} [patch]
func (h *DocumentHandler) ReviewDocument(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	var req requestresponse.ReviewDocumentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}

	document, err := h.DocumentService.Review(r.Context(), claims, chi.URLParam(r, "id"), req)
	if err != nil {
		util.WriteError(w, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, document)
}

// AdminClientDocuments godoc
// @Summary Documents of one client
// @Tags Admin
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Client id"
// @Success 200 {array} model.Document
// @Failure 403 {object} requestresponse.ErrorResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Router /admin/clients/{id}/documents [get]
func (h *DocumentHandler) AdminClientDocuments(w http.ResponseWriter, r *http.Request) {
	documents, err := h.DocumentService.ListForClient(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		util.WriteError(w, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, documents)
}
