package handler

import (
	"net/http"
	"strconv"

	"visa-advisory-portal/internal/model"
	"visa-advisory-portal/internal/ports"
	"visa-advisory-portal/internal/util"
)

type ActivityHandler struct {
	ports.ActivityService
}

func NewActivityHandler(activityService ports.ActivityService) *ActivityHandler {
	return &ActivityHandler{activityService}
}

// ListActivities godoc
// @Summary Audit trail
// @Tags Admin
// @Produce json
// @Security ApiKeyAuth
// @Param limit query int false "Rows, 50 by default, at most 500"
// @Param type query string false "Activity type"
// @Success 200 {array} model.Activity
// @Failure 400 {object} requestresponse.ErrorResponse
// @Failure 403 {object} requestresponse.ErrorResponse
// @Router /admin/activities [get]
func (h *ActivityHandler) ListActivities(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	limit, _ := strconv.Atoi(query.Get("limit"))

	activities, err := h.ActivityService.List(r.Context(), limit, model.ActivityType(query.Get("type")))
	if err != nil {
		util.WriteError(w, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, activities)
}

// ListActivityTypes godoc
// @Summary Known activity types
// @Tags Admin
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {array} string
// @Router /admin/activities/types [get]
func (h *ActivityHandler) ListActivityTypes(w http.ResponseWriter, r *http.Request) {
	util.WriteJSON(w, http.StatusOK, h.ActivityService.Types())
}
