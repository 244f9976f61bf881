package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	h "eventboard/internal/delivery/http/helpers"
	"eventboard/internal/domain"
)

// CategoryRequest is the request body for admin category create and update.
type CategoryRequest struct {
	Name string `json:"name"`
}

// Validate implements Validator.
func (c CategoryRequest) Validate() []string {
	var errs []string
	name := strings.TrimSpace(c.Name)
	if name == "" {
		errs = append(errs, "name is required")
	} else if len(name) > 50 {
		errs = append(errs, "name must be at most 50 characters")
	}
	return errs
}

type AdminController struct {
	Logger     *slog.Logger
	Events     domain.EventService
	Categories domain.CategoryService
}

func NewAdminController(logger *slog.Logger, events domain.EventService, categories domain.CategoryService) *AdminController {
	return &AdminController{
		Logger:     logger,
		Events:     events,
		Categories: categories,
	}
}

// SearchEvents godoc
// @Summary Search events (admin)
// @Description Search events across all initiators with optional users, states, categories, and date range filters.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param users query []string false "Initiator IDs"
// @Param states query []string false "Event states"
// @Param categories query []string false "Category IDs"
// @Param rangeStart query string false "Start of event date range"
// @Param rangeEnd query string false "End of event date range"
// @Param from query int false "Offset (default 0)"
// @Param size query int false "Page size (default 10, max 100)"
// @Success 200 {object} helpers.APIResponse "data contains the event list"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/events [get]
func (c *AdminController) SearchEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.EventSearchFilter{
		InitiatorIDs: q["users"],
		CategoryIDs:  q["categories"],
	}
	for _, s := range q["states"] {
		switch state := domain.EventState(s); state {
		case domain.EventStatePending, domain.EventStatePublished, domain.EventStateCanceled:
			filter.States = append(filter.States, state)
		default:
			h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "unknown state: "+s)
			return
		}
	}
	if s := q.Get("rangeStart"); s != "" {
		t, err := parseDate(s)
		if err != nil {
			h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "invalid rangeStart")
			return
		}
		filter.RangeStart = &t
	}
	if s := q.Get("rangeEnd"); s != "" {
		t, err := parseDate(s)
		if err != nil {
			h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "invalid rangeEnd")
			return
		}
		filter.RangeEnd = &t
	}
	filter.From, filter.Size = h.ParseFromSize(r)

	events, err := c.Events.SearchByAdmin(r.Context(), filter)
	if err != nil {
		respondError(c.Logger, w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, events)
}

// UpdateEvent godoc
// @Summary Moderate an event (admin)
// @Description Update event fields and publish or reject it. PUBLISH_EVENT requires PENDING state; REJECT_EVENT is refused once published.
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param body body UpdateEventRequest true "Fields to change"
// @Success 200 {object} helpers.APIResponse "data contains the updated event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/events/{eventID} [patch]
func (c *AdminController) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	var req UpdateEventRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	if req.StateAction != "" &&
		req.StateAction != domain.StateActionPublishEvent &&
		req.StateAction != domain.StateActionRejectEvent {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest,
			"state_action must be PUBLISH_EVENT or REJECT_EVENT")
		return
	}
	event, err := c.Events.UpdateByAdmin(r.Context(), r.PathValue("eventID"), req.toUpdate())
	if err != nil {
		respondError(c.Logger, w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, event)
}

// CreateCategory godoc
// @Summary Create a category (admin)
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CategoryRequest true "Category data"
// @Success 201 {object} helpers.APIResponse "data contains the created category"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/categories [post]
func (c *AdminController) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	cat, err := c.Categories.Create(r.Context(), strings.TrimSpace(req.Name))
	if err != nil {
		respondError(c.Logger, w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusCreated, cat)
}

// UpdateCategory godoc
// @Summary Rename a category (admin)
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param catID path string true "Category ID"
// @Param body body CategoryRequest true "Category data"
// @Success 200 {object} helpers.APIResponse "data contains the updated category"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/categories/{catID} [patch]
func (c *AdminController) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	cat, err := c.Categories.Update(r.Context(), r.PathValue("catID"), strings.TrimSpace(req.Name))
	if err != nil {
		respondError(c.Logger, w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, cat)
}

// DeleteCategory godoc
// @Summary Delete a category (admin)
// @Description Delete a category. Refused with 409 while events still reference it.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param catID path string true "Category ID"
// @Success 204 "no content"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/categories/{catID} [delete]
func (c *AdminController) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := c.Categories.Delete(r.Context(), r.PathValue("catID")); err != nil {
		respondError(c.Logger, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
