package controllers

import (
	"log/slog"
	"net/http"

	h "eventboard/internal/delivery/http/helpers"
	"eventboard/internal/domain"
)

// RequestStatusUpdateRequest is the request body for
// PATCH /users/{userID}/events/{eventID}/requests
type RequestStatusUpdateRequest struct {
	RequestIDs []string `json:"request_ids"`
	Status     string   `json:"status"`
}

// Validate implements Validator.
func (u RequestStatusUpdateRequest) Validate() []string {
	var errs []string
	if len(u.RequestIDs) == 0 {
		errs = append(errs, "request_ids must not be empty")
	}
	if u.Status != string(domain.RequestStatusConfirmed) && u.Status != string(domain.RequestStatusRejected) {
		errs = append(errs, "status must be CONFIRMED or REJECTED")
	}
	return errs
}

type RequestController struct {
	Logger  *slog.Logger
	Service domain.RequestService
}

func NewRequestController(logger *slog.Logger, svc domain.RequestService) *RequestController {
	return &RequestController{
		Logger:  logger,
		Service: svc,
	}
}

// CreateRequest godoc
// @Summary Request participation in an event
// @Description Create a participation request for the event given by the eventId query parameter. The request starts PENDING unless the event is unmoderated or unlimited, in which case it is confirmed immediately.
// @Tags requests
// @Produce json
// @Security BearerAuth
// @Param userID path string true "Requester ID"
// @Param eventId query string true "Event ID"
// @Success 201 {object} helpers.APIResponse "data contains the created request"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /users/{userID}/requests [post]
func (c *RequestController) CreateRequest(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userID")
	if !requireSelf(w, r, userID) {
		return
	}
	eventID := r.URL.Query().Get("eventId")
	if eventID == "" {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "missing eventId query parameter")
		return
	}
	req, err := c.Service.CreateRequest(r.Context(), userID, eventID)
	if err != nil {
		respondError(c.Logger, w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusCreated, req)
}

// ListOwnRequests godoc
// @Summary List own participation requests
// @Description List all participation requests made by the authenticated user, in creation order.
// @Tags requests
// @Produce json
// @Security BearerAuth
// @Param userID path string true "Requester ID"
// @Success 200 {object} helpers.APIResponse "data contains the request list"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /users/{userID}/requests [get]
func (c *RequestController) ListOwnRequests(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userID")
	if !requireSelf(w, r, userID) {
		return
	}
	reqs, err := c.Service.ListOwnRequests(r.Context(), userID)
	if err != nil {
		respondError(c.Logger, w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, reqs)
}

// CancelRequest godoc
// @Summary Cancel own participation request
// @Description Cancel one of the authenticated user's requests. A confirmed request releases its slot.
// @Tags requests
// @Produce json
// @Security BearerAuth
// @Param userID path string true "Requester ID"
// @Param requestID path string true "Request ID"
// @Success 200 {object} helpers.APIResponse "data contains the canceled request"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /users/{userID}/requests/{requestID}/cancel [patch]
func (c *RequestController) CancelRequest(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userID")
	if !requireSelf(w, r, userID) {
		return
	}
	req, err := c.Service.CancelRequest(r.Context(), userID, r.PathValue("requestID"))
	if err != nil {
		respondError(c.Logger, w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, req)
}

// ListEventRequests godoc
// @Summary List requests for own event
// @Description List all participation requests for an event the authenticated user initiated.
// @Tags requests
// @Produce json
// @Security BearerAuth
// @Param userID path string true "Initiator ID"
// @Param eventID path string true "Event ID"
// @Success 200 {object} helpers.APIResponse "data contains the request list"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /users/{userID}/events/{eventID}/requests [get]
func (c *RequestController) ListEventRequests(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userID")
	if !requireSelf(w, r, userID) {
		return
	}
	reqs, err := c.Service.ListEventRequests(r.Context(), userID, r.PathValue("eventID"))
	if err != nil {
		respondError(c.Logger, w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, reqs)
}

// UpdateRequestStatus godoc
// @Summary Decide pending requests for own event
// @Description Confirm or reject a batch of pending requests. Confirmation stops at the participant limit; requests past capacity are rejected and reported in rejectedRequests.
// @Tags requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param userID path string true "Initiator ID"
// @Param eventID path string true "Event ID"
// @Param body body RequestStatusUpdateRequest true "Request IDs and target status"
// @Success 200 {object} helpers.APIResponse "data contains confirmedRequests and rejectedRequests"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /users/{userID}/events/{eventID}/requests [patch]
func (c *RequestController) UpdateRequestStatus(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userID")
	if !requireSelf(w, r, userID) {
		return
	}
	var req RequestStatusUpdateRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	result, err := c.Service.UpdateRequestStatus(r.Context(), userID, r.PathValue("eventID"), &domain.RequestStatusUpdate{
		RequestIDs: req.RequestIDs,
		Status:     domain.RequestStatus(req.Status),
	})
	if err != nil {
		respondError(c.Logger, w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, result)
}
