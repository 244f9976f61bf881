package controllers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	h "eventboard/internal/delivery/http/helpers"
	"eventboard/internal/domain"
)

// NewEventRequest is the request body for POST /users/{userID}/events
type NewEventRequest struct {
	Title             string  `json:"title"`
	Annotation        string  `json:"annotation"`
	Description       string  `json:"description"`
	Category          string  `json:"category"`
	EventDate         string  `json:"event_date"`
	Lat               float64 `json:"lat"`
	Lon               float64 `json:"lon"`
	Paid              bool    `json:"paid"`
	ParticipantLimit  int     `json:"participant_limit"`
	RequestModeration *bool   `json:"request_moderation"`
}

// Validate implements Validator.
func (e NewEventRequest) Validate() []string {
	var errs []string
	if l := len(strings.TrimSpace(e.Title)); l < 3 || l > 120 {
		errs = append(errs, "title must be 3 to 120 characters")
	}
	if l := len(strings.TrimSpace(e.Annotation)); l < 20 || l > 2000 {
		errs = append(errs, "annotation must be 20 to 2000 characters")
	}
	if l := len(strings.TrimSpace(e.Description)); l < 20 || l > 7000 {
		errs = append(errs, "description must be 20 to 7000 characters")
	}
	if strings.TrimSpace(e.Category) == "" {
		errs = append(errs, "category is required")
	}
	if e.EventDate == "" {
		errs = append(errs, "event_date is required")
	} else if _, err := parseDate(e.EventDate); err != nil {
		errs = append(errs, fmt.Sprintf("event_date must match layout %q", dateLayout))
	}
	if e.ParticipantLimit < 0 {
		errs = append(errs, "participant_limit must be zero or positive")
	}
	return errs
}

func (e NewEventRequest) toEvent() *domain.Event {
	date, _ := parseDate(e.EventDate)
	moderation := true
	if e.RequestModeration != nil {
		moderation = *e.RequestModeration
	}
	return &domain.Event{
		Title:             strings.TrimSpace(e.Title),
		Annotation:        strings.TrimSpace(e.Annotation),
		Description:       strings.TrimSpace(e.Description),
		CategoryID:        e.Category,
		EventDate:         date,
		Lat:               e.Lat,
		Lon:               e.Lon,
		Paid:              e.Paid,
		ParticipantLimit:  e.ParticipantLimit,
		RequestModeration: moderation,
	}
}

// UpdateEventRequest is the request body for event patches. All fields are
// optional; absent fields are left unchanged.
type UpdateEventRequest struct {
	Title             *string  `json:"title"`
	Annotation        *string  `json:"annotation"`
	Description       *string  `json:"description"`
	Category          *string  `json:"category"`
	EventDate         *string  `json:"event_date"`
	Lat               *float64 `json:"lat"`
	Lon               *float64 `json:"lon"`
	Paid              *bool    `json:"paid"`
	ParticipantLimit  *int     `json:"participant_limit"`
	RequestModeration *bool    `json:"request_moderation"`
	StateAction       string   `json:"state_action"`
}

// Validate implements Validator.
func (e UpdateEventRequest) Validate() []string {
	var errs []string
	if e.Title != nil {
		if l := len(strings.TrimSpace(*e.Title)); l < 3 || l > 120 {
			errs = append(errs, "title must be 3 to 120 characters")
		}
	}
	if e.Annotation != nil {
		if l := len(strings.TrimSpace(*e.Annotation)); l < 20 || l > 2000 {
			errs = append(errs, "annotation must be 20 to 2000 characters")
		}
	}
	if e.Description != nil {
		if l := len(strings.TrimSpace(*e.Description)); l < 20 || l > 7000 {
			errs = append(errs, "description must be 20 to 7000 characters")
		}
	}
	if e.EventDate != nil {
		if _, err := parseDate(*e.EventDate); err != nil {
			errs = append(errs, fmt.Sprintf("event_date must match layout %q", dateLayout))
		}
	}
	if e.ParticipantLimit != nil && *e.ParticipantLimit < 0 {
		errs = append(errs, "participant_limit must be zero or positive")
	}
	return errs
}

func (e UpdateEventRequest) toUpdate() *domain.EventUpdate {
	upd := &domain.EventUpdate{
		Title:             e.Title,
		Annotation:        e.Annotation,
		Description:       e.Description,
		CategoryID:        e.Category,
		Lat:               e.Lat,
		Lon:               e.Lon,
		Paid:              e.Paid,
		ParticipantLimit:  e.ParticipantLimit,
		RequestModeration: e.RequestModeration,
		StateAction:       e.StateAction,
	}
	if e.EventDate != nil {
		date, _ := parseDate(*e.EventDate)
		upd.EventDate = &date
	}
	return upd
}

type EventController struct {
	Logger  *slog.Logger
	Service domain.EventService
}

func NewEventController(logger *slog.Logger, svc domain.EventService) *EventController {
	return &EventController{
		Logger:  logger,
		Service: svc,
	}
}

// CreateEvent godoc
// @Summary Create an event
// @Description Create an event for the authenticated initiator. The event starts in PENDING state; the date must be at least two hours in the future.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param userID path string true "Initiator ID"
// @Param body body NewEventRequest true "Event data"
// @Success 201 {object} helpers.APIResponse "data contains the created event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /users/{userID}/events [post]
func (c *EventController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userID")
	if !requireSelf(w, r, userID) {
		return
	}
	var req NewEventRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	event, err := c.Service.CreateEvent(r.Context(), userID, req.toEvent())
	if err != nil {
		respondError(c.Logger, w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusCreated, event)
}

// ListEvents godoc
// @Summary List own events
// @Description List events created by the authenticated initiator, paged by from/size.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param userID path string true "Initiator ID"
// @Param from query int false "Offset (default 0)"
// @Param size query int false "Page size (default 10, max 100)"
// @Success 200 {object} helpers.APIResponse "data contains the event list"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /users/{userID}/events [get]
func (c *EventController) ListEvents(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userID")
	if !requireSelf(w, r, userID) {
		return
	}
	from, size := h.ParseFromSize(r)
	events, err := c.Service.ListByInitiator(r.Context(), userID, from, size)
	if err != nil {
		respondError(c.Logger, w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, events)
}

// GetEvent godoc
// @Summary Get own event
// @Description Get a single event created by the authenticated initiator.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param userID path string true "Initiator ID"
// @Param eventID path string true "Event ID"
// @Success 200 {object} helpers.APIResponse "data contains the event"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /users/{userID}/events/{eventID} [get]
func (c *EventController) GetEvent(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userID")
	if !requireSelf(w, r, userID) {
		return
	}
	event, err := c.Service.GetByInitiator(r.Context(), userID, r.PathValue("eventID"))
	if err != nil {
		respondError(c.Logger, w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, event)
}

// UpdateEvent godoc
// @Summary Update own event
// @Description Update an event that is PENDING or CANCELED. SEND_TO_REVIEW resubmits a canceled event; CANCEL_REVIEW withdraws a pending one.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param userID path string true "Initiator ID"
// @Param eventID path string true "Event ID"
// @Param body body UpdateEventRequest true "Fields to change"
// @Success 200 {object} helpers.APIResponse "data contains the updated event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /users/{userID}/events/{eventID} [patch]
func (c *EventController) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userID")
	if !requireSelf(w, r, userID) {
		return
	}
	var req UpdateEventRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	if req.StateAction != "" &&
		req.StateAction != domain.StateActionSendToReview &&
		req.StateAction != domain.StateActionCancelReview {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest,
			"state_action must be SEND_TO_REVIEW or CANCEL_REVIEW")
		return
	}
	event, err := c.Service.UpdateByInitiator(r.Context(), userID, r.PathValue("eventID"), req.toUpdate())
	if err != nil {
		respondError(c.Logger, w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, event)
}
