package controllers

import (
	"log/slog"
	"net/http"

	h "eventboard/internal/delivery/http/helpers"
	"eventboard/internal/domain"
)

type PublicController struct {
	Logger     *slog.Logger
	Events     domain.EventService
	Categories domain.CategoryService
}

func NewPublicController(logger *slog.Logger, events domain.EventService, categories domain.CategoryService) *PublicController {
	return &PublicController{
		Logger:     logger,
		Events:     events,
		Categories: categories,
	}
}

// SearchEvents godoc
// @Summary Search published events
// @Description Search published events by text, categories, paid flag, and date range. Without a range, only upcoming events are returned. Each call is recorded as a view hit.
// @Tags public
// @Produce json
// @Param text query string false "Substring of annotation or description, case-insensitive"
// @Param categories query []string false "Category IDs"
// @Param paid query bool false "Paid events only (or free only when false)"
// @Param rangeStart query string false "Start of event date range"
// @Param rangeEnd query string false "End of event date range"
// @Param onlyAvailable query bool false "Only events with capacity left"
// @Param sort query string false "EVENT_DATE or VIEWS"
// @Param from query int false "Offset (default 0)"
// @Param size query int false "Page size (default 10, max 100)"
// @Success 200 {object} helpers.APIResponse "data contains the event list"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [get]
func (c *PublicController) SearchEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.EventSearchFilter{
		Text:        q.Get("text"),
		CategoryIDs: q["categories"],
	}
	if s := q.Get("paid"); s != "" {
		paid := s == "true"
		filter.Paid = &paid
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
	filter.OnlyAvailable = q.Get("onlyAvailable") == "true"
	filter.SortByDate = q.Get("sort") != "VIEWS"
	filter.From, filter.Size = h.ParseFromSize(r)

	events, err := c.Events.SearchPublic(r.Context(), filter, clientIP(r), r.URL.RequestURI())
	if err != nil {
		respondError(c.Logger, w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, events)
}

// GetEvent godoc
// @Summary Get a published event
// @Description Get a single published event with its view count. The call is recorded as a view hit for the caller's IP.
// @Tags public
// @Produce json
// @Param eventID path string true "Event ID"
// @Success 200 {object} helpers.APIResponse "data contains the event"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [get]
func (c *PublicController) GetEvent(w http.ResponseWriter, r *http.Request) {
	event, err := c.Events.GetPublic(r.Context(), r.PathValue("eventID"), clientIP(r), r.URL.Path)
	if err != nil {
		respondError(c.Logger, w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, event)
}

// ListCategories godoc
// @Summary List categories
// @Tags public
// @Produce json
// @Param from query int false "Offset (default 0)"
// @Param size query int false "Page size (default 10, max 100)"
// @Success 200 {object} helpers.APIResponse "data contains the category list"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /categories [get]
func (c *PublicController) ListCategories(w http.ResponseWriter, r *http.Request) {
	from, size := h.ParseFromSize(r)
	cats, err := c.Categories.List(r.Context(), from, size)
	if err != nil {
		respondError(c.Logger, w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, cats)
}

// GetCategory godoc
// @Summary Get a category
// @Tags public
// @Produce json
// @Param catID path string true "Category ID"
// @Success 200 {object} helpers.APIResponse "data contains the category"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /categories/{catID} [get]
func (c *PublicController) GetCategory(w http.ResponseWriter, r *http.Request) {
	cat, err := c.Categories.Get(r.Context(), r.PathValue("catID"))
	if err != nil {
		respondError(c.Logger, w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, cat)
}
