package controllers

import (
	"log/slog"
	"net/http"

	"eventboard/internal/delivery/http/helpers"
	"eventboard/internal/delivery/http/middleware"
	"eventboard/internal/domain"
)

// PublicEventController serves the unauthenticated read endpoints. Every
// request on these paths feeds the stats service.
type PublicEventController struct {
	Logger  *slog.Logger
	Service domain.EventService
}

func NewPublicEventController(logger *slog.Logger, svc domain.EventService) *PublicEventController {
	return &PublicEventController{
		Logger:  logger,
		Service: svc,
	}
}

// SearchEvents godoc
// @Summary Search published events
// @Description Case-insensitive substring search over annotation and description with category, paid and date filters. sort=VIEWS orders by view count.
// @Tags public
// @Produce json
// @Param text query string false "Search text"
// @Param categories query []string false "Category IDs"
// @Param paid query bool false "Paid events only"
// @Param rangeStart query string false "Range start (2006-01-02 15:04:05)"
// @Param rangeEnd query string false "Range end (2006-01-02 15:04:05)"
// @Param onlyAvailable query bool false "Only events with free capacity"
// @Param sort query string false "EVENT_DATE or VIEWS"
// @Success 200 {object} helpers.APIResponse "data contains event summaries"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Router /events [get]
func (c *PublicEventController) SearchEvents(w http.ResponseWriter, r *http.Request) {
	search := domain.PublicEventSearch{
		Text:        r.URL.Query().Get("text"),
		CategoryIDs: r.URL.Query()["categories"],
		SortByViews: r.URL.Query().Get("sort") == "VIEWS",
		Pagination:  helpers.ParsePagination(r),
	}
	var err error
	if search.Paid, err = helpers.ParseBoolParam(r, "paid"); err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
		return
	}
	if search.RangeStart, err = helpers.ParseTimeParam(r, "rangeStart"); err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
		return
	}
	if search.RangeEnd, err = helpers.ParseTimeParam(r, "rangeEnd"); err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
		return
	}
	if only, err := helpers.ParseBoolParam(r, "onlyAvailable"); err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
		return
	} else if only != nil {
		search.OnlyAvailable = *only
	}

	summaries, err := c.Service.SearchPublished(r.Context(), search, r.URL.RequestURI(), middleware.ClientIP(r))
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteDomainError(w, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, summaries)
}

// GetEvent godoc
// @Summary Get a published event
// @Description Returns the event with refreshed view and confirmed-request counters. Unpublished events read as 404.
// @Tags public
// @Produce json
// @Param eventID path string true "Event ID"
// @Success 200 {object} helpers.APIResponse "data contains the event"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID} [get]
func (c *PublicEventController) GetEvent(w http.ResponseWriter, r *http.Request) {
	event, err := c.Service.GetPublished(r.Context(), r.PathValue("eventID"), r.URL.RequestURI(), middleware.ClientIP(r))
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteDomainError(w, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}
