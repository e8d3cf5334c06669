package controllers

import (
	"log/slog"
	"net/http"

	"eventboard/internal/delivery/http/helpers"
	"eventboard/internal/domain"
)

// AdminEventController serves the moderation endpoints.
type AdminEventController struct {
	Logger  *slog.Logger
	Service domain.EventService
}

func NewAdminEventController(logger *slog.Logger, svc domain.EventService) *AdminEventController {
	return &AdminEventController{
		Logger:  logger,
		Service: svc,
	}
}

// ListEvents godoc
// @Summary List events for moderation
// @Description Filter by initiators, states, categories and an event-date range. Without state and range filters all events are returned paged.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param users query []string false "Initiator IDs"
// @Param states query []string false "Event states"
// @Param categories query []string false "Category IDs"
// @Param rangeStart query string false "Range start (2006-01-02 15:04:05)"
// @Param rangeEnd query string false "Range end (2006-01-02 15:04:05)"
// @Success 200 {object} helpers.APIResponse "data contains the event list"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Router /admin/events [get]
func (c *AdminEventController) ListEvents(w http.ResponseWriter, r *http.Request) {
	query := domain.AdminEventQuery{
		InitiatorIDs: r.URL.Query()["users"],
		CategoryIDs:  r.URL.Query()["categories"],
		Pagination:   helpers.ParsePagination(r),
	}
	if states := r.URL.Query()["states"]; len(states) > 0 {
		query.States = make([]domain.EventState, len(states))
		for i, s := range states {
			query.States[i] = domain.EventState(s)
		}
	}
	var err error
	if query.RangeStart, err = helpers.ParseTimeParam(r, "rangeStart"); err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
		return
	}
	if query.RangeEnd, err = helpers.ParseTimeParam(r, "rangeEnd"); err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
		return
	}

	events, err := c.Service.AdminList(r.Context(), query)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteDomainError(w, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, events)
}

// ModerateEvent godoc
// @Summary Moderate an event
// @Description Partial update plus state_action PUBLISH_EVENT or REJECT_EVENT. Both actions require the event to be PENDING.
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param event body UpdateEventRequest true "Fields to change"
// @Success 200 {object} helpers.APIResponse "data contains the updated event"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Router /admin/events/{eventID} [patch]
func (c *AdminEventController) ModerateEvent(w http.ResponseWriter, r *http.Request) {
	var req UpdateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	event, err := c.Service.AdminUpdate(r.Context(), r.PathValue("eventID"), req.toDomain())
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteDomainError(w, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}
