package controllers

import (
	"log/slog"
	"net/http"
	"time"

	"eventboard/internal/delivery/http/helpers"
	"eventboard/internal/delivery/http/middleware"
	"eventboard/internal/domain"
)

// NewEventRequest is the request body for POST /users/{userID}/events.
type NewEventRequest struct {
	Title             string          `json:"title"`
	Annotation        string          `json:"annotation"`
	Description       string          `json:"description"`
	CategoryID        string          `json:"category_id"`
	Location          domain.Location `json:"location"`
	Paid              bool            `json:"paid"`
	ParticipantLimit  int             `json:"participant_limit"`
	RequestModeration *bool           `json:"request_moderation"`
	EventDate         string          `json:"event_date"`
}

// Validate implements Validator. Bounds and the lead-time rule are checked by
// the service; this covers presence and formats only.
func (req NewEventRequest) Validate() []string {
	var errs []string
	if req.Title == "" {
		errs = append(errs, "title is required")
	}
	if req.Annotation == "" {
		errs = append(errs, "annotation is required")
	}
	if req.Description == "" {
		errs = append(errs, "description is required")
	}
	if req.CategoryID == "" {
		errs = append(errs, "category_id is required")
	}
	if req.ParticipantLimit < 0 {
		errs = append(errs, "participant_limit must not be negative")
	}
	if _, err := time.Parse(domain.StatsTimeLayout, req.EventDate); err != nil {
		errs = append(errs, "event_date must be formatted as "+domain.StatsTimeLayout)
	}
	return errs
}

// UpdateEventRequest is the partial update body for PATCH event endpoints.
// Absent fields are left unchanged.
type UpdateEventRequest struct {
	Title             *string          `json:"title"`
	Annotation        *string          `json:"annotation"`
	Description       *string          `json:"description"`
	CategoryID        *string          `json:"category_id"`
	Location          *domain.Location `json:"location"`
	Paid              *bool            `json:"paid"`
	ParticipantLimit  *int             `json:"participant_limit"`
	RequestModeration *bool            `json:"request_moderation"`
	EventDate         *string          `json:"event_date"`
	StateAction       *string          `json:"state_action"`
}

// Validate implements Validator.
func (req UpdateEventRequest) Validate() []string {
	var errs []string
	if req.ParticipantLimit != nil && *req.ParticipantLimit < 0 {
		errs = append(errs, "participant_limit must not be negative")
	}
	if req.EventDate != nil {
		if _, err := time.Parse(domain.StatsTimeLayout, *req.EventDate); err != nil {
			errs = append(errs, "event_date must be formatted as "+domain.StatsTimeLayout)
		}
	}
	return errs
}

func (req UpdateEventRequest) toDomain() domain.EventUpdate {
	upd := domain.EventUpdate{
		Title:             req.Title,
		Annotation:        req.Annotation,
		Description:       req.Description,
		CategoryID:        req.CategoryID,
		Location:          req.Location,
		Paid:              req.Paid,
		ParticipantLimit:  req.ParticipantLimit,
		RequestModeration: req.RequestModeration,
	}
	if req.EventDate != nil {
		// Validate() already checked the format.
		t, _ := time.Parse(domain.StatsTimeLayout, *req.EventDate)
		upd.EventDate = &t
	}
	if req.StateAction != nil {
		action := domain.StateAction(*req.StateAction)
		upd.StateAction = &action
	}
	return upd
}

// EventController serves the initiator-facing event endpoints.
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

// pathUser checks that the authenticated user matches the {userID} path
// segment and returns it. Writes the error response itself on mismatch.
func pathUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := r.PathValue("userID")
	if userID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing userID")
		return "", false
	}
	authID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return "", false
	}
	if authID != userID {
		helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "token does not match user")
		return "", false
	}
	return userID, true
}

// ListMyEvents godoc
// @Summary List the caller's events
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param userID path string true "User ID"
// @Param from query int false "Offset"
// @Param size query int false "Page size"
// @Success 200 {object} helpers.APIResponse "data contains the event list"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /users/{userID}/events [get]
func (c *EventController) ListMyEvents(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUser(w, r)
	if !ok {
		return
	}
	events, err := c.Service.ListByInitiator(r.Context(), userID, helpers.ParsePagination(r))
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteDomainError(w, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, events)
}

// CreateEvent godoc
// @Summary Create an event
// @Description Create a new event in PENDING state. The event date must be at least two hours in the future.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param userID path string true "User ID"
// @Param event body NewEventRequest true "Event data"
// @Success 201 {object} helpers.APIResponse "data contains the created event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /users/{userID}/events [post]
func (c *EventController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUser(w, r)
	if !ok {
		return
	}
	var req NewEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	eventDate, _ := time.Parse(domain.StatsTimeLayout, req.EventDate)
	moderation := true
	if req.RequestModeration != nil {
		moderation = *req.RequestModeration
	}
	event, err := c.Service.Create(r.Context(), userID, domain.NewEventInput{
		Title:             req.Title,
		Annotation:        req.Annotation,
		Description:       req.Description,
		CategoryID:        req.CategoryID,
		Location:          req.Location,
		Paid:              req.Paid,
		ParticipantLimit:  req.ParticipantLimit,
		RequestModeration: moderation,
		EventDate:         eventDate,
	})
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteDomainError(w, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, event)
}

// GetMyEvent godoc
// @Summary Get one of the caller's events
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param userID path string true "User ID"
// @Param eventID path string true "Event ID"
// @Success 200 {object} helpers.APIResponse "data contains the event"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /users/{userID}/events/{eventID} [get]
func (c *EventController) GetMyEvent(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUser(w, r)
	if !ok {
		return
	}
	event, err := c.Service.GetByInitiator(r.Context(), userID, r.PathValue("eventID"))
	if err != nil {
		helpers.WriteDomainError(w, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// UpdateMyEvent godoc
// @Summary Update one of the caller's events
// @Description Partial update; only PENDING or CANCELED events can be edited. state_action accepts SEND_TO_REVIEW and CANCEL_REVIEW.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param userID path string true "User ID"
// @Param eventID path string true "Event ID"
// @Param event body UpdateEventRequest true "Fields to change"
// @Success 200 {object} helpers.APIResponse "data contains the updated event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Router /users/{userID}/events/{eventID} [patch]
func (c *EventController) UpdateMyEvent(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUser(w, r)
	if !ok {
		return
	}
	var req UpdateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	event, err := c.Service.UpdateByInitiator(r.Context(), userID, r.PathValue("eventID"), req.toDomain())
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteDomainError(w, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}
