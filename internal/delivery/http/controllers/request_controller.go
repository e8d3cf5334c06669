package controllers

import (
	"log/slog"
	"net/http"

	"eventboard/internal/delivery/http/helpers"
	"eventboard/internal/domain"
)

// DecideRequestsRequest is the batch decision body for
// PATCH /users/{userID}/events/{eventID}/requests.
type DecideRequestsRequest struct {
	RequestIDs []string `json:"request_ids"`
	Status     string   `json:"status"`
}

// Validate implements Validator.
func (req DecideRequestsRequest) Validate() []string {
	var errs []string
	if len(req.RequestIDs) == 0 {
		errs = append(errs, "request_ids is required")
	}
	if req.Status != string(domain.RequestConfirmed) && req.Status != string(domain.RequestRejected) {
		errs = append(errs, "status must be CONFIRMED or REJECTED")
	}
	return errs
}

// RequestController serves the participation request endpoints.
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

// ListMyRequests godoc
// @Summary List the caller's participation requests
// @Tags requests
// @Produce json
// @Security BearerAuth
// @Param userID path string true "User ID"
// @Success 200 {object} helpers.APIResponse "data contains the request list"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /users/{userID}/requests [get]
func (c *RequestController) ListMyRequests(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUser(w, r)
	if !ok {
		return
	}
	requests, err := c.Service.ListByRequester(r.Context(), userID)
	if err != nil {
		helpers.WriteDomainError(w, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, requests)
}

// CreateRequest godoc
// @Summary Request participation in an event
// @Description The event must be published and have free capacity. Unmoderated and unlimited events confirm immediately.
// @Tags requests
// @Produce json
// @Security BearerAuth
// @Param userID path string true "User ID"
// @Param eventId query string true "Event ID"
// @Success 201 {object} helpers.APIResponse "data contains the created request"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Router /users/{userID}/requests [post]
func (c *RequestController) CreateRequest(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUser(w, r)
	if !ok {
		return
	}
	eventID := r.URL.Query().Get("eventId")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventId")
		return
	}
	request, err := c.Service.Create(r.Context(), userID, eventID)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteDomainError(w, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, request)
}

// CancelRequest godoc
// @Summary Cancel one of the caller's requests
// @Description Canceling a confirmed request frees its seat.
// @Tags requests
// @Produce json
// @Security BearerAuth
// @Param userID path string true "User ID"
// @Param requestID path string true "Request ID"
// @Success 200 {object} helpers.APIResponse "data contains the canceled request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /users/{userID}/requests/{requestID}/cancel [patch]
func (c *RequestController) CancelRequest(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUser(w, r)
	if !ok {
		return
	}
	request, err := c.Service.Cancel(r.Context(), userID, r.PathValue("requestID"))
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteDomainError(w, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, request)
}

// ListEventRequests godoc
// @Summary List requests for the caller's event
// @Tags requests
// @Produce json
// @Security BearerAuth
// @Param userID path string true "User ID"
// @Param eventID path string true "Event ID"
// @Success 200 {object} helpers.APIResponse "data contains the request list"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Router /users/{userID}/events/{eventID}/requests [get]
func (c *RequestController) ListEventRequests(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUser(w, r)
	if !ok {
		return
	}
	requests, err := c.Service.ListByEvent(r.Context(), userID, r.PathValue("eventID"))
	if err != nil {
		helpers.WriteDomainError(w, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, requests)
}

// DecideRequests godoc
// @Summary Confirm or reject pending requests for the caller's event
// @Description Confirms in the supplied order until capacity runs out; the spillover is rejected. All listed requests must be pending.
// @Tags requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param userID path string true "User ID"
// @Param eventID path string true "Event ID"
// @Param decision body DecideRequestsRequest true "Request IDs and target status"
// @Success 200 {object} helpers.APIResponse "data contains confirmed and rejected lists"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Router /users/{userID}/events/{eventID}/requests [patch]
func (c *RequestController) DecideRequests(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUser(w, r)
	if !ok {
		return
	}
	var req DecideRequestsRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	result, err := c.Service.Decide(r.Context(), userID, r.PathValue("eventID"), req.RequestIDs, domain.RequestStatus(req.Status))
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteDomainError(w, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, result)
}
