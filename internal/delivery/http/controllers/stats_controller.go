package controllers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"eventboard/internal/delivery/http/helpers"
	"eventboard/internal/domain"
)

// HitRequest is the body for POST /hit on the stats service.
type HitRequest struct {
	App       string `json:"app"`
	URI       string `json:"uri"`
	IP        string `json:"ip"`
	Timestamp string `json:"timestamp"`
}

// Validate implements Validator.
func (req HitRequest) Validate() []string {
	var errs []string
	if req.App == "" {
		errs = append(errs, "app is required")
	}
	if req.URI == "" {
		errs = append(errs, "uri is required")
	}
	if req.IP == "" {
		errs = append(errs, "ip is required")
	}
	if _, err := time.Parse(domain.StatsTimeLayout, req.Timestamp); err != nil {
		errs = append(errs, "timestamp must be formatted as "+domain.StatsTimeLayout)
	}
	return errs
}

// StatsController serves the stats service endpoints. Responses here are
// bare JSON, not the envelope: the main service's client and external
// consumers expect the original wire shapes.
type StatsController struct {
	Logger  *slog.Logger
	Service domain.StatsService
}

func NewStatsController(logger *slog.Logger, svc domain.StatsService) *StatsController {
	return &StatsController{
		Logger:  logger,
		Service: svc,
	}
}

// RecordHit godoc
// @Summary Record an endpoint hit
// @Tags stats
// @Accept json
// @Param hit body HitRequest true "Hit data"
// @Success 201 "created"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Router /hit [post]
func (c *StatsController) RecordHit(w http.ResponseWriter, r *http.Request) {
	var req HitRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	ts, _ := time.Parse(domain.StatsTimeLayout, req.Timestamp)
	hit := &domain.Hit{App: req.App, URI: req.URI, IP: req.IP, Timestamp: ts}
	if err := c.Service.RecordHit(r.Context(), hit); err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

// ViewStats godoc
// @Summary Aggregate view counts
// @Description Counts hits per (app, uri) in the window, ordered by count descending. unique=true counts distinct client IPs.
// @Tags stats
// @Produce json
// @Param start query string true "Window start (2006-01-02 15:04:05)"
// @Param end query string true "Window end (2006-01-02 15:04:05)"
// @Param uris query []string false "Restrict to URIs"
// @Param unique query bool false "Count distinct IPs"
// @Success 200 {array} domain.ViewStats
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Router /stats [get]
func (c *StatsController) ViewStats(w http.ResponseWriter, r *http.Request) {
	start, err := helpers.ParseTimeParam(r, "start")
	if err != nil || start == nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "start is required as "+domain.StatsTimeLayout)
		return
	}
	end, err := helpers.ParseTimeParam(r, "end")
	if err != nil || end == nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "end is required as "+domain.StatsTimeLayout)
		return
	}
	unique := false
	if u, err := helpers.ParseBoolParam(r, "unique"); err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
		return
	} else if u != nil {
		unique = *u
	}

	stats, err := c.Service.ViewStats(r.Context(), *start, *end, r.URL.Query()["uris"], unique)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteDomainError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(stats)
}
