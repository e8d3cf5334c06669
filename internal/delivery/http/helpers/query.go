package helpers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"eventboard/internal/domain"
)

// ParseTimeParam reads an optional query timestamp in the stats layout
// ("2006-01-02 15:04:05"). Missing returns (nil, nil).
func ParseTimeParam(r *http.Request, name string) (*time.Time, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(domain.StatsTimeLayout, s)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %q", name, s)
	}
	return &t, nil
}

// ParseBoolParam reads an optional boolean query parameter. Missing returns
// (nil, nil).
func ParseBoolParam(r *http.Request, name string) (*bool, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %q", name, s)
	}
	return &v, nil
}
