package statsclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventboard/internal/domain"
)

func TestRecordHit(t *testing.T) {
	var got hitPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/hit", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	client := New(server.URL, nil)
	ts := time.Date(2026, 5, 1, 12, 30, 45, 0, time.UTC)
	err := client.RecordHit(context.Background(), "eventboard-api", "/events/ev-1", "10.0.0.1", ts)
	require.NoError(t, err)
	assert.Equal(t, "eventboard-api", got.App)
	assert.Equal(t, "/events/ev-1", got.URI)
	assert.Equal(t, "2026-05-01 12:30:45", got.Timestamp)
}

func TestRecordHit_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := New(server.URL, nil)
	err := client.RecordHit(context.Background(), "eventboard-api", "/events/ev-1", "10.0.0.1", time.Now())
	assert.Error(t, err)
}

func TestViewCounts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/stats", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "2026-05-01 00:00:00", q.Get("start"))
		assert.Equal(t, "2026-05-02 00:00:00", q.Get("end"))
		assert.Equal(t, []string{"/events/ev-1", "/events/ev-2"}, q["uris"])
		assert.Equal(t, "true", q.Get("unique"))

		json.NewEncoder(w).Encode([]domain.ViewStats{
			{App: "eventboard-api", URI: "/events/ev-1", Hits: 7},
		})
	}))
	defer server.Close()

	client := New(server.URL, nil)
	start := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)
	stats, err := client.ViewCounts(context.Background(), start, end, []string{"/events/ev-1", "/events/ev-2"}, true)
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.Equal(t, int64(7), stats[0].Hits)
}
