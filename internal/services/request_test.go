package services

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"

	"eventboard/internal/domain"
)

type requestFixture struct {
	svc         domain.RequestService
	eventRepo   *mockEventRepo
	requestRepo *mockRequestRepo
	userRepo    *mockUserRepo
	notifier    *mockNotifier
}

func newRequestFixture(events ...*domain.Event) *requestFixture {
	eventRepo := newMockEventRepo(events...)
	requestRepo := newMockRequestRepo(eventRepo)
	userRepo := newMockUserRepo(
		&domain.User{ID: "us-1", Email: "owner@example.com", Name: "Owner"},
		&domain.User{ID: "us-2", Email: "guest@example.com", Name: "Guest"},
		&domain.User{ID: "us-3", Email: "other@example.com", Name: "Other"},
		&domain.User{ID: "us-4", Email: "late@example.com", Name: "Late"},
	)
	notifier := &mockNotifier{}
	svc := NewRequestService(requestRepo, eventRepo, userRepo, notifier, domain.FixedClock{T: testNow}, time.Second)
	return &requestFixture{svc: svc, eventRepo: eventRepo, requestRepo: requestRepo, userRepo: userRepo, notifier: notifier}
}

func moderatedEvent(limit int) *domain.Event {
	event := publishedEvent("ev-1", "us-1")
	event.ParticipantLimit = limit
	event.RequestModeration = true
	return event
}

func TestCreateRequest_StatusRules(t *testing.T) {
	tests := []struct {
		name       string
		moderation bool
		limit      int
		wantStatus domain.RequestStatus
		wantCount  int
	}{
		{name: "no moderation auto-confirms", moderation: false, limit: 5, wantStatus: domain.RequestConfirmed, wantCount: 1},
		{name: "unlimited capacity bypasses moderation", moderation: true, limit: 0, wantStatus: domain.RequestConfirmed, wantCount: 1},
		{name: "moderated limited event stays pending", moderation: true, limit: 5, wantStatus: domain.RequestPending, wantCount: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event := publishedEvent("ev-1", "us-1")
			event.RequestModeration = tt.moderation
			event.ParticipantLimit = tt.limit
			f := newRequestFixture(event)

			req, err := f.svc.Create(context.Background(), "us-2", "ev-1")
			require.NoError(t, err)
			require.Equal(t, tt.wantStatus, req.Status)
			require.Equal(t, tt.wantCount, event.ConfirmedRequests)
			require.Equal(t, testNow, req.Created)
			require.Equal(t, 1, f.notifier.received)
		})
	}
}

func TestCreateRequest_Conflicts(t *testing.T) {
	t.Run("duplicate active request", func(t *testing.T) {
		f := newRequestFixture(moderatedEvent(5))
		_, err := f.svc.Create(context.Background(), "us-2", "ev-1")
		require.NoError(t, err)
		_, err = f.svc.Create(context.Background(), "us-2", "ev-1")
		require.ErrorIs(t, err, domain.ErrConflict)
	})

	t.Run("canceled request does not block a new one", func(t *testing.T) {
		f := newRequestFixture(moderatedEvent(5))
		first, err := f.svc.Create(context.Background(), "us-2", "ev-1")
		require.NoError(t, err)
		_, err = f.svc.Cancel(context.Background(), "us-2", first.ID)
		require.NoError(t, err)
		_, err = f.svc.Create(context.Background(), "us-2", "ev-1")
		require.NoError(t, err)
	})

	t.Run("initiator cannot request own event", func(t *testing.T) {
		f := newRequestFixture(moderatedEvent(5))
		_, err := f.svc.Create(context.Background(), "us-1", "ev-1")
		require.ErrorIs(t, err, domain.ErrConflict)
	})

	t.Run("unpublished event", func(t *testing.T) {
		event := moderatedEvent(5)
		event.State = domain.EventPending
		f := newRequestFixture(event)
		_, err := f.svc.Create(context.Background(), "us-2", "ev-1")
		require.ErrorIs(t, err, domain.ErrConflict)
	})

	t.Run("capacity exhausted", func(t *testing.T) {
		event := moderatedEvent(1)
		event.ConfirmedRequests = 1
		f := newRequestFixture(event)
		_, err := f.svc.Create(context.Background(), "us-2", "ev-1")
		require.ErrorIs(t, err, domain.ErrConflict)
	})
}

func TestCancelRequest(t *testing.T) {
	t.Run("only the requester may cancel", func(t *testing.T) {
		f := newRequestFixture(moderatedEvent(5))
		req, err := f.svc.Create(context.Background(), "us-2", "ev-1")
		require.NoError(t, err)
		_, err = f.svc.Cancel(context.Background(), "us-3", req.ID)
		require.ErrorIs(t, err, domain.ErrConflict)
	})

	t.Run("confirmed cancel frees capacity", func(t *testing.T) {
		event := publishedEvent("ev-1", "us-1")
		event.ParticipantLimit = 1
		f := newRequestFixture(event)

		req, err := f.svc.Create(context.Background(), "us-2", "ev-1")
		require.NoError(t, err)
		require.Equal(t, domain.RequestConfirmed, req.Status)
		require.Equal(t, 1, event.ConfirmedRequests)

		canceled, err := f.svc.Cancel(context.Background(), "us-2", req.ID)
		require.NoError(t, err)
		require.Equal(t, domain.RequestCanceled, canceled.Status)
		require.Equal(t, 0, event.ConfirmedRequests)

		// The freed seat admits the next requester.
		_, err = f.svc.Create(context.Background(), "us-3", "ev-1")
		require.NoError(t, err)
		require.Equal(t, 1, event.ConfirmedRequests)
	})
}

func TestDecide_CapacitySpillover(t *testing.T) {
	event := moderatedEvent(2)
	f := newRequestFixture(event)
	ctx := context.Background()

	reqA, _ := f.svc.Create(ctx, "us-2", "ev-1")
	reqB, _ := f.svc.Create(ctx, "us-3", "ev-1")
	reqC, _ := f.svc.Create(ctx, "us-4", "ev-1")

	result, err := f.svc.Decide(ctx, "us-1", "ev-1", []string{reqA.ID, reqB.ID, reqC.ID}, domain.RequestConfirmed)
	require.NoError(t, err)
	require.Len(t, result.Confirmed, 2)
	require.Len(t, result.Rejected, 1)
	require.Equal(t, reqC.ID, result.Rejected[0].ID)
	require.Equal(t, domain.RequestRejected, reqC.Status)
	require.Equal(t, 2, event.ConfirmedRequests)
	require.Equal(t, 3, f.notifier.decided)
}

func TestDecide_Reject(t *testing.T) {
	f := newRequestFixture(moderatedEvent(2))
	ctx := context.Background()

	reqA, _ := f.svc.Create(ctx, "us-2", "ev-1")
	reqB, _ := f.svc.Create(ctx, "us-3", "ev-1")

	result, err := f.svc.Decide(ctx, "us-1", "ev-1", []string{reqA.ID, reqB.ID}, domain.RequestRejected)
	require.NoError(t, err)
	require.Empty(t, result.Confirmed)
	require.Len(t, result.Rejected, 2)
	require.Equal(t, domain.RequestRejected, reqA.Status)
}

func TestDecide_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("not the initiator", func(t *testing.T) {
		f := newRequestFixture(moderatedEvent(2))
		req, _ := f.svc.Create(ctx, "us-2", "ev-1")
		_, err := f.svc.Decide(ctx, "us-3", "ev-1", []string{req.ID}, domain.RequestConfirmed)
		require.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("unknown request id", func(t *testing.T) {
		f := newRequestFixture(moderatedEvent(2))
		_, err := f.svc.Decide(ctx, "us-1", "ev-1", []string{"rq-missing"}, domain.RequestConfirmed)
		require.ErrorIs(t, err, domain.ErrConflict)
	})

	t.Run("non-pending request in batch", func(t *testing.T) {
		f := newRequestFixture(moderatedEvent(2))
		req, _ := f.svc.Create(ctx, "us-2", "ev-1")
		_, err := f.svc.Decide(ctx, "us-1", "ev-1", []string{req.ID}, domain.RequestConfirmed)
		require.NoError(t, err)
		_, err = f.svc.Decide(ctx, "us-1", "ev-1", []string{req.ID}, domain.RequestConfirmed)
		require.ErrorIs(t, err, domain.ErrConflict)
	})

	t.Run("capacity already exhausted", func(t *testing.T) {
		event := moderatedEvent(1)
		f := newRequestFixture(event)
		reqA, _ := f.svc.Create(ctx, "us-2", "ev-1")
		reqB, _ := f.svc.Create(ctx, "us-3", "ev-1")
		_, err := f.svc.Decide(ctx, "us-1", "ev-1", []string{reqA.ID}, domain.RequestConfirmed)
		require.NoError(t, err)
		_, err = f.svc.Decide(ctx, "us-1", "ev-1", []string{reqB.ID}, domain.RequestConfirmed)
		require.ErrorIs(t, err, domain.ErrConflict)
	})

	t.Run("unsupported target status", func(t *testing.T) {
		f := newRequestFixture(moderatedEvent(2))
		req, _ := f.svc.Create(ctx, "us-2", "ev-1")
		_, err := f.svc.Decide(ctx, "us-1", "ev-1", []string{req.ID}, domain.RequestCanceled)
		require.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestListByEvent_InitiatorOnly(t *testing.T) {
	f := newRequestFixture(moderatedEvent(2))
	ctx := context.Background()
	_, err := f.svc.Create(ctx, "us-2", "ev-1")
	require.NoError(t, err)

	requests, err := f.svc.ListByEvent(ctx, "us-1", "ev-1")
	require.NoError(t, err)
	require.Len(t, requests, 1)

	_, err = f.svc.ListByEvent(ctx, "us-2", "ev-1")
	require.ErrorIs(t, err, domain.ErrValidation)
}

// TestProperty_ConfirmedNeverExceedsLimit drives random admission sequences
// (creates, cancels, batch decisions) against a limited event and checks the
// confirmed counter never passes the participant limit.
func TestProperty_ConfirmedNeverExceedsLimit(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("confirmed requests never exceed the participant limit", prop.ForAll(
		func(limit int, moderation bool, actions []int) bool {
			event := publishedEvent("ev-1", "us-1")
			event.ParticipantLimit = limit
			event.RequestModeration = moderation
			f := newRequestFixture(event)
			ctx := context.Background()

			var pending, confirmed []string
			userSeq := 0
			for _, action := range actions {
				switch action % 3 {
				case 0: // new requester joins
					userSeq++
					id := f.userRepo.mustAdd(userSeq)
					req, err := f.svc.Create(ctx, id, "ev-1")
					if err == nil {
						if req.Status == domain.RequestPending {
							pending = append(pending, req.ID)
						} else {
							confirmed = append(confirmed, req.ID)
						}
					}
				case 1: // initiator decides all pending
					if len(pending) > 0 {
						if _, err := f.svc.Decide(ctx, "us-1", "ev-1", pending, domain.RequestConfirmed); err == nil {
							confirmed = append(confirmed, pending...)
						}
						pending = nil
					}
				case 2: // a confirmed requester cancels
					if len(confirmed) > 0 {
						reqID := confirmed[0]
						confirmed = confirmed[1:]
						req, err := f.requestRepo.GetByID(ctx, reqID)
						if err == nil && req.Status == domain.RequestConfirmed {
							_, _ = f.svc.Cancel(ctx, req.RequesterID, reqID)
						}
					}
				}
				if limit > 0 && event.ConfirmedRequests > limit {
					return false
				}
			}
			return event.ConfirmedRequests >= 0
		},
		gen.IntRange(1, 5),
		gen.Bool(),
		gen.SliceOf(gen.IntRange(0, 8)),
	))

	properties.TestingRun(t)
}

// mustAdd registers a synthetic user and returns its ID.
func (m *mockUserRepo) mustAdd(seq int) string {
	id := "prop-us-" + strconv.Itoa(seq)
	m.users[id] = &domain.User{ID: id, Email: id + "@example.com", Name: id}
	return id
}
