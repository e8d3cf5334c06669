package domain

import (
	"context"
	"time"
)

// RequestStatus is the status of a participation request.
type RequestStatus string

const (
	RequestPending   RequestStatus = "PENDING"
	RequestConfirmed RequestStatus = "CONFIRMED"
	RequestRejected  RequestStatus = "REJECTED"
	RequestCanceled  RequestStatus = "CANCELED"
)

// Request is a user's request to participate in an event.
// swagger:model Request
type Request struct {
	ID          string        `json:"id"`
	RequesterID string        `json:"requester_id"`
	EventID     string        `json:"event_id"`
	Status      RequestStatus `json:"status"`
	Created     time.Time     `json:"created"`
}

// NewRequest returns a new Request. ID is set by the repository on create.
func NewRequest(requesterID, eventID string, status RequestStatus, created time.Time) *Request {
	return &Request{
		RequesterID: requesterID,
		EventID:     eventID,
		Status:      status,
		Created:     created,
	}
}

// DecisionResult separates the outcomes of a batch decide call.
// swagger:model DecisionResult
type DecisionResult struct {
	Confirmed []*Request `json:"confirmed_requests"`
	Rejected  []*Request `json:"rejected_requests"`
}

// RequestRepository defines the interface for request storage.
//
// CreateConfirmed, ApplyDecision and Cancel couple the request write with the
// event's confirmed counter in one transaction; the counter update is
// conditional on remaining capacity so concurrent admissions cannot over-admit.
type RequestRepository interface {
	Create(ctx context.Context, req *Request) error
	// CreateConfirmed inserts the request as CONFIRMED and increments the
	// event's confirmed counter, guarded by the participant limit. Returns
	// ErrConflict when the guard fails.
	CreateConfirmed(ctx context.Context, req *Request) error
	GetByID(ctx context.Context, id string) (*Request, error)
	// Cancel sets the request status to CANCELED; when releaseCapacity is true
	// it also decrements the event's confirmed counter in the same transaction.
	Cancel(ctx context.Context, req *Request, releaseCapacity bool) error
	// ApplyDecision persists a batch decision: listed requests move to their
	// new statuses and the event's confirmed counter grows by confirmedDelta,
	// guarded by the participant limit. Returns ErrConflict when the guard fails.
	ApplyDecision(ctx context.Context, eventID string, confirmed, rejected []*Request, confirmedDelta int) error
	ListByRequester(ctx context.Context, requesterID string) ([]*Request, error)
	// GetActiveByRequesterAndEvent returns the non-canceled request for the
	// pair, or ErrNotFound.
	GetActiveByRequesterAndEvent(ctx context.Context, requesterID, eventID string) (*Request, error)
	ListByIDs(ctx context.Context, ids []string) ([]*Request, error)
	ListByEvent(ctx context.Context, eventID string) ([]*Request, error)
	// CountByEventsAndStatus returns, per event ID, the number of requests in
	// the given status. Events with no matching requests are absent.
	CountByEventsAndStatus(ctx context.Context, eventIDs []string, status RequestStatus) (map[string]int, error)
}

// RequestService defines the admission operations.
type RequestService interface {
	ListByRequester(ctx context.Context, requesterID string) ([]*Request, error)
	Create(ctx context.Context, requesterID, eventID string) (*Request, error)
	Cancel(ctx context.Context, requesterID, requestID string) (*Request, error)
	ListByEvent(ctx context.Context, initiatorID, eventID string) ([]*Request, error)
	// Decide confirms or rejects the listed pending requests on behalf of the
	// event initiator. Target must be RequestConfirmed or RequestRejected.
	Decide(ctx context.Context, initiatorID, eventID string, requestIDs []string, target RequestStatus) (*DecisionResult, error)
}
