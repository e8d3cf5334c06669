package domain

import (
	"context"
	"time"
)

// EventState is the moderation state of an event.
type EventState string

const (
	EventPending   EventState = "PENDING"
	EventPublished EventState = "PUBLISHED"
	EventCanceled  EventState = "CANCELED"
)

// StateAction is a requested state transition carried in an update payload.
type StateAction string

const (
	// Initiator actions.
	SendToReview StateAction = "SEND_TO_REVIEW"
	CancelReview StateAction = "CANCEL_REVIEW"
	// Admin actions.
	PublishEvent StateAction = "PUBLISH_EVENT"
	RejectEvent  StateAction = "REJECT_EVENT"
)

// Field length bounds, checked at creation and on every edit touching the field.
const (
	AnnotationMin  = 20
	AnnotationMax  = 2000
	DescriptionMin = 20
	DescriptionMax = 7000
	TitleMin       = 3
	TitleMax       = 120
)

// EventLeadTime is the minimum distance between "now" and an event's start.
const EventLeadTime = 2 * time.Hour

// Location is a lat/lon pair. Stored inline on the event row.
type Location struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Event represents a published or pending event.
// ConfirmedRequests and Views are derived counters materialized on the row
// and refreshed opportunistically on read paths.
// swagger:model Event
type Event struct {
	ID                string     `json:"id"`
	Title             string     `json:"title"`
	Annotation        string     `json:"annotation"`
	Description       string     `json:"description"`
	CategoryID        string     `json:"category_id"`
	InitiatorID       string     `json:"initiator_id"`
	Location          Location   `json:"location"`
	Paid              bool       `json:"paid"`
	ParticipantLimit  int        `json:"participant_limit"`
	RequestModeration bool       `json:"request_moderation"`
	ConfirmedRequests int        `json:"confirmed_requests"`
	Views             int64      `json:"views"`
	State             EventState `json:"state"`
	CreatedOn         time.Time  `json:"created_on"`
	PublishedOn       *time.Time `json:"published_on,omitempty"`
	EventDate         time.Time  `json:"event_date"`
}

// Available reports whether the event can still admit a confirmed request.
func (e *Event) Available() bool {
	return e.ParticipantLimit == 0 || e.ConfirmedRequests < e.ParticipantLimit
}

// NewEventInput carries the caller-supplied fields for event creation.
type NewEventInput struct {
	Title             string
	Annotation        string
	Description       string
	CategoryID        string
	Location          Location
	Paid              bool
	ParticipantLimit  int
	RequestModeration bool
	EventDate         time.Time
}

// EventUpdate is a partial update payload. Nil fields are left unchanged.
type EventUpdate struct {
	Title             *string
	Annotation        *string
	Description       *string
	CategoryID        *string
	Location          *Location
	Paid              *bool
	ParticipantLimit  *int
	RequestModeration *bool
	EventDate         *time.Time
	StateAction       *StateAction
}

// AdminEventQuery filters the admin event listing. Nil States or range
// bounds mean "not given" and trigger the service-level defaults.
type AdminEventQuery struct {
	InitiatorIDs []string
	States       []EventState
	CategoryIDs  []string
	RangeStart   *time.Time
	RangeEnd     *time.Time
	Pagination   PaginationParams
}

// PublicEventSearch filters the public event listing.
type PublicEventSearch struct {
	Text          string
	CategoryIDs   []string
	Paid          *bool
	RangeStart    *time.Time
	RangeEnd      *time.Time
	OnlyAvailable bool
	SortByViews   bool
	Pagination    PaginationParams
}

// EventFilter is the resolved parameterized query handed to the repository
// after the service applied defaults.
type EventFilter struct {
	InitiatorIDs []string
	States       []EventState
	CategoryIDs  []string
	Paid         *bool
	Text         string
	RangeStart   time.Time
	RangeEnd     time.Time
	Pagination   PaginationParams
}

// EventRepository defines the interface for event storage.
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	// Save persists all mutable columns of an existing event, including the
	// derived counters.
	Save(ctx context.Context, event *Event) error
	Delete(ctx context.Context, id string) error
	ListByInitiator(ctx context.Context, initiatorID string, p PaginationParams) ([]*Event, error)
	ListAll(ctx context.Context, p PaginationParams) ([]*Event, error)
	// FindByFilter runs the parameterized query: state/category/initiator/date
	// filters plus optional paid flag and case-insensitive substring match on
	// annotation or description. Rows are ordered by event date.
	FindByFilter(ctx context.Context, f EventFilter) ([]*Event, error)
	ListByIDs(ctx context.Context, ids []string) ([]*Event, error)
}

// EventSummary is the public list projection.
// swagger:model EventSummary
type EventSummary struct {
	ID                string     `json:"id"`
	Title             string     `json:"title"`
	Annotation        string     `json:"annotation"`
	CategoryID        string     `json:"category_id"`
	InitiatorID       string     `json:"initiator_id"`
	Paid              bool       `json:"paid"`
	ConfirmedRequests int        `json:"confirmed_requests"`
	Views             int64      `json:"views"`
	EventDate         time.Time  `json:"event_date"`
	PublishedOn       *time.Time `json:"published_on,omitempty"`
}

// Summary maps the event to its public list projection.
func (e *Event) Summary() *EventSummary {
	return &EventSummary{
		ID:                e.ID,
		Title:             e.Title,
		Annotation:        e.Annotation,
		CategoryID:        e.CategoryID,
		InitiatorID:       e.InitiatorID,
		Paid:              e.Paid,
		ConfirmedRequests: e.ConfirmedRequests,
		Views:             e.Views,
		EventDate:         e.EventDate,
		PublishedOn:       e.PublishedOn,
	}
}

// EventService defines the event lifecycle operations.
type EventService interface {
	// Initiator-facing.
	ListByInitiator(ctx context.Context, initiatorID string, p PaginationParams) ([]*Event, error)
	Create(ctx context.Context, initiatorID string, in NewEventInput) (*Event, error)
	GetByInitiator(ctx context.Context, initiatorID, eventID string) (*Event, error)
	UpdateByInitiator(ctx context.Context, initiatorID, eventID string, upd EventUpdate) (*Event, error)
	// Admin-facing.
	AdminList(ctx context.Context, q AdminEventQuery) ([]*Event, error)
	AdminUpdate(ctx context.Context, eventID string, upd EventUpdate) (*Event, error)
	// Public read paths; requestURI and clientIP feed the hit recording.
	GetPublished(ctx context.Context, eventID, requestURI, clientIP string) (*Event, error)
	SearchPublished(ctx context.Context, q PublicEventSearch, requestURI, clientIP string) ([]*EventSummary, error)
}
