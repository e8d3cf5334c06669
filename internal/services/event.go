package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"eventboard/internal/domain"
)

// AppName identifies this service in recorded hits.
const AppName = "eventboard-api"

// wideWindow is the half-width of the "effectively all time" window used
// when fetching view counts and as the admin listing's default date range.
const wideWindow = 5 * 365 * 24 * time.Hour

// searchWindow is the default forward horizon for the public search.
const searchWindow = 15 * 365 * 24 * time.Hour

type eventService struct {
	eventRepo      domain.EventRepository
	requestRepo    domain.RequestRepository
	userRepo       domain.UserRepository
	categoryRepo   domain.CategoryRepository
	stats          domain.StatsClient
	notifier       domain.NotificationService
	clock          domain.Clock
	contextTimeout time.Duration
}

// NewEventService creates the event lifecycle service.
func NewEventService(
	eventRepo domain.EventRepository,
	requestRepo domain.RequestRepository,
	userRepo domain.UserRepository,
	categoryRepo domain.CategoryRepository,
	stats domain.StatsClient,
	notifier domain.NotificationService,
	clock domain.Clock,
	timeout time.Duration,
) domain.EventService {
	return &eventService{
		eventRepo:      eventRepo,
		requestRepo:    requestRepo,
		userRepo:       userRepo,
		categoryRepo:   categoryRepo,
		stats:          stats,
		notifier:       notifier,
		clock:          clock,
		contextTimeout: timeout,
	}
}

// EventURI returns the public URI of an event, the key under which its hits
// are recorded.
func EventURI(eventID string) string {
	return "/events/" + eventID
}

func eventIDFromURI(uri string) string {
	return uri[strings.LastIndex(uri, "/")+1:]
}

func (s *eventService) ListByInitiator(ctx context.Context, initiatorID string, p domain.PaginationParams) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.checkUserExists(ctx, initiatorID); err != nil {
		return nil, err
	}
	events, err := s.eventRepo.ListByInitiator(ctx, initiatorID, p.Normalize())
	if err != nil {
		return nil, fmt.Errorf("list events by initiator: %w", err)
	}
	if events == nil {
		events = []*domain.Event{}
	}
	return events, nil
}

func (s *eventService) Create(ctx context.Context, initiatorID string, in domain.NewEventInput) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.checkUserExists(ctx, initiatorID); err != nil {
		return nil, err
	}
	if err := s.checkCategoryExists(ctx, in.CategoryID); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	if in.EventDate.Before(now.Add(domain.EventLeadTime)) {
		return nil, domain.Validationf("event date must be at least two hours from now")
	}
	if err := checkTitle(in.Title); err != nil {
		return nil, err
	}
	if err := checkAnnotation(in.Annotation); err != nil {
		return nil, err
	}
	if err := checkDescription(in.Description); err != nil {
		return nil, err
	}

	event := &domain.Event{
		Title:             in.Title,
		Annotation:        in.Annotation,
		Description:       in.Description,
		CategoryID:        in.CategoryID,
		InitiatorID:       initiatorID,
		Location:          in.Location,
		Paid:              in.Paid,
		ParticipantLimit:  in.ParticipantLimit,
		RequestModeration: in.RequestModeration,
		ConfirmedRequests: 0,
		State:             domain.EventPending,
		CreatedOn:         now,
		EventDate:         in.EventDate,
	}
	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	return event, nil
}

func (s *eventService) GetByInitiator(ctx context.Context, initiatorID, eventID string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.checkEventExists(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.InitiatorID != initiatorID {
		return nil, domain.NotFoundf("user %s is not the initiator of event %s", initiatorID, eventID)
	}
	return event, nil
}

func (s *eventService) UpdateByInitiator(ctx context.Context, initiatorID, eventID string, upd domain.EventUpdate) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.GetByInitiator(ctx, initiatorID, eventID)
	if err != nil {
		return nil, err
	}

	if err := checkState(event, domain.EventPending, domain.EventCanceled); err != nil {
		return nil, err
	}
	if upd.EventDate != nil && upd.EventDate.Before(s.clock.Now().Add(domain.EventLeadTime)) {
		return nil, domain.Validationf("event date must be at least two hours from now")
	}

	if upd.StateAction != nil {
		switch *upd.StateAction {
		case domain.SendToReview:
			event.State = domain.EventPending
		case domain.CancelReview:
			event.State = domain.EventCanceled
		default:
			return nil, domain.Validationf("unsupported state action %s for initiator", *upd.StateAction)
		}
	}

	if err := s.applyUpdate(ctx, event, upd); err != nil {
		return nil, err
	}
	if err := s.eventRepo.Save(ctx, event); err != nil {
		return nil, fmt.Errorf("save event: %w", err)
	}
	return event, nil
}

func (s *eventService) AdminList(ctx context.Context, q domain.AdminEventQuery) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	p := q.Pagination.Normalize()

	// No state or date filters at all: plain paged listing.
	if q.States == nil && q.RangeStart == nil && q.RangeEnd == nil {
		events, err := s.eventRepo.ListAll(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("list events: %w", err)
		}
		return events, nil
	}

	states := q.States
	if states == nil {
		states = []domain.EventState{domain.EventPending, domain.EventPublished, domain.EventCanceled}
	}
	now := s.clock.Now()
	start := now.Add(-wideWindow)
	if q.RangeStart != nil {
		start = *q.RangeStart
	}
	end := now.Add(wideWindow)
	if q.RangeEnd != nil {
		end = *q.RangeEnd
	}
	if start.After(end) {
		return nil, domain.Validationf("range start %s is after range end %s", start, end)
	}

	events, err := s.eventRepo.FindByFilter(ctx, domain.EventFilter{
		InitiatorIDs: q.InitiatorIDs,
		States:       states,
		CategoryIDs:  q.CategoryIDs,
		RangeStart:   start,
		RangeEnd:     end,
		Pagination:   p,
	})
	if err != nil {
		return nil, fmt.Errorf("find events: %w", err)
	}
	return events, nil
}

func (s *eventService) AdminUpdate(ctx context.Context, eventID string, upd domain.EventUpdate) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.checkEventExists(ctx, eventID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	if upd.EventDate != nil && upd.EventDate.Before(now) {
		return nil, domain.Validationf("event date %s is in the past", upd.EventDate)
	}

	var outcome string
	if upd.StateAction != nil {
		switch *upd.StateAction {
		case domain.PublishEvent:
			if err := checkState(event, domain.EventPending); err != nil {
				return nil, err
			}
			event.State = domain.EventPublished
			event.PublishedOn = &now
			outcome = "published"
		case domain.RejectEvent:
			if err := checkState(event, domain.EventPending); err != nil {
				return nil, err
			}
			event.State = domain.EventCanceled
			outcome = "rejected"
		default:
			return nil, domain.Validationf("unsupported state action %s for admin", *upd.StateAction)
		}
	}

	if err := s.applyUpdate(ctx, event, upd); err != nil {
		return nil, err
	}
	if err := s.eventRepo.Save(ctx, event); err != nil {
		return nil, fmt.Errorf("save event: %w", err)
	}

	if outcome != "" {
		s.notifyModerated(ctx, event, outcome)
	}
	return event, nil
}

func (s *eventService) GetPublished(ctx context.Context, eventID, requestURI, clientIP string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.checkEventExists(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.State != domain.EventPublished {
		return nil, domain.NotFoundf("event %s is not published", eventID)
	}

	now := s.clock.Now()
	if err := s.stats.RecordHit(ctx, AppName, requestURI, clientIP, now); err != nil {
		return nil, fmt.Errorf("record hit: %w", err)
	}
	stats, err := s.stats.ViewCounts(ctx, now.Add(-wideWindow), now.Add(wideWindow), []string{requestURI}, true)
	if err != nil {
		return nil, fmt.Errorf("fetch view counts: %w", err)
	}
	var hits int64
	for _, st := range stats {
		if st.URI == requestURI {
			hits = st.Hits
			break
		}
	}
	// The hit recorded above may not be visible in the store yet; count it
	// locally instead of relying on it being indexed.
	event.Views = hits + 1

	counts, err := s.requestRepo.CountByEventsAndStatus(ctx, []string{eventID}, domain.RequestConfirmed)
	if err != nil {
		return nil, fmt.Errorf("count confirmed requests: %w", err)
	}
	event.ConfirmedRequests = counts[eventID]

	if err := s.eventRepo.Save(ctx, event); err != nil {
		return nil, fmt.Errorf("save event: %w", err)
	}
	return event, nil
}

func (s *eventService) SearchPublished(ctx context.Context, q domain.PublicEventSearch, requestURI, clientIP string) ([]*domain.EventSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	now := s.clock.Now()
	start := now
	if q.RangeStart != nil {
		start = *q.RangeStart
	}
	end := now.Add(searchWindow)
	if q.RangeEnd != nil {
		end = *q.RangeEnd
	}
	if start.After(end) {
		return nil, domain.Validationf("range start %s is after range end %s", start, end)
	}

	events, err := s.eventRepo.FindByFilter(ctx, domain.EventFilter{
		States:      []domain.EventState{domain.EventPublished},
		CategoryIDs: q.CategoryIDs,
		Paid:        q.Paid,
		Text:        strings.ToLower(q.Text),
		RangeStart:  start,
		RangeEnd:    end,
		Pagination:  q.Pagination.Normalize(),
	})
	if err != nil {
		return nil, fmt.Errorf("find events: %w", err)
	}

	if err := s.stats.RecordHit(ctx, AppName, requestURI, clientIP, now); err != nil {
		return nil, fmt.Errorf("record hit: %w", err)
	}
	if err := s.refreshCounters(ctx, events, now); err != nil {
		return nil, err
	}

	if q.SortByViews {
		sort.SliceStable(events, func(i, j int) bool { return events[i].Views > events[j].Views })
	}

	summaries := make([]*domain.EventSummary, 0, len(events))
	for _, event := range events {
		if q.OnlyAvailable && !event.Available() {
			continue
		}
		summaries = append(summaries, event.Summary())
	}
	return summaries, nil
}

// refreshCounters bulk-fetches view counts and confirmed-request counts for
// the events and persists the refreshed rows.
func (s *eventService) refreshCounters(ctx context.Context, events []*domain.Event, now time.Time) error {
	if len(events) == 0 {
		return nil
	}
	ids := make([]string, 0, len(events))
	uris := make([]string, 0, len(events))
	for _, event := range events {
		ids = append(ids, event.ID)
		uris = append(uris, EventURI(event.ID))
	}

	stats, err := s.stats.ViewCounts(ctx, now.Add(-wideWindow), now.Add(wideWindow), uris, false)
	if err != nil {
		return fmt.Errorf("fetch view counts: %w", err)
	}
	views := make(map[string]int64, len(stats))
	for _, st := range stats {
		views[eventIDFromURI(st.URI)] = st.Hits
	}

	confirmed, err := s.requestRepo.CountByEventsAndStatus(ctx, ids, domain.RequestConfirmed)
	if err != nil {
		return fmt.Errorf("count confirmed requests: %w", err)
	}

	for _, event := range events {
		event.Views = views[event.ID]
		event.ConfirmedRequests = confirmed[event.ID]
		if err := s.eventRepo.Save(ctx, event); err != nil {
			return fmt.Errorf("save event %s: %w", event.ID, err)
		}
	}
	return nil
}

// applyUpdate copies present fields from the update payload onto the event,
// re-checking bounds for each touched field.
func (s *eventService) applyUpdate(ctx context.Context, event *domain.Event, upd domain.EventUpdate) error {
	if upd.Annotation != nil {
		if err := checkAnnotation(*upd.Annotation); err != nil {
			return err
		}
		event.Annotation = *upd.Annotation
	}
	if upd.CategoryID != nil {
		if err := s.checkCategoryExists(ctx, *upd.CategoryID); err != nil {
			return err
		}
		event.CategoryID = *upd.CategoryID
	}
	if upd.Description != nil {
		if err := checkDescription(*upd.Description); err != nil {
			return err
		}
		event.Description = *upd.Description
	}
	if upd.Location != nil {
		event.Location = *upd.Location
	}
	if upd.Paid != nil {
		event.Paid = *upd.Paid
	}
	if upd.ParticipantLimit != nil {
		event.ParticipantLimit = *upd.ParticipantLimit
	}
	if upd.RequestModeration != nil {
		event.RequestModeration = *upd.RequestModeration
	}
	if upd.Title != nil {
		if err := checkTitle(*upd.Title); err != nil {
			return err
		}
		event.Title = *upd.Title
	}
	if upd.EventDate != nil {
		event.EventDate = *upd.EventDate
	}
	return nil
}

func (s *eventService) notifyModerated(ctx context.Context, event *domain.Event, outcome string) {
	owner, err := s.userRepo.GetByID(ctx, event.InitiatorID)
	if err != nil || owner == nil {
		return
	}
	data := &domain.EventModeratedEmailData{
		OwnerEmail: owner.Email,
		OwnerName:  owner.Name,
		EventTitle: event.Title,
		Outcome:    outcome,
	}
	if err := s.notifier.SendEventModerated(ctx, data); err != nil {
		log.Printf("[EMAIL] moderation notice for event %s failed: %v", event.ID, err)
	}
}

func (s *eventService) checkEventExists(ctx context.Context, eventID string) (*domain.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NotFoundf("event %s not found", eventID)
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

func (s *eventService) checkUserExists(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NotFoundf("user %s not found", userID)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

func (s *eventService) checkCategoryExists(ctx context.Context, categoryID string) error {
	if _, err := s.categoryRepo.GetByID(ctx, categoryID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.NotFoundf("category %s not found", categoryID)
		}
		return fmt.Errorf("get category: %w", err)
	}
	return nil
}

func checkState(event *domain.Event, allowed ...domain.EventState) error {
	for _, state := range allowed {
		if event.State == state {
			return nil
		}
	}
	return domain.Conflictf("event %s is %s; transition allowed only from %v", event.ID, event.State, allowed)
}

func checkTitle(title string) error {
	if len(title) < domain.TitleMin || len(title) > domain.TitleMax {
		return domain.Validationf("title must be between %d and %d characters", domain.TitleMin, domain.TitleMax)
	}
	return nil
}

func checkAnnotation(annotation string) error {
	if len(annotation) < domain.AnnotationMin || len(annotation) > domain.AnnotationMax {
		return domain.Validationf("annotation must be between %d and %d characters", domain.AnnotationMin, domain.AnnotationMax)
	}
	return nil
}

func checkDescription(description string) error {
	if len(description) < domain.DescriptionMin || len(description) > domain.DescriptionMax {
		return domain.Validationf("description must be between %d and %d characters", domain.DescriptionMin, domain.DescriptionMax)
	}
	return nil
}
