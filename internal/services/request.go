package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"eventboard/internal/domain"
)

type requestService struct {
	requestRepo    domain.RequestRepository
	eventRepo      domain.EventRepository
	userRepo       domain.UserRepository
	notifier       domain.NotificationService
	clock          domain.Clock
	contextTimeout time.Duration
}

// NewRequestService creates the admission service.
func NewRequestService(
	requestRepo domain.RequestRepository,
	eventRepo domain.EventRepository,
	userRepo domain.UserRepository,
	notifier domain.NotificationService,
	clock domain.Clock,
	timeout time.Duration,
) domain.RequestService {
	return &requestService{
		requestRepo:    requestRepo,
		eventRepo:      eventRepo,
		userRepo:       userRepo,
		notifier:       notifier,
		clock:          clock,
		contextTimeout: timeout,
	}
}

func (s *requestService) ListByRequester(ctx context.Context, requesterID string) ([]*domain.Request, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.checkUserExists(ctx, requesterID); err != nil {
		return nil, err
	}
	requests, err := s.requestRepo.ListByRequester(ctx, requesterID)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	if requests == nil {
		requests = []*domain.Request{}
	}
	return requests, nil
}

func (s *requestService) Create(ctx context.Context, requesterID, eventID string) (*domain.Request, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	requester, err := s.checkUserExists(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	event, err := s.checkEventExists(ctx, eventID)
	if err != nil {
		return nil, err
	}

	if _, err := s.requestRepo.GetActiveByRequesterAndEvent(ctx, requesterID, eventID); err == nil {
		return nil, domain.Conflictf("user %s already has an active request for event %s", requesterID, eventID)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get request: %w", err)
	}
	if event.InitiatorID == requesterID {
		return nil, domain.Conflictf("initiator of event %s cannot request participation in it", eventID)
	}
	if event.State != domain.EventPublished {
		return nil, domain.Conflictf("event %s is not published", eventID)
	}
	if event.ParticipantLimit > 0 && event.ConfirmedRequests >= event.ParticipantLimit {
		return nil, domain.Conflictf("participant limit of event %s is reached", eventID)
	}

	// No moderation or unlimited capacity: request is confirmed immediately.
	status := domain.RequestPending
	if !event.RequestModeration || event.ParticipantLimit == 0 {
		status = domain.RequestConfirmed
	}

	req := domain.NewRequest(requesterID, eventID, status, s.clock.Now())
	if status == domain.RequestConfirmed {
		// Insert and counter increment are one transaction; the increment is
		// guarded by the participant limit so a concurrent admission cannot
		// push the counter past it.
		if err := s.requestRepo.CreateConfirmed(ctx, req); err != nil {
			if errors.Is(err, domain.ErrConflict) {
				return nil, domain.Conflictf("participant limit of event %s is reached", eventID)
			}
			return nil, fmt.Errorf("create confirmed request: %w", err)
		}
	} else if err := s.requestRepo.Create(ctx, req); err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	s.notifyReceived(ctx, event, requester)
	return req, nil
}

func (s *requestService) Cancel(ctx context.Context, requesterID, requestID string) (*domain.Request, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.checkUserExists(ctx, requesterID); err != nil {
		return nil, err
	}
	req, err := s.checkRequestExists(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.RequesterID != requesterID {
		return nil, domain.Conflictf("request %s does not belong to user %s", requestID, requesterID)
	}

	// Canceling a confirmed request frees the seat it held.
	release := req.Status == domain.RequestConfirmed
	req.Status = domain.RequestCanceled
	if err := s.requestRepo.Cancel(ctx, req, release); err != nil {
		return nil, fmt.Errorf("cancel request: %w", err)
	}
	return req, nil
}

func (s *requestService) ListByEvent(ctx context.Context, initiatorID, eventID string) ([]*domain.Request, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.checkEventExists(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if _, err := s.checkUserExists(ctx, initiatorID); err != nil {
		return nil, err
	}
	if event.InitiatorID != initiatorID {
		return nil, domain.Validationf("only the initiator may list requests for event %s", eventID)
	}
	requests, err := s.requestRepo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list requests by event: %w", err)
	}
	if requests == nil {
		requests = []*domain.Request{}
	}
	return requests, nil
}

func (s *requestService) Decide(ctx context.Context, initiatorID, eventID string, requestIDs []string, target domain.RequestStatus) (*domain.DecisionResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.checkUserExists(ctx, initiatorID); err != nil {
		return nil, err
	}
	event, err := s.checkEventExists(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.InitiatorID != initiatorID {
		return nil, domain.Validationf("only the initiator may decide requests for event %s", eventID)
	}
	if event.ParticipantLimit > 0 && event.ConfirmedRequests >= event.ParticipantLimit && target == domain.RequestConfirmed {
		return nil, domain.Conflictf("participant limit of event %s is reached", eventID)
	}

	requests, err := s.requestRepo.ListByIDs(ctx, requestIDs)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	if len(requests) != len(requestIDs) {
		return nil, domain.Conflictf("some of the requests %v do not exist", requestIDs)
	}
	for _, req := range requests {
		if req.Status != domain.RequestPending {
			return nil, domain.Conflictf("request %s is %s, only pending requests can be decided", req.ID, req.Status)
		}
	}

	var result *domain.DecisionResult
	switch target {
	case domain.RequestConfirmed:
		result = decideConfirmed(requests, event)
	case domain.RequestRejected:
		result = &domain.DecisionResult{Confirmed: []*domain.Request{}, Rejected: requests}
		for _, req := range requests {
			req.Status = domain.RequestRejected
		}
	default:
		return nil, domain.Validationf("unsupported target status %s", target)
	}

	if err := s.requestRepo.ApplyDecision(ctx, eventID, result.Confirmed, result.Rejected, len(result.Confirmed)); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, domain.Conflictf("participant limit of event %s is reached", eventID)
		}
		return nil, fmt.Errorf("apply decision: %w", err)
	}

	s.notifyDecided(ctx, event, result)
	return result, nil
}

// decideConfirmed processes the requests in the supplied order, confirming
// until capacity is reached and rejecting the spillover.
func decideConfirmed(requests []*domain.Request, event *domain.Event) *domain.DecisionResult {
	result := &domain.DecisionResult{
		Confirmed: []*domain.Request{},
		Rejected:  []*domain.Request{},
	}
	remaining := event.ParticipantLimit - event.ConfirmedRequests
	for _, req := range requests {
		if event.ParticipantLimit > 0 && remaining <= 0 {
			req.Status = domain.RequestRejected
			result.Rejected = append(result.Rejected, req)
			continue
		}
		req.Status = domain.RequestConfirmed
		result.Confirmed = append(result.Confirmed, req)
		remaining--
	}
	return result
}

func (s *requestService) notifyReceived(ctx context.Context, event *domain.Event, requester *domain.User) {
	owner, err := s.userRepo.GetByID(ctx, event.InitiatorID)
	if err != nil || owner == nil {
		return
	}
	data := &domain.RequestReceivedEmailData{
		OwnerEmail:    owner.Email,
		OwnerName:     owner.Name,
		RequesterName: requester.Name,
		EventTitle:    event.Title,
	}
	if err := s.notifier.SendRequestReceived(ctx, data); err != nil {
		log.Printf("[EMAIL] request notice for event %s failed: %v", event.ID, err)
	}
}

func (s *requestService) notifyDecided(ctx context.Context, event *domain.Event, result *domain.DecisionResult) {
	notify := func(req *domain.Request) {
		requester, err := s.userRepo.GetByID(ctx, req.RequesterID)
		if err != nil || requester == nil {
			return
		}
		data := &domain.RequestDecidedEmailData{
			RequesterEmail: requester.Email,
			RequesterName:  requester.Name,
			EventTitle:     event.Title,
			Status:         string(req.Status),
		}
		if err := s.notifier.SendRequestDecided(ctx, data); err != nil {
			log.Printf("[EMAIL] decision notice for request %s failed: %v", req.ID, err)
		}
	}
	for _, req := range result.Confirmed {
		notify(req)
	}
	for _, req := range result.Rejected {
		notify(req)
	}
}

func (s *requestService) checkRequestExists(ctx context.Context, requestID string) (*domain.Request, error) {
	req, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NotFoundf("request %s not found", requestID)
		}
		return nil, fmt.Errorf("get request: %w", err)
	}
	return req, nil
}

func (s *requestService) checkEventExists(ctx context.Context, eventID string) (*domain.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NotFoundf("event %s not found", eventID)
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

func (s *requestService) checkUserExists(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NotFoundf("user %s not found", userID)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}
