package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"eventboard/internal/domain"
)

// In-memory repository fakes shared by the service tests. The request fake
// reproduces the store-side capacity guards so admission tests exercise the
// same conflict paths as the real repository.

type mockEventRepo struct {
	events map[string]*domain.Event
	seq    int
	saved  int
	err    error
}

func newMockEventRepo(events ...*domain.Event) *mockEventRepo {
	m := &mockEventRepo{events: make(map[string]*domain.Event)}
	for _, e := range events {
		m.events[e.ID] = e
	}
	return m
}

func (m *mockEventRepo) Create(ctx context.Context, event *domain.Event) error {
	if m.err != nil {
		return m.err
	}
	m.seq++
	event.ID = fmt.Sprintf("ev-%d", m.seq)
	m.events[event.ID] = event
	return nil
}

func (m *mockEventRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	if m.err != nil {
		return nil, m.err
	}
	event, ok := m.events[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return event, nil
}

func (m *mockEventRepo) Save(ctx context.Context, event *domain.Event) error {
	if m.err != nil {
		return m.err
	}
	if _, ok := m.events[event.ID]; !ok {
		return domain.ErrNotFound
	}
	m.events[event.ID] = event
	m.saved++
	return nil
}

func (m *mockEventRepo) Delete(ctx context.Context, id string) error {
	delete(m.events, id)
	return nil
}

func (m *mockEventRepo) ListByInitiator(ctx context.Context, initiatorID string, p domain.PaginationParams) ([]*domain.Event, error) {
	var out []*domain.Event
	for _, e := range m.events {
		if e.InitiatorID == initiatorID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockEventRepo) ListAll(ctx context.Context, p domain.PaginationParams) ([]*domain.Event, error) {
	var out []*domain.Event
	for _, e := range m.events {
		out = append(out, e)
	}
	return out, nil
}

func (m *mockEventRepo) FindByFilter(ctx context.Context, f domain.EventFilter) ([]*domain.Event, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []*domain.Event
	for _, e := range m.events {
		if !matchesFilter(e, f) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func matchesFilter(e *domain.Event, f domain.EventFilter) bool {
	if len(f.States) > 0 {
		ok := false
		for _, st := range f.States {
			if e.State == st {
				ok = true
			}
		}
		if !ok {
			return false
		}
	}
	if len(f.CategoryIDs) > 0 {
		ok := false
		for _, id := range f.CategoryIDs {
			if e.CategoryID == id {
				ok = true
			}
		}
		if !ok {
			return false
		}
	}
	if f.Paid != nil && e.Paid != *f.Paid {
		return false
	}
	if f.Text != "" &&
		!strings.Contains(strings.ToLower(e.Annotation), f.Text) &&
		!strings.Contains(strings.ToLower(e.Description), f.Text) {
		return false
	}
	if e.EventDate.Before(f.RangeStart) || e.EventDate.After(f.RangeEnd) {
		return false
	}
	return true
}

func (m *mockEventRepo) ListByIDs(ctx context.Context, ids []string) ([]*domain.Event, error) {
	var out []*domain.Event
	for _, id := range ids {
		if e, ok := m.events[id]; ok {
			out = append(out, e)
		}
	}
	return out, nil
}

type mockRequestRepo struct {
	requests map[string]*domain.Request
	events   map[string]*domain.Event
	seq      int
	err      error
}

func newMockRequestRepo(eventRepo *mockEventRepo) *mockRequestRepo {
	return &mockRequestRepo{
		requests: make(map[string]*domain.Request),
		events:   eventRepo.events,
	}
}

func (m *mockRequestRepo) add(req *domain.Request) *domain.Request {
	m.seq++
	req.ID = fmt.Sprintf("rq-%d", m.seq)
	m.requests[req.ID] = req
	return req
}

func (m *mockRequestRepo) Create(ctx context.Context, req *domain.Request) error {
	if m.err != nil {
		return m.err
	}
	m.add(req)
	return nil
}

func (m *mockRequestRepo) CreateConfirmed(ctx context.Context, req *domain.Request) error {
	if m.err != nil {
		return m.err
	}
	event := m.events[req.EventID]
	if event.ParticipantLimit > 0 && event.ConfirmedRequests >= event.ParticipantLimit {
		return domain.ErrConflict
	}
	event.ConfirmedRequests++
	m.add(req)
	return nil
}

func (m *mockRequestRepo) GetByID(ctx context.Context, id string) (*domain.Request, error) {
	req, ok := m.requests[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return req, nil
}

func (m *mockRequestRepo) Cancel(ctx context.Context, req *domain.Request, releaseCapacity bool) error {
	if m.err != nil {
		return m.err
	}
	m.requests[req.ID] = req
	if releaseCapacity {
		if event, ok := m.events[req.EventID]; ok && event.ConfirmedRequests > 0 {
			event.ConfirmedRequests--
		}
	}
	return nil
}

func (m *mockRequestRepo) ApplyDecision(ctx context.Context, eventID string, confirmed, rejected []*domain.Request, confirmedDelta int) error {
	if m.err != nil {
		return m.err
	}
	event := m.events[eventID]
	if event.ParticipantLimit > 0 && event.ConfirmedRequests+confirmedDelta > event.ParticipantLimit {
		return domain.ErrConflict
	}
	event.ConfirmedRequests += confirmedDelta
	return nil
}

func (m *mockRequestRepo) ListByRequester(ctx context.Context, requesterID string) ([]*domain.Request, error) {
	var out []*domain.Request
	for _, req := range m.requests {
		if req.RequesterID == requesterID {
			out = append(out, req)
		}
	}
	return out, nil
}

func (m *mockRequestRepo) GetActiveByRequesterAndEvent(ctx context.Context, requesterID, eventID string) (*domain.Request, error) {
	for _, req := range m.requests {
		if req.RequesterID == requesterID && req.EventID == eventID && req.Status != domain.RequestCanceled {
			return req, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockRequestRepo) ListByIDs(ctx context.Context, ids []string) ([]*domain.Request, error) {
	var out []*domain.Request
	for _, id := range ids {
		if req, ok := m.requests[id]; ok {
			out = append(out, req)
		}
	}
	return out, nil
}

func (m *mockRequestRepo) ListByEvent(ctx context.Context, eventID string) ([]*domain.Request, error) {
	var out []*domain.Request
	for _, req := range m.requests {
		if req.EventID == eventID {
			out = append(out, req)
		}
	}
	return out, nil
}

func (m *mockRequestRepo) CountByEventsAndStatus(ctx context.Context, eventIDs []string, status domain.RequestStatus) (map[string]int, error) {
	counts := make(map[string]int)
	for _, req := range m.requests {
		if req.Status != status {
			continue
		}
		for _, id := range eventIDs {
			if req.EventID == id {
				counts[id]++
			}
		}
	}
	return counts, nil
}

type mockUserRepo struct {
	users map[string]*domain.User
}

func newMockUserRepo(users ...*domain.User) *mockUserRepo {
	m := &mockUserRepo{users: make(map[string]*domain.User)}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

func (m *mockUserRepo) Create(ctx context.Context, user *domain.User) error {
	user.ID = fmt.Sprintf("us-%d", len(m.users)+1)
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return user, nil
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockUserRepo) List(ctx context.Context, ids []string, p domain.PaginationParams) ([]*domain.User, error) {
	var out []*domain.User
	for _, u := range m.users {
		out = append(out, u)
	}
	return out, nil
}

func (m *mockUserRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.users[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.users, id)
	return nil
}

type mockCategoryRepo struct {
	categories map[string]*domain.Category
}

func newMockCategoryRepo(categories ...*domain.Category) *mockCategoryRepo {
	m := &mockCategoryRepo{categories: make(map[string]*domain.Category)}
	for _, c := range categories {
		m.categories[c.ID] = c
	}
	return m
}

func (m *mockCategoryRepo) Create(ctx context.Context, c *domain.Category) error {
	c.ID = fmt.Sprintf("ct-%d", len(m.categories)+1)
	m.categories[c.ID] = c
	return nil
}

func (m *mockCategoryRepo) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	c, ok := m.categories[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return c, nil
}

func (m *mockCategoryRepo) GetByName(ctx context.Context, name string) (*domain.Category, error) {
	for _, c := range m.categories {
		if c.Name == name {
			return c, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockCategoryRepo) Update(ctx context.Context, c *domain.Category) error {
	m.categories[c.ID] = c
	return nil
}

func (m *mockCategoryRepo) Delete(ctx context.Context, id string) error {
	delete(m.categories, id)
	return nil
}

func (m *mockCategoryRepo) List(ctx context.Context, p domain.PaginationParams) ([]*domain.Category, error) {
	var out []*domain.Category
	for _, c := range m.categories {
		out = append(out, c)
	}
	return out, nil
}

type mockStatsClient struct {
	hits  []domain.Hit
	stats []domain.ViewStats
	err   error
}

func (m *mockStatsClient) RecordHit(ctx context.Context, app, uri, ip string, ts time.Time) error {
	if m.err != nil {
		return m.err
	}
	m.hits = append(m.hits, domain.Hit{App: app, URI: uri, IP: ip, Timestamp: ts})
	return nil
}

func (m *mockStatsClient) ViewCounts(ctx context.Context, start, end time.Time, uris []string, unique bool) ([]domain.ViewStats, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.stats, nil
}

type mockNotifier struct {
	received  int
	decided   int
	moderated int
}

func (m *mockNotifier) SendRequestReceived(ctx context.Context, data *domain.RequestReceivedEmailData) error {
	m.received++
	return nil
}

func (m *mockNotifier) SendRequestDecided(ctx context.Context, data *domain.RequestDecidedEmailData) error {
	m.decided++
	return nil
}

func (m *mockNotifier) SendEventModerated(ctx context.Context, data *domain.EventModeratedEmailData) error {
	m.moderated++
	return nil
}
