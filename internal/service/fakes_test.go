package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/repair-sla-service/internal/domain"
	"github.com/spec-kit/repair-sla-service/internal/repository"
)

var errStoreDown = errors.New("store down")

type mockShopRepository struct {
	shops []domain.Shop
	err   error
}

func (m *mockShopRepository) ListAlertEnabled(ctx context.Context) ([]domain.Shop, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.shops, nil
}

type mockPolicyRepository struct {
	mu       sync.Mutex
	policies map[string][]domain.SLAPolicy
	failFor  map[string]bool
	calls    map[string]int
}

func newMockPolicyRepository() *mockPolicyRepository {
	return &mockPolicyRepository{
		policies: make(map[string][]domain.SLAPolicy),
		failFor:  make(map[string]bool),
		calls:    make(map[string]int),
	}
}

func (m *mockPolicyRepository) ListByShop(ctx context.Context, shopID string) ([]domain.SLAPolicy, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[shopID]++
	if m.failFor[shopID] {
		return nil, errStoreDown
	}
	return m.policies[shopID], nil
}

func (m *mockPolicyRepository) GetByKey(ctx context.Context, shopID string, typeKey domain.CaseTypeKey) (*domain.SLAPolicy, error) {
	for _, p := range m.policies[shopID] {
		if p.TypeKey == typeKey {
			p := p
			return &p, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type mockStatusRepository struct {
	mu       sync.Mutex
	statuses map[string][]domain.StatusDefinition
	calls    map[string]int
}

func newMockStatusRepository() *mockStatusRepository {
	return &mockStatusRepository{
		statuses: make(map[string][]domain.StatusDefinition),
		calls:    make(map[string]int),
	}
}

func (m *mockStatusRepository) ListByShop(ctx context.Context, shopID string) ([]domain.StatusDefinition, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[shopID]++
	return m.statuses[shopID], nil
}

func (m *mockStatusRepository) GetByKey(ctx context.Context, shopID, statusKey string) (*domain.StatusDefinition, error) {
	for _, s := range m.statuses[shopID] {
		if s.Key == statusKey {
			s := s.Classify()
			return &s, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type mockCaseRepository struct {
	mu       sync.Mutex
	cases    map[string][]domain.RepairCase
	failFor  map[string]bool
	excluded map[string][]string
}

func newMockCaseRepository() *mockCaseRepository {
	return &mockCaseRepository{
		cases:    make(map[string][]domain.RepairCase),
		failFor:  make(map[string]bool),
		excluded: make(map[string][]string),
	}
}

func (m *mockCaseRepository) ListActive(ctx context.Context, shopID string, excludedStatuses []string) ([]domain.RepairCase, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.excluded[shopID] = excludedStatuses
	if m.failFor[shopID] {
		return nil, errStoreDown
	}
	skip := make(map[string]bool, len(excludedStatuses))
	for _, s := range excludedStatuses {
		skip[s] = true
	}
	var out []domain.RepairCase
	for _, c := range m.cases[shopID] {
		if !skip[c.StatusKey] {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockCaseRepository) GetByID(ctx context.Context, shopID, caseID string) (*domain.RepairCase, error) {
	for _, c := range m.cases[shopID] {
		if c.ID == caseID {
			c := c
			return &c, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type mockNotificationRepository struct {
	mu            sync.Mutex
	notifications []domain.Notification
	nextID        int
	existsErrFor  map[string]bool
	createErrFor  map[string]bool
}

func newMockNotificationRepository() *mockNotificationRepository {
	return &mockNotificationRepository{
		existsErrFor: make(map[string]bool),
		createErrFor: make(map[string]bool),
		nextID:       1,
	}
}

func (m *mockNotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErrFor[n.CaseID] {
		return errStoreDown
	}
	n.ID = fmt.Sprintf("NTF-%03d", m.nextID)
	m.nextID++
	m.notifications = append(m.notifications, *n)
	return nil
}

func (m *mockNotificationRepository) ExistsUnreadOnDay(ctx context.Context, caseID string, notificationType domain.NotificationType, day time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.existsErrFor[caseID] {
		return false, errStoreDown
	}
	start, end := repository.UTCDayBounds(day)
	for _, n := range m.notifications {
		if n.CaseID == caseID && n.Type == notificationType && !n.Read &&
			!n.CreatedAt.Before(start) && n.CreatedAt.Before(end) {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockNotificationRepository) List(ctx context.Context, filter repository.NotificationFilter) ([]domain.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Notification
	for _, n := range m.notifications {
		if n.ShopID != filter.ShopID {
			continue
		}
		if filter.UnreadOnly && n.Read {
			continue
		}
		if filter.CaseID != nil && n.CaseID != *filter.CaseID {
			continue
		}
		if filter.Type != nil && n.Type != *filter.Type {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

func (m *mockNotificationRepository) MarkRead(ctx context.Context, shopID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.notifications {
		if m.notifications[i].ID == id && m.notifications[i].ShopID == shopID {
			m.notifications[i].Read = true
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (m *mockNotificationRepository) forCase(caseID string) []domain.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Notification
	for _, n := range m.notifications {
		if n.CaseID == caseID {
			out = append(out, n)
		}
	}
	return out
}

type mockClaimRepository struct {
	mu       sync.Mutex
	claimed  map[string]bool
	err      error
	released []string
}

func newMockClaimRepository() *mockClaimRepository {
	return &mockClaimRepository{claimed: make(map[string]bool)}
}

func (m *mockClaimRepository) Claim(ctx context.Context, caseID string, day time.Time, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	key := repository.AlertClaimKey(caseID, day)
	if m.claimed[key] {
		return false, nil
	}
	m.claimed[key] = true
	return true, nil
}

func (m *mockClaimRepository) Release(ctx context.Context, caseID string, day time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := repository.AlertClaimKey(caseID, day)
	delete(m.claimed, key)
	m.released = append(m.released, key)
	return nil
}
