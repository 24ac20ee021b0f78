package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/repair-sla-service/internal/domain"
	"github.com/spec-kit/repair-sla-service/internal/repository"
	apperrors "github.com/spec-kit/repair-sla-service/pkg/util/errorutil"
)

// InboxQuery filters the alert inbox.
type InboxQuery struct {
	UnreadOnly bool
	CaseID     *string
	Limit      int
	Offset     int
}

// AlertInboxService exposes SLA alerts to shop staff.
type AlertInboxService struct {
	notifications repository.NotificationRepository
}

// NewAlertInboxService creates the service.
func NewAlertInboxService(notifications repository.NotificationRepository) *AlertInboxService {
	return &AlertInboxService{notifications: notifications}
}

// List returns the shop's SLA alerts, newest first.
func (s *AlertInboxService) List(ctx context.Context, shopID string, q InboxQuery) ([]domain.Notification, error) {
	alertType := domain.NotificationTypeSLAAlert
	items, err := s.notifications.List(ctx, repository.NotificationFilter{
		ShopID:     shopID,
		CaseID:     q.CaseID,
		Type:       &alertType,
		UnreadOnly: q.UnreadOnly,
		Limit:      q.Limit,
		Offset:     q.Offset,
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return items, nil
}

// MarkRead acknowledges an alert on behalf of shop staff.
func (s *AlertInboxService) MarkRead(ctx context.Context, shopID, notificationID string) error {
	if err := s.notifications.MarkRead(ctx, shopID, notificationID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("notification", map[string]any{"notification_id": notificationID})
		}
		return apperrors.MapError(err)
	}
	return nil
}
