package handlers

import (
	"context"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/spec-kit/repair-sla-service/internal/api/dto"
	"github.com/spec-kit/repair-sla-service/internal/domain"
	"github.com/spec-kit/repair-sla-service/internal/service"
	apperrors "github.com/spec-kit/repair-sla-service/pkg/util/errorutil"
)

const maxPageSize = 100

// AlertInbox lists and acknowledges SLA alerts.
type AlertInbox interface {
	List(ctx context.Context, shopID string, q service.InboxQuery) ([]domain.Notification, error)
	MarkRead(ctx context.Context, shopID, notificationID string) error
}

// NotificationsHandler manages the shop alert inbox.
type NotificationsHandler struct {
	inbox AlertInbox
}

// NewNotificationsHandler constructs handler.
func NewNotificationsHandler(inbox AlertInbox) *NotificationsHandler {
	return &NotificationsHandler{inbox: inbox}
}

// List GET /shops/:shopID/notifications.
func (h *NotificationsHandler) List(c *fiber.Ctx) error {
	shopID, err := uuidParam(c, "shopID", "shop")
	if err != nil {
		return err
	}
	q, err := parseInboxQuery(c)
	if err != nil {
		return err
	}
	items, err := h.inbox.List(c.UserContext(), shopID, q)
	if err != nil {
		return err
	}
	resp := make([]dto.NotificationResponse, 0, len(items))
	for _, n := range items {
		resp = append(resp, dto.NewNotificationResponse(n))
	}
	return c.JSON(fiber.Map{"data": resp})
}

// MarkRead POST /shops/:shopID/notifications/:id/read.
func (h *NotificationsHandler) MarkRead(c *fiber.Ctx) error {
	shopID, err := uuidParam(c, "shopID", "shop")
	if err != nil {
		return err
	}
	notificationID, err := uuidParam(c, "id", "notification")
	if err != nil {
		return err
	}
	if err := h.inbox.MarkRead(c.UserContext(), shopID, notificationID); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func parseInboxQuery(c *fiber.Ctx) (service.InboxQuery, error) {
	q := service.InboxQuery{Limit: 50}
	if raw := c.Query("unread"); raw != "" {
		unread, err := strconv.ParseBool(raw)
		if err != nil {
			return q, apperrors.NewValidationError("unread must be a boolean", nil)
		}
		q.UnreadOnly = unread
	}
	if raw := c.Query("case_id"); raw != "" {
		caseID, err := uuid.Parse(raw)
		if err != nil {
			return q, apperrors.NewValidationError("case_id must be a UUID", nil)
		}
		id := caseID.String()
		q.CaseID = &id
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			return q, apperrors.NewValidationError("limit must be a positive integer", nil)
		}
		if limit > maxPageSize {
			limit = maxPageSize
		}
		q.Limit = limit
	}
	if raw := c.Query("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			return q, apperrors.NewValidationError("offset must be a non-negative integer", nil)
		}
		q.Offset = offset
	}
	return q, nil
}
