package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/repair-sla-service/internal/domain"
)

// NotificationFilter narrows inbox listings.
type NotificationFilter struct {
	ShopID     string
	CaseID     *string
	Type       *domain.NotificationType
	UnreadOnly bool
	Limit      int
	Offset     int
}

// NotificationRepository stores alert records.
type NotificationRepository interface {
	Create(ctx context.Context, notification *domain.Notification) error
	ExistsUnreadOnDay(ctx context.Context, caseID string, notificationType domain.NotificationType, day time.Time) (bool, error)
	List(ctx context.Context, filter NotificationFilter) ([]domain.Notification, error)
	MarkRead(ctx context.Context, shopID, id string) error
}

type notificationRepository struct {
	pool *pgxpool.Pool
}

// NewNotificationRepository instantiates repository.
func NewNotificationRepository(pool *pgxpool.Pool) NotificationRepository {
	return &notificationRepository{pool: pool}
}

func (r *notificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	const query = `
        INSERT INTO notifications (shop_id, case_id, type, severity, title, message, read, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at`
	createdAt := n.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	return r.pool.QueryRow(ctx, query,
		n.ShopID,
		n.CaseID,
		n.Type,
		n.Severity,
		n.Title,
		n.Message,
		n.Read,
		createdAt,
	).Scan(&n.ID, &n.CreatedAt)
}

// ExistsUnreadOnDay checks for an unread notification created on the UTC calendar day containing day.
func (r *notificationRepository) ExistsUnreadOnDay(ctx context.Context, caseID string, notificationType domain.NotificationType, day time.Time) (bool, error) {
	const query = `
        SELECT EXISTS (
            SELECT 1 FROM notifications
            WHERE case_id=$1 AND type=$2 AND read=FALSE AND created_at >= $3 AND created_at < $4
        )`
	start, end := UTCDayBounds(day)
	var exists bool
	if err := r.pool.QueryRow(ctx, query, caseID, notificationType, start, end).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *notificationRepository) List(ctx context.Context, filter NotificationFilter) ([]domain.Notification, error) {
	base := `SELECT id, shop_id, case_id, type, severity, title, message, read, created_at FROM notifications`
	clauses := []string{"shop_id=$1"}
	args := []any{filter.ShopID}

	if filter.CaseID != nil {
		args = append(args, *filter.CaseID)
		clauses = append(clauses, fmt.Sprintf("case_id=$%d", len(args)))
	}
	if filter.Type != nil {
		args = append(args, *filter.Type)
		clauses = append(clauses, fmt.Sprintf("type=$%d", len(args)))
	}
	if filter.UnreadOnly {
		clauses = append(clauses, "read=FALSE")
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Notification
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(
			&n.ID,
			&n.ShopID,
			&n.CaseID,
			&n.Type,
			&n.Severity,
			&n.Title,
			&n.Message,
			&n.Read,
			&n.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, n)
	}
	return result, rows.Err()
}

func (r *notificationRepository) MarkRead(ctx context.Context, shopID, id string) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE notifications SET read=TRUE WHERE shop_id=$1 AND id=$2`, shopID, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// UTCDayBounds returns the [start, end) of the UTC calendar day containing t.
func UTCDayBounds(t time.Time) (time.Time, time.Time) {
	u := t.UTC()
	start := time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, 1)
}
