package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/4lexanderpardo09/help-desk-back-sub000/internal/domain/models"
	"github.com/4lexanderpardo09/help-desk-back-sub000/pkg/constants"
	"github.com/4lexanderpardo09/help-desk-back-sub000/pkg/utils"
)

// NotificationRepository persists in-app notification rows.
type NotificationRepository struct {
	db *sql.DB
	tm *TransactionManager
}

// NewNotificationRepository creates a new NotificationRepository
func NewNotificationRepository(db *sql.DB, tm *TransactionManager) *NotificationRepository {
	return &NotificationRepository{db: db, tm: tm}
}

// Insert stores a notification row.
func (r *NotificationRepository) Insert(ctx context.Context, n *models.Notification) error {
	q := resolveQuerier(ctx, r.tm, r.db)
	if n.ID == "" {
		n.ID = utils.GenerateID()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}

	query := fmt.Sprintf(
		"INSERT INTO %s (id, recipient_id, title, body, kind, is_read, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		constants.TableNotification,
	)
	if _, err := q.ExecContext(ctx, query, n.ID, n.RecipientID, n.Title, n.Body, n.Kind, false, n.CreatedAt); err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}
	return nil
}

// ListUnreadByRecipient returns the recipient's unread notifications,
// newest first, capped at limit.
func (r *NotificationRepository) ListUnreadByRecipient(ctx context.Context, recipientID string, limit int) ([]*models.Notification, error) {
	q := resolveQuerier(ctx, r.tm, r.db)
	query := fmt.Sprintf(
		"SELECT id, recipient_id, title, body, kind, is_read, created_at FROM %s WHERE recipient_id = ? AND is_read = false ORDER BY created_at DESC LIMIT ?",
		constants.TableNotification,
	)

	rows, err := q.QueryContext(ctx, query, recipientID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*models.Notification
	for rows.Next() {
		n := &models.Notification{}
		if err := rows.Scan(&n.ID, &n.RecipientID, &n.Title, &n.Body, &n.Kind, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

// MarkRead flags a notification as read for its recipient.
func (r *NotificationRepository) MarkRead(ctx context.Context, id, recipientID string) error {
	q := resolveQuerier(ctx, r.tm, r.db)
	query := fmt.Sprintf("UPDATE %s SET is_read = true WHERE id = ? AND recipient_id = ?", constants.TableNotification)

	res, err := q.ExecContext(ctx, query, id, recipientID)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
