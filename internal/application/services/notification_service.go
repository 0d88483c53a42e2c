package services

import (
	"context"
	"fmt"
	"log"

	"github.com/4lexanderpardo09/help-desk-back-sub000/internal/domain/models"
	"github.com/4lexanderpardo09/help-desk-back-sub000/internal/infrastructure/persistence"
	"github.com/4lexanderpardo09/help-desk-back-sub000/pkg/constants"
)

// NotificationService persists in-app notification rows and serves them
// to users. It backs the engine's Notifier port; outbound delivery
// (email/push) would hang off the same calls.
type NotificationService struct {
	repo *persistence.NotificationRepository
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(repo *persistence.NotificationRepository) *NotificationService {
	return &NotificationService{repo: repo}
}

// NotifyAssignment records an assignment notice for the user.
func (s *NotificationService) NotifyAssignment(ctx context.Context, ticket *models.Ticket, user *models.User) error {
	n := &models.Notification{
		RecipientID: user.ID,
		Title:       "Ticket assigned to you",
		Body:        fmt.Sprintf("Ticket %q is waiting for your action", ticket.Subject),
		Kind:        constants.NotificationKindAssignment,
	}
	if err := s.repo.Insert(ctx, n); err != nil {
		return err
	}
	log.Printf("🔔 Assignment notice for %s on ticket %s", user.ID, ticket.ID)
	return nil
}

// NotifyOverdue records an overdue notice for the user.
func (s *NotificationService) NotifyOverdue(ctx context.Context, userID string, payload map[string]interface{}) error {
	body := "A ticket assigned to you has exceeded its allotted time"
	if name, ok := payload["step_name"].(string); ok && name != "" {
		body = fmt.Sprintf("Step %q has exceeded its allotted time", name)
	}

	n := &models.Notification{
		RecipientID: userID,
		Title:       "Ticket overdue",
		Body:        body,
		Kind:        constants.NotificationKindOverdue,
	}
	if err := s.repo.Insert(ctx, n); err != nil {
		return err
	}
	log.Printf("🔔 Overdue notice for %s", userID)
	return nil
}

// GetMyNotifications returns unread notifications for the user
func (s *NotificationService) GetMyNotifications(ctx context.Context, userID string) ([]*models.Notification, error) {
	return s.repo.ListUnreadByRecipient(ctx, userID, 20)
}

// MarkAsRead marks a notification as read
func (s *NotificationService) MarkAsRead(ctx context.Context, id, userID string) error {
	return s.repo.MarkRead(ctx, id, userID)
}
