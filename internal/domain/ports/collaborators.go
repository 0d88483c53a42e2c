package ports

import (
	"context"

	"github.com/4lexanderpardo09/help-desk-back-sub000/internal/domain/models"
)

// Notifier delivers assignment and overdue notices. Fire-and-forget from
// the engine's viewpoint: failures are logged by the caller, never
// propagated into a committed transition.
type Notifier interface {
	NotifyAssignment(ctx context.Context, ticket *models.Ticket, user *models.User) error
	NotifyOverdue(ctx context.Context, userID string, payload map[string]interface{}) error
}

// DocumentStamper stamps a step's signature artifact onto the ticket's
// document. Called only after a transition commits; errors are non-fatal.
type DocumentStamper interface {
	StampStepArtifact(ctx context.Context, documentPath, stepID, ticketID string, signerID *string) ([]byte, error)
}
