package services

import (
	"context"
	"database/sql"

	"github.com/4lexanderpardo09/help-desk-back-sub000/internal/domain/models"
	"github.com/4lexanderpardo09/help-desk-back-sub000/internal/infrastructure/persistence"
	"github.com/4lexanderpardo09/help-desk-back-sub000/pkg/constants"
)

// Store contracts the engine depends on. Satisfied by the persistence
// repositories; mocked in unit tests.

// TicketStore persists tickets and their assignee lists.
type TicketStore interface {
	GetByID(ctx context.Context, id string) (*models.Ticket, error)
	GetByIDForUpdate(ctx context.Context, id string) (*models.Ticket, error)
	UpdateStep(ctx context.Context, ticketID string, stepID, approverID *string, status string) error
	ReplaceAssignees(ctx context.Context, ticketID string, userIDs []string) error
	ListInProgress(ctx context.Context) ([]*models.Ticket, error)
}

// HistoryStore owns the assignment audit trail and comment notes.
type HistoryStore interface {
	Insert(ctx context.Context, h *models.AssignmentHistory) error
	InsertComment(ctx context.Context, c *models.TicketComment) error
	GetLatestForTicketStep(ctx context.Context, ticketID, stepID string) (*models.AssignmentHistory, error)
	UpdateSLAState(ctx context.Context, historyID, state string) error
	ListByTicket(ctx context.Context, ticketID string) ([]*models.AssignmentHistory, error)
}

// ParallelTaskStore persists parallel-step signer bookkeeping.
type ParallelTaskStore interface {
	InsertIdempotent(ctx context.Context, t *models.ParallelTask) error
	GetPendingForActor(ctx context.Context, ticketID, stepID, userID string) (*models.ParallelTask, error)
	CountPending(ctx context.Context, ticketID, stepID string) (int, error)
	Complete(ctx context.Context, taskID string, artifactPath *string) error
	ListByTicketStep(ctx context.Context, ticketID, stepID string) ([]*models.ParallelTask, error)
}

// UserDirectory reads users and the role hierarchy.
type UserDirectory interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetUsersByRole(ctx context.Context, roleID string, companyID, regionID *string) ([]*models.User, error)
	GetAllRoles(ctx context.Context) ([]*models.Role, error)
}

// TxRunner runs a function inside one atomic unit of work. All engine
// mutations for a single startFlow/transition call go through it.
type TxRunner interface {
	RunInTicketTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ticketTxRunner backs TxRunner with the deadlock-retrying
// TransactionManager, injecting the transaction into the context so the
// repositories join it.
type ticketTxRunner struct {
	tm *persistence.TransactionManager
}

// NewTicketTxRunner creates a TxRunner over the given TransactionManager.
func NewTicketTxRunner(tm *persistence.TransactionManager) TxRunner {
	return &ticketTxRunner{tm: tm}
}

func (r *ticketTxRunner) RunInTicketTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.tm.WithRetry(func(tx *sql.Tx) error {
		return fn(r.tm.InjectTx(ctx, tx))
	}, constants.TxMaxRetries)
}
