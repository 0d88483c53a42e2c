package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/4lexanderpardo09/help-desk-back-sub000/internal/domain/models"
	"github.com/4lexanderpardo09/help-desk-back-sub000/pkg/constants"
)

// TicketRepository persists tickets and their ordered assignee lists.
// The ticket row is the engine's sole lock boundary: GetByIDForUpdate
// takes the row lock that serializes concurrent transitions.
type TicketRepository struct {
	db *sql.DB
	tm *TransactionManager
}

// NewTicketRepository creates a new TicketRepository
func NewTicketRepository(db *sql.DB, tm *TransactionManager) *TicketRepository {
	return &TicketRepository{db: db, tm: tm}
}

const ticketColumns = "id, category_id, creator_id, region_id, company_id, subject, document_path, current_step_id, approver_id, status, created_at, updated_at"

func scanTicket(row interface{ Scan(...interface{}) error }) (*models.Ticket, error) {
	t := &models.Ticket{}
	err := row.Scan(
		&t.ID, &t.CategoryID, &t.CreatorID, &t.RegionID, &t.CompanyID,
		&t.Subject, &t.DocumentPath, &t.CurrentStepID, &t.ApproverID,
		&t.Status, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Create inserts a new ticket in the open state, before any flow starts.
func (r *TicketRepository) Create(ctx context.Context, t *models.Ticket) error {
	q := resolveQuerier(ctx, r.tm, r.db)
	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now
	if t.Status == "" {
		t.Status = constants.TicketStatusOpen
	}

	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		constants.TableTicket, ticketColumns,
	)
	_, err := q.ExecContext(ctx, query,
		t.ID, t.CategoryID, t.CreatorID, t.RegionID, t.CompanyID,
		t.Subject, t.DocumentPath, t.CurrentStepID, t.ApproverID,
		t.Status, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create ticket: %w", err)
	}
	return nil
}

// GetByID loads a ticket with its assignee list.
func (r *TicketRepository) GetByID(ctx context.Context, id string) (*models.Ticket, error) {
	return r.getByID(ctx, id, false)
}

// GetByIDForUpdate loads a ticket with a FOR UPDATE row lock. Must run
// inside a transaction; concurrent transitions on the same ticket block
// here until the holder commits.
func (r *TicketRepository) GetByIDForUpdate(ctx context.Context, id string) (*models.Ticket, error) {
	return r.getByID(ctx, id, true)
}

func (r *TicketRepository) getByID(ctx context.Context, id string, forUpdate bool) (*models.Ticket, error) {
	q := resolveQuerier(ctx, r.tm, r.db)
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = ?", ticketColumns, constants.TableTicket)
	if forUpdate {
		query += " FOR UPDATE"
	}

	ticket, err := scanTicket(q.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load ticket %s: %w", id, err)
	}

	ticket.AssigneeIDs, err = r.getAssignees(ctx, id)
	if err != nil {
		return nil, err
	}
	return ticket, nil
}

func (r *TicketRepository) getAssignees(ctx context.Context, ticketID string) ([]string, error) {
	q := resolveQuerier(ctx, r.tm, r.db)
	query := fmt.Sprintf(
		"SELECT user_id FROM %s WHERE ticket_id = ? ORDER BY position ASC",
		constants.TableTicketAssignee,
	)

	rows, err := q.QueryContext(ctx, query, ticketID)
	if err != nil {
		return nil, fmt.Errorf("failed to load assignees for ticket %s: %w", ticketID, err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// UpdateStep moves the ticket to a new step, replacing approver and
// status together so the row never holds a half-applied transition.
func (r *TicketRepository) UpdateStep(ctx context.Context, ticketID string, stepID, approverID *string, status string) error {
	q := resolveQuerier(ctx, r.tm, r.db)
	query := fmt.Sprintf(
		"UPDATE %s SET current_step_id = ?, approver_id = ?, status = ?, updated_at = ? WHERE id = ?",
		constants.TableTicket,
	)
	_, err := q.ExecContext(ctx, query, stepID, approverID, status, time.Now().UTC(), ticketID)
	if err != nil {
		return fmt.Errorf("failed to update ticket %s step: %w", ticketID, err)
	}
	return nil
}

// ReplaceAssignees swaps the ticket's assignee list atomically within the
// surrounding transaction. An empty list is valid: it is the pool state
// awaiting manual selection.
func (r *TicketRepository) ReplaceAssignees(ctx context.Context, ticketID string, userIDs []string) error {
	q := resolveQuerier(ctx, r.tm, r.db)

	del := fmt.Sprintf("DELETE FROM %s WHERE ticket_id = ?", constants.TableTicketAssignee)
	if _, err := q.ExecContext(ctx, del, ticketID); err != nil {
		return fmt.Errorf("failed to clear assignees for ticket %s: %w", ticketID, err)
	}

	ins := fmt.Sprintf(
		"INSERT INTO %s (ticket_id, user_id, position) VALUES (?, ?, ?)",
		constants.TableTicketAssignee,
	)
	for i, userID := range userIDs {
		if _, err := q.ExecContext(ctx, ins, ticketID, userID, i); err != nil {
			return fmt.Errorf("failed to assign user %s to ticket %s: %w", userID, ticketID, err)
		}
	}
	return nil
}

// ListInProgress returns tickets that are inside a flow (current step
// set, not finished). Used by the SLA monitor sweep.
func (r *TicketRepository) ListInProgress(ctx context.Context) ([]*models.Ticket, error) {
	q := resolveQuerier(ctx, r.tm, r.db)
	query := fmt.Sprintf(
		"SELECT %s FROM %s WHERE current_step_id IS NOT NULL AND status != ?",
		ticketColumns, constants.TableTicket,
	)

	rows, err := q.QueryContext(ctx, query, constants.TicketStatusFinished)
	if err != nil {
		return nil, fmt.Errorf("failed to list in-progress tickets: %w", err)
	}
	defer rows.Close()

	var tickets []*models.Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, t := range tickets {
		t.AssigneeIDs, err = r.getAssignees(ctx, t.ID)
		if err != nil {
			return nil, err
		}
	}
	return tickets, nil
}
