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

// HistoryRepository owns the append-only assignment audit trail and the
// free-text comment notes. History rows are never updated after insert
// except for the sla_state patch applied by the SLA monitor.
type HistoryRepository struct {
	db *sql.DB
	tm *TransactionManager
}

// NewHistoryRepository creates a new HistoryRepository
func NewHistoryRepository(db *sql.DB, tm *TransactionManager) *HistoryRepository {
	return &HistoryRepository{db: db, tm: tm}
}

const historyColumns = "id, ticket_id, step_id, assigned_user_id, assigned_by_user_id, sla_state, label, comment, created_at"

// Insert appends one assignment record. ID and CreatedAt are filled in
// when unset.
func (r *HistoryRepository) Insert(ctx context.Context, h *models.AssignmentHistory) error {
	q := resolveQuerier(ctx, r.tm, r.db)
	if h.ID == "" {
		h.ID = utils.GenerateID()
	}
	if h.CreatedAt.IsZero() {
		h.CreatedAt = time.Now().UTC()
	}
	if h.SLAState == "" {
		h.SLAState = constants.SLAStateOnTime
	}

	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		constants.TableAssignmentHistory, historyColumns,
	)
	_, err := q.ExecContext(ctx, query,
		h.ID, h.TicketID, h.StepID, h.AssignedUserID, h.AssignedByUserID,
		h.SLAState, h.Label, h.Comment, h.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert assignment history: %w", err)
	}
	return nil
}

func scanHistory(row interface{ Scan(...interface{}) error }) (*models.AssignmentHistory, error) {
	h := &models.AssignmentHistory{}
	err := row.Scan(
		&h.ID, &h.TicketID, &h.StepID, &h.AssignedUserID, &h.AssignedByUserID,
		&h.SLAState, &h.Label, &h.Comment, &h.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return h, nil
}

// GetLatestForTicketStep returns the most recent history row for a
// (ticket, step) pair, or nil when the step was never entered.
func (r *HistoryRepository) GetLatestForTicketStep(ctx context.Context, ticketID, stepID string) (*models.AssignmentHistory, error) {
	q := resolveQuerier(ctx, r.tm, r.db)
	query := fmt.Sprintf(
		"SELECT %s FROM %s WHERE ticket_id = ? AND step_id = ? ORDER BY created_at DESC, id DESC LIMIT 1",
		historyColumns, constants.TableAssignmentHistory,
	)

	h, err := scanHistory(q.QueryRowContext(ctx, query, ticketID, stepID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load history for ticket %s step %s: %w", ticketID, stepID, err)
	}
	return h, nil
}

// UpdateSLAState patches the sla_state of one history row. The single
// sanctioned mutation of the audit trail.
func (r *HistoryRepository) UpdateSLAState(ctx context.Context, historyID, state string) error {
	q := resolveQuerier(ctx, r.tm, r.db)
	query := fmt.Sprintf("UPDATE %s SET sla_state = ? WHERE id = ?", constants.TableAssignmentHistory)
	if _, err := q.ExecContext(ctx, query, state, historyID); err != nil {
		return fmt.Errorf("failed to update sla_state for history %s: %w", historyID, err)
	}
	return nil
}

// ListByTicket returns a ticket's full audit trail, oldest first.
func (r *HistoryRepository) ListByTicket(ctx context.Context, ticketID string) ([]*models.AssignmentHistory, error) {
	q := resolveQuerier(ctx, r.tm, r.db)
	query := fmt.Sprintf(
		"SELECT %s FROM %s WHERE ticket_id = ? ORDER BY created_at ASC, id ASC",
		historyColumns, constants.TableAssignmentHistory,
	)

	rows, err := q.QueryContext(ctx, query, ticketID)
	if err != nil {
		return nil, fmt.Errorf("failed to list history for ticket %s: %w", ticketID, err)
	}
	defer rows.Close()

	var entries []*models.AssignmentHistory
	for rows.Next() {
		h, err := scanHistory(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, h)
	}
	return entries, rows.Err()
}

// InsertComment records a free-text audit note tied to the actor.
func (r *HistoryRepository) InsertComment(ctx context.Context, c *models.TicketComment) error {
	q := resolveQuerier(ctx, r.tm, r.db)
	if c.ID == "" {
		c.ID = utils.GenerateID()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}

	query := fmt.Sprintf(
		"INSERT INTO %s (id, ticket_id, author_id, body, created_at) VALUES (?, ?, ?, ?, ?)",
		constants.TableTicketComment,
	)
	if _, err := q.ExecContext(ctx, query, c.ID, c.TicketID, c.AuthorID, c.Body, c.CreatedAt); err != nil {
		return fmt.Errorf("failed to insert ticket comment: %w", err)
	}
	return nil
}
