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

// ParallelTaskRepository persists the per-signer bookkeeping of parallel
// steps. Rows are unique on (ticket_id, step_id, user_id) so re-running
// task creation can never duplicate a signer.
type ParallelTaskRepository struct {
	db *sql.DB
	tm *TransactionManager
}

// NewParallelTaskRepository creates a new ParallelTaskRepository
func NewParallelTaskRepository(db *sql.DB, tm *TransactionManager) *ParallelTaskRepository {
	return &ParallelTaskRepository{db: db, tm: tm}
}

const taskColumns = "id, ticket_id, step_id, user_id, role_id, state, artifact_path, signed_at, created_at"

// InsertIdempotent creates a pending task for (ticket, step, user) unless
// one already exists. The ON DUPLICATE KEY no-op keeps retried
// transitions from duplicating rows.
func (r *ParallelTaskRepository) InsertIdempotent(ctx context.Context, t *models.ParallelTask) error {
	q := resolveQuerier(ctx, r.tm, r.db)
	if t.ID == "" {
		t.ID = utils.GenerateID()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	if t.State == "" {
		t.State = constants.TaskStatePending
	}

	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?) ON DUPLICATE KEY UPDATE id = id",
		constants.TableParallelTask, taskColumns,
	)
	_, err := q.ExecContext(ctx, query,
		t.ID, t.TicketID, t.StepID, t.UserID, t.RoleID,
		t.State, t.ArtifactPath, t.SignedAt, t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert parallel task: %w", err)
	}
	return nil
}

func scanTask(row interface{ Scan(...interface{}) error }) (*models.ParallelTask, error) {
	t := &models.ParallelTask{}
	err := row.Scan(
		&t.ID, &t.TicketID, &t.StepID, &t.UserID, &t.RoleID,
		&t.State, &t.ArtifactPath, &t.SignedAt, &t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// GetPendingForActor returns the actor's pending task on a step, or nil.
func (r *ParallelTaskRepository) GetPendingForActor(ctx context.Context, ticketID, stepID, userID string) (*models.ParallelTask, error) {
	q := resolveQuerier(ctx, r.tm, r.db)
	query := fmt.Sprintf(
		"SELECT %s FROM %s WHERE ticket_id = ? AND step_id = ? AND user_id = ? AND state = ? LIMIT 1",
		taskColumns, constants.TableParallelTask,
	)

	task, err := scanTask(q.QueryRowContext(ctx, query, ticketID, stepID, userID, constants.TaskStatePending))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load pending task for user %s: %w", userID, err)
	}
	return task, nil
}

// CountPending returns the number of pending tasks gating the step's
// outward edge. Must be re-evaluated inside the ticket's transaction by
// the last signer.
func (r *ParallelTaskRepository) CountPending(ctx context.Context, ticketID, stepID string) (int, error) {
	q := resolveQuerier(ctx, r.tm, r.db)
	query := fmt.Sprintf(
		"SELECT COUNT(*) FROM %s WHERE ticket_id = ? AND step_id = ? AND state = ?",
		constants.TableParallelTask,
	)

	var count int
	err := q.QueryRowContext(ctx, query, ticketID, stepID, constants.TaskStatePending).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count pending tasks: %w", err)
	}
	return count, nil
}

// Complete marks a task signed, recording the stamped artifact when one
// was produced.
func (r *ParallelTaskRepository) Complete(ctx context.Context, taskID string, artifactPath *string) error {
	q := resolveQuerier(ctx, r.tm, r.db)
	query := fmt.Sprintf(
		"UPDATE %s SET state = ?, artifact_path = ?, signed_at = ? WHERE id = ?",
		constants.TableParallelTask,
	)
	if _, err := q.ExecContext(ctx, query, constants.TaskStateCompleted, artifactPath, time.Now().UTC(), taskID); err != nil {
		return fmt.Errorf("failed to complete parallel task %s: %w", taskID, err)
	}
	return nil
}

// ListByTicketStep returns all tasks of a (ticket, step) pair for the
// pending-count UI.
func (r *ParallelTaskRepository) ListByTicketStep(ctx context.Context, ticketID, stepID string) ([]*models.ParallelTask, error) {
	q := resolveQuerier(ctx, r.tm, r.db)
	query := fmt.Sprintf(
		"SELECT %s FROM %s WHERE ticket_id = ? AND step_id = ? ORDER BY created_at ASC, id ASC",
		taskColumns, constants.TableParallelTask,
	)

	rows, err := q.QueryContext(ctx, query, ticketID, stepID)
	if err != nil {
		return nil, fmt.Errorf("failed to list parallel tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*models.ParallelTask
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}
