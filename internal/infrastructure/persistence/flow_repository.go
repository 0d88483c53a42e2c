package persistence

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/4lexanderpardo09/help-desk-back-sub000/internal/domain/models"
	"github.com/4lexanderpardo09/help-desk-back-sub000/pkg/constants"
)

// FlowRepository is the read side of the workflow definition graph
// (flows, steps, transitions, routes). Definitions are administered
// outside the engine; nothing here writes.
type FlowRepository struct {
	db *sql.DB
	tm *TransactionManager
}

// NewFlowRepository creates a new FlowRepository
func NewFlowRepository(db *sql.DB, tm *TransactionManager) *FlowRepository {
	return &FlowRepository{db: db, tm: tm}
}

// GetActiveFlowByCategory returns the active flow for a ticket category,
// or nil when none exists.
func (r *FlowRepository) GetActiveFlowByCategory(ctx context.Context, categoryID string) (*models.Flow, error) {
	q := resolveQuerier(ctx, r.tm, r.db)
	query := fmt.Sprintf(
		"SELECT id, name, category_id, active FROM %s WHERE category_id = ? AND active = true LIMIT 1",
		constants.TableFlow,
	)

	flow := &models.Flow{}
	err := q.QueryRowContext(ctx, query, categoryID).Scan(&flow.ID, &flow.Name, &flow.CategoryID, &flow.Active)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load flow for category %s: %w", categoryID, err)
	}
	return flow, nil
}

const stepColumns = "id, flow_id, name, step_order, assigned_role_id, sla_hours, is_parallel, is_approval, assign_to_creator, needs_boss_approval, requires_manual_selection, active"

func scanStep(row interface{ Scan(...interface{}) error }) (*models.Step, error) {
	step := &models.Step{}
	err := row.Scan(
		&step.ID, &step.FlowID, &step.Name, &step.StepOrder,
		&step.AssignedRoleID, &step.SLAHours,
		&step.IsParallel, &step.IsApproval, &step.AssignToCreator,
		&step.NeedsBossApproval, &step.RequiresManualSelection, &step.Active,
	)
	if err != nil {
		return nil, err
	}
	return step, nil
}

// GetStepByID returns a step regardless of its active flag.
func (r *FlowRepository) GetStepByID(ctx context.Context, stepID string) (*models.Step, error) {
	q := resolveQuerier(ctx, r.tm, r.db)
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = ?", stepColumns, constants.TableStep)

	step, err := scanStep(q.QueryRowContext(ctx, query, stepID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load step %s: %w", stepID, err)
	}
	return step, nil
}

// GetActiveStepsByFlow returns the flow's active steps ordered by
// (step_order, id). Ordering by id second makes order ties deterministic.
func (r *FlowRepository) GetActiveStepsByFlow(ctx context.Context, flowID string) ([]*models.Step, error) {
	q := resolveQuerier(ctx, r.tm, r.db)
	query := fmt.Sprintf(
		"SELECT %s FROM %s WHERE flow_id = ? AND active = true ORDER BY step_order ASC, id ASC",
		stepColumns, constants.TableStep,
	)

	rows, err := q.QueryContext(ctx, query, flowID)
	if err != nil {
		return nil, fmt.Errorf("failed to load steps for flow %s: %w", flowID, err)
	}
	defer rows.Close()

	var steps []*models.Step
	for rows.Next() {
		step, err := scanStep(rows)
		if err != nil {
			return nil, err
		}
		steps = append(steps, step)
	}
	return steps, rows.Err()
}

// GetTransitionsFromStep returns the active transitions leaving a step.
func (r *FlowRepository) GetTransitionsFromStep(ctx context.Context, stepID string) ([]*models.Transition, error) {
	q := resolveQuerier(ctx, r.tm, r.db)
	query := fmt.Sprintf(
		"SELECT id, step_id, condition_key, condition_expr, dest_step_id, dest_route_id, label, active FROM %s WHERE step_id = ? AND active = true ORDER BY id ASC",
		constants.TableTransition,
	)

	rows, err := q.QueryContext(ctx, query, stepID)
	if err != nil {
		return nil, fmt.Errorf("failed to load transitions for step %s: %w", stepID, err)
	}
	defer rows.Close()

	var transitions []*models.Transition
	for rows.Next() {
		t := &models.Transition{}
		if err := rows.Scan(&t.ID, &t.StepID, &t.ConditionKey, &t.ConditionExpr, &t.DestStepID, &t.DestRouteID, &t.Label, &t.Active); err != nil {
			return nil, err
		}
		transitions = append(transitions, t)
	}
	return transitions, rows.Err()
}

// GetRouteFirstActiveStep resolves a route to its first active step
// (lowest position), or nil when the route has none.
func (r *FlowRepository) GetRouteFirstActiveStep(ctx context.Context, routeID string) (*models.Step, error) {
	q := resolveQuerier(ctx, r.tm, r.db)
	query := fmt.Sprintf(
		"SELECT s.id, s.flow_id, s.name, s.step_order, s.assigned_role_id, s.sla_hours, s.is_parallel, s.is_approval, s.assign_to_creator, s.needs_boss_approval, s.requires_manual_selection, s.active "+
			"FROM %s rs JOIN %s s ON s.id = rs.step_id "+
			"WHERE rs.route_id = ? AND s.active = true "+
			"ORDER BY rs.position ASC, s.id ASC LIMIT 1",
		constants.TableRouteStep, constants.TableStep,
	)

	step, err := scanStep(q.QueryRowContext(ctx, query, routeID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve route %s: %w", routeID, err)
	}
	return step, nil
}
