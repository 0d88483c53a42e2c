package ports

import (
	"context"

	"github.com/4lexanderpardo09/help-desk-back-sub000/internal/domain/models"
)

// FlowDefinitionStore gives the engine read-only access to the
// Flow -> Step -> Transition/Route graph. Definitions are administered
// elsewhere; during execution the engine never mutates them.
type FlowDefinitionStore interface {
	// GetActiveFlowByCategory returns the active flow bound to a ticket
	// category, or nil when none exists.
	GetActiveFlowByCategory(ctx context.Context, categoryID string) (*models.Flow, error)

	// GetStepByID returns a step regardless of its active flag.
	GetStepByID(ctx context.Context, stepID string) (*models.Step, error)

	// GetActiveStepsByFlow returns the flow's active steps ordered by
	// (step_order, id) ascending.
	GetActiveStepsByFlow(ctx context.Context, flowID string) ([]*models.Step, error)

	// GetTransitionsFromStep returns the active transitions leaving a step.
	GetTransitionsFromStep(ctx context.Context, stepID string) ([]*models.Transition, error)

	// GetRouteFirstActiveStep resolves a route to its first active step
	// (lowest position), or nil when the route has none.
	GetRouteFirstActiveStep(ctx context.Context, routeID string) (*models.Step, error)
}
