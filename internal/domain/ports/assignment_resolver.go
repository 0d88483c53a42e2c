package ports

import (
	"context"

	"github.com/4lexanderpardo09/help-desk-back-sub000/internal/domain/models"
)

// AssignmentResolver answers "who could act on this step for this
// ticket". Implementations must be read-only: the engine decides what to
// do with the candidates, the resolver never mutates state.
type AssignmentResolver interface {
	// GetCandidatesForStep returns zero, one or many eligible users for a
	// step, selected by the step's flags (creator assignment, boss lookup,
	// role+region lookup).
	GetCandidatesForStep(ctx context.Context, step *models.Step, ticket *models.Ticket) ([]*models.User, error)

	// GetUsersByRole returns the active holders of a role, optionally
	// narrowed to a company and region.
	GetUsersByRole(ctx context.Context, roleID string, companyID, regionID *string) ([]*models.User, error)
}
