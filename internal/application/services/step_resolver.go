package services

import (
	"context"
	"fmt"
	"log"

	"github.com/expr-lang/expr"

	"github.com/4lexanderpardo09/help-desk-back-sub000/internal/domain/models"
	"github.com/4lexanderpardo09/help-desk-back-sub000/internal/domain/ports"
)

// StepResolver decides where a ticket goes next. Three strategies,
// evaluated in order, first match wins:
//  1. keyed transition (non-numeric key) against the step's edges,
//     honoring transition condition expressions
//  2. direct override (numeric key is a literal destination step id)
//  3. linear fallback to the next active step by order
//
// A nil result means the final step has been reached.
type StepResolver struct {
	definitions ports.FlowDefinitionStore
}

// NewStepResolver creates a new StepResolver
func NewStepResolver(definitions ports.FlowDefinitionStore) *StepResolver {
	return &StepResolver{definitions: definitions}
}

// Resolution is the outcome of a next-step lookup. Transition is set only
// when a keyed transition matched, so callers can attach its label to the
// audit trail.
type Resolution struct {
	Step       *models.Step
	Transition *models.Transition
}

// Resolve returns the next step for (currentStep, key), or nil when no
// strategy yields one. Deterministic: the same inputs always resolve to
// the same destination for an unchanged definition graph.
func (sr *StepResolver) Resolve(ctx context.Context, currentStep *models.Step, key string, ticket *models.Ticket) (*Resolution, error) {
	// Strategy 1: keyed transition
	if key != "" && !isNumericKey(key) {
		res, err := sr.resolveKeyed(ctx, currentStep, key, ticket)
		if err != nil {
			return nil, err
		}
		if res != nil {
			return res, nil
		}
		// Unmatched keys fall through to linear progression. Kept as the
		// observed business behavior; the history label then reads "advanced".
	}

	// Strategy 2: numeric key is an administrative override naming the
	// destination step directly. No validation that an edge exists.
	if key != "" && isNumericKey(key) {
		step, err := sr.definitions.GetStepByID(ctx, key)
		if err != nil {
			return nil, err
		}
		if step != nil {
			return &Resolution{Step: step}, nil
		}
		log.Printf("⚠️ Step override '%s' does not name an existing step, falling back to linear order", key)
	}

	// Strategy 3: linear fallback
	step, err := sr.resolveLinear(ctx, currentStep)
	if err != nil {
		return nil, err
	}
	if step == nil {
		return nil, nil
	}
	return &Resolution{Step: step}, nil
}

// ResolveKeyedOnly runs only the keyed-transition strategy. Used by the
// approval shortcut, which has its own fallback rule.
func (sr *StepResolver) ResolveKeyedOnly(ctx context.Context, currentStep *models.Step, key string, ticket *models.Ticket) (*Resolution, error) {
	return sr.resolveKeyed(ctx, currentStep, key, ticket)
}

func (sr *StepResolver) resolveKeyed(ctx context.Context, currentStep *models.Step, key string, ticket *models.Ticket) (*Resolution, error) {
	transitions, err := sr.definitions.GetTransitionsFromStep(ctx, currentStep.ID)
	if err != nil {
		return nil, err
	}

	for _, t := range transitions {
		if t.ConditionKey != key {
			continue
		}
		ok, err := sr.conditionHolds(t, ticket, key)
		if err != nil {
			log.Printf("⚠️ Transition %s: condition evaluation failed: %v", t.ID, err)
			continue
		}
		if !ok {
			continue
		}

		if t.DestStepID != nil {
			step, err := sr.definitions.GetStepByID(ctx, *t.DestStepID)
			if err != nil {
				return nil, err
			}
			if step == nil || !step.Active {
				continue
			}
			return &Resolution{Step: step, Transition: t}, nil
		}

		if t.DestRouteID != nil {
			step, err := sr.definitions.GetRouteFirstActiveStep(ctx, *t.DestRouteID)
			if err != nil {
				return nil, err
			}
			if step == nil {
				continue
			}
			return &Resolution{Step: step, Transition: t}, nil
		}
	}
	return nil, nil
}

// conditionHolds evaluates the transition's optional boolean expression
// against the ticket context.
func (sr *StepResolver) conditionHolds(t *models.Transition, ticket *models.Ticket, key string) (bool, error) {
	if t.ConditionExpr == nil || *t.ConditionExpr == "" {
		return true, nil
	}

	env := map[string]interface{}{
		"key":    key,
		"ticket": ticketEnv(ticket),
	}
	result, err := expr.Eval(*t.ConditionExpr, env)
	if err != nil {
		return false, err
	}
	holds, ok := result.(bool)
	if !ok {
		return false, fmt.Errorf("condition did not evaluate to a boolean: %q", *t.ConditionExpr)
	}
	return holds, nil
}

func ticketEnv(ticket *models.Ticket) map[string]interface{} {
	env := map[string]interface{}{
		"id":          ticket.ID,
		"category_id": ticket.CategoryID,
		"creator_id":  ticket.CreatorID,
		"subject":     ticket.Subject,
		"status":      ticket.Status,
	}
	if ticket.RegionID != nil {
		env["region_id"] = *ticket.RegionID
	}
	if ticket.CompanyID != nil {
		env["company_id"] = *ticket.CompanyID
	}
	return env
}

// resolveLinear returns the active step of the same flow with the
// smallest order strictly greater than the current one. Order ties are
// broken by lowest id (the repository orders by (step_order, id)).
func (sr *StepResolver) resolveLinear(ctx context.Context, currentStep *models.Step) (*models.Step, error) {
	steps, err := sr.definitions.GetActiveStepsByFlow(ctx, currentStep.FlowID)
	if err != nil {
		return nil, err
	}

	for _, s := range steps {
		if s.StepOrder > currentStep.StepOrder {
			return s, nil
		}
	}
	return nil, nil
}

// isNumericKey reports whether the key is purely digits.
func isNumericKey(key string) bool {
	if key == "" {
		return false
	}
	for _, r := range key {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
