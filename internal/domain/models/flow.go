package models

// Flow is a named pipeline bound to exactly one ticket category.
type Flow struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	CategoryID string `json:"category_id"`
	Active     bool   `json:"active"`
}

// Step is one stage of a Flow. StepOrder defines the default linear
// successor; the boolean flags select the assignee-resolution strategy.
type Step struct {
	ID                      string  `json:"id"`
	FlowID                  string  `json:"flow_id"`
	Name                    string  `json:"name"`
	StepOrder               int     `json:"step_order"`
	AssignedRoleID          *string `json:"assigned_role_id,omitempty"`
	SLAHours                *int    `json:"sla_hours,omitempty"`
	IsParallel              bool    `json:"is_parallel"`
	IsApproval              bool    `json:"is_approval"`
	AssignToCreator         bool    `json:"assign_to_creator"`
	NeedsBossApproval       bool    `json:"needs_boss_approval"`
	RequiresManualSelection bool    `json:"requires_manual_selection"`
	Active                  bool    `json:"active"`
}

// Transition is an optional keyed edge out of a Step. Exactly one of
// DestStepID / DestRouteID is set. ConditionExpr, when present, is a
// boolean expression evaluated against the ticket context; a transition
// whose expression evaluates false is skipped during keyed lookup.
type Transition struct {
	ID            string  `json:"id"`
	StepID        string  `json:"step_id"`
	ConditionKey  string  `json:"condition_key"`
	ConditionExpr *string `json:"condition_expr,omitempty"`
	DestStepID    *string `json:"dest_step_id,omitempty"`
	DestRouteID   *string `json:"dest_route_id,omitempty"`
	Label         *string `json:"label,omitempty"`
	Active        bool    `json:"active"`
}

// Route is an ordered sub-sequence of Steps reachable via a Transition.
type Route struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

// RouteStep links a Route to one of its Steps at a given position.
type RouteStep struct {
	RouteID  string `json:"route_id"`
	StepID   string `json:"step_id"`
	Position int    `json:"position"`
}
