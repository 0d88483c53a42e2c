package models

import "time"

// Ticket is the work item routed through a Flow. CurrentStepID is nil
// until the flow has started; afterwards it always references an active
// Step of the bound Flow. AssigneeIDs holds one entry for linear/role
// steps and N entries for parallel steps; empty means pool assignment
// awaiting manual selection.
type Ticket struct {
	ID            string     `json:"id"`
	CategoryID    string     `json:"category_id"`
	CreatorID     string     `json:"creator_id"`
	RegionID      *string    `json:"region_id,omitempty"`
	CompanyID     *string    `json:"company_id,omitempty"`
	Subject       string     `json:"subject"`
	DocumentPath  *string    `json:"document_path,omitempty"`
	CurrentStepID *string    `json:"current_step_id,omitempty"`
	ApproverID    *string    `json:"approver_id,omitempty"`
	Status        string     `json:"status"`
	AssigneeIDs   []string   `json:"assignee_ids"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// AssignmentHistory is the audit trail: one row per step entry per
// assignee, append-only. The single exception to immutability is
// SLAState, patched in place by the SLA monitor when lateness is
// detected.
type AssignmentHistory struct {
	ID               string    `json:"id"`
	TicketID         string    `json:"ticket_id"`
	StepID           string    `json:"step_id"`
	AssignedUserID   string    `json:"assigned_user_id"`
	AssignedByUserID string    `json:"assigned_by_user_id"`
	SLAState         string    `json:"sla_state"`
	Label            *string   `json:"label,omitempty"`
	Comment          *string   `json:"comment,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// ParallelTask is one required signature on a parallel step: one row per
// (ticket, step, user) triple, pending until the user signs.
type ParallelTask struct {
	ID           string     `json:"id"`
	TicketID     string     `json:"ticket_id"`
	StepID       string     `json:"step_id"`
	UserID       string     `json:"user_id"`
	RoleID       string     `json:"role_id"`
	State        string     `json:"state"`
	ArtifactPath *string    `json:"artifact_path,omitempty"`
	SignedAt     *time.Time `json:"signed_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// TicketComment is a free-text audit note tied to an actor, kept apart
// from the assignment records.
type TicketComment struct {
	ID        string    `json:"id"`
	TicketID  string    `json:"ticket_id"`
	AuthorID  string    `json:"author_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}
