package services

import (
	"context"
	"log"

	"github.com/4lexanderpardo09/help-desk-back-sub000/internal/domain/models"
	"github.com/4lexanderpardo09/help-desk-back-sub000/internal/domain/ports"
	"github.com/4lexanderpardo09/help-desk-back-sub000/pkg/constants"
	apperrors "github.com/4lexanderpardo09/help-desk-back-sub000/pkg/errors"
)

// WorkflowEngine orchestrates step resolution, assignee resolution,
// ticket mutation, history logging and parallel-task bookkeeping. Every
// startFlow/transition call runs inside one transaction holding a FOR
// UPDATE lock on the ticket row, so concurrent transitions on the same
// ticket serialize while different tickets proceed independently.
type WorkflowEngine struct {
	tx          TxRunner
	tickets     TicketStore
	history     HistoryStore
	tasks       ParallelTaskStore
	users       UserDirectory
	definitions ports.FlowDefinitionStore
	resolver    ports.AssignmentResolver
	steps       *StepResolver
	notifier    ports.Notifier
	stamper     ports.DocumentStamper
}

// NewWorkflowEngine creates a new WorkflowEngine with interface
// dependencies. This allows for proper dependency injection and testing.
func NewWorkflowEngine(
	tx TxRunner,
	tickets TicketStore,
	history HistoryStore,
	tasks ParallelTaskStore,
	users UserDirectory,
	definitions ports.FlowDefinitionStore,
	resolver ports.AssignmentResolver,
	steps *StepResolver,
	notifier ports.Notifier,
	stamper ports.DocumentStamper,
) *WorkflowEngine {
	return &WorkflowEngine{
		tx:          tx,
		tickets:     tickets,
		history:     history,
		tasks:       tasks,
		users:       users,
		definitions: definitions,
		resolver:    resolver,
		steps:       steps,
		notifier:    notifier,
		stamper:     stamper,
	}
}

// TransitionOptions carries the optional inputs of a transition call.
type TransitionOptions struct {
	// Comment is recorded as a separate audit note tied to the actor.
	Comment string
	// ManualAssigneeID overrides assignee resolution for single steps.
	ManualAssigneeID *string
	// RoleAssignments maps role id to user id for parallel steps: the
	// named user stands in for that role's resolved candidates.
	RoleAssignments map[string]string
	// ArtifactPath records a stamped artifact on the actor's parallel task.
	ArtifactPath *string

	signOnly bool
}

// StartFlow resolves the active flow for the ticket's category, enters
// its lowest-order active step, and assigns it. The assignment
// notification fires after commit, best-effort.
func (e *WorkflowEngine) StartFlow(ctx context.Context, ticketID string, manualAssigneeID *string, actorID string) (*models.Ticket, error) {
	var result *models.Ticket
	var notify []*models.User

	err := e.tx.RunInTicketTransaction(ctx, func(txCtx context.Context) error {
		notify = nil

		ticket, err := e.tickets.GetByIDForUpdate(txCtx, ticketID)
		if err != nil {
			return err
		}
		if ticket == nil {
			return apperrors.NewNotFoundError("ticket", ticketID)
		}

		flow, err := e.definitions.GetActiveFlowByCategory(txCtx, ticket.CategoryID)
		if err != nil {
			return err
		}
		if flow == nil {
			return apperrors.NewNotFoundError("flow for category", ticket.CategoryID)
		}

		steps, err := e.definitions.GetActiveStepsByFlow(txCtx, flow.ID)
		if err != nil {
			return err
		}
		if len(steps) == 0 {
			return apperrors.NewInvalidConfigurationError("flow "+flow.ID, "flow has no active steps")
		}

		label := constants.HistoryLabelFlowStart
		notify, err = e.enterStep(txCtx, ticket, steps[0], actorID, TransitionOptions{ManualAssigneeID: manualAssigneeID}, &label)
		if err != nil {
			return err
		}

		result = ticket
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.dispatchAssignments(ctx, result, notify)
	log.Printf("🎫 Ticket %s: flow started at step %s", result.ID, *result.CurrentStepID)
	return result, nil
}

// Transition advances a ticket. For parallel steps the call doubles as a
// signature: a pending task for the actor is completed first, and unless
// the actor was the last signer the call is absorbed without advancing.
func (e *WorkflowEngine) Transition(ctx context.Context, ticketID, key, actorID string, opts TransitionOptions) (*models.Ticket, error) {
	var result *models.Ticket
	var notify []*models.User
	var leftStep *models.Step

	err := e.tx.RunInTicketTransaction(ctx, func(txCtx context.Context) error {
		// Reset closure state in case the transaction retried
		notify = nil
		leftStep = nil

		ticket, err := e.tickets.GetByIDForUpdate(txCtx, ticketID)
		if err != nil {
			return err
		}
		if ticket == nil {
			return apperrors.NewNotFoundError("ticket", ticketID)
		}
		if ticket.CurrentStepID == nil {
			return apperrors.NewValidationError("ticket", "flow has not started for this ticket")
		}

		current, err := e.definitions.GetStepByID(txCtx, *ticket.CurrentStepID)
		if err != nil {
			return err
		}
		if current == nil {
			return apperrors.NewNotFoundError("step", *ticket.CurrentStepID)
		}

		if current.IsParallel {
			advance, err := e.absorbSignature(txCtx, ticket, current, actorID, opts)
			if err != nil {
				return err
			}
			if !advance {
				result = ticket
				return nil
			}
		} else if opts.signOnly {
			return apperrors.NewValidationError("step", "current step is not a parallel step")
		}

		res, err := e.steps.Resolve(txCtx, current, key, ticket)
		if err != nil {
			return err
		}
		if res == nil {
			return apperrors.NewInvalidTransitionError(current.ID, key)
		}

		notify, err = e.enterStep(txCtx, ticket, res.Step, actorID, opts, transitionLabel(res))
		if err != nil {
			return err
		}

		if opts.Comment != "" {
			comment := &models.TicketComment{TicketID: ticket.ID, AuthorID: actorID, Body: opts.Comment}
			if err := e.history.InsertComment(txCtx, comment); err != nil {
				return err
			}
		}

		leftStep = current
		result = ticket
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.dispatchAssignments(ctx, result, notify)
	e.restampDocument(ctx, result, leftStep, actorID)
	return result, nil
}

// SignParallelTask completes the actor's pending signature on the
// current parallel step. The last signer's call auto-advances the ticket.
func (e *WorkflowEngine) SignParallelTask(ctx context.Context, ticketID, actorID string, artifactPath *string) (*models.Ticket, error) {
	return e.Transition(ctx, ticketID, "", actorID, TransitionOptions{ArtifactPath: artifactPath, signOnly: true})
}

// ApproveFlow is the approval shortcut: a keyed "approved" transition
// when the flow defines one, else the next active non-approval step by
// order. When nothing remains the ticket is finished. Approver identity
// is warned about, not enforced: authorization lives in the policy layer.
func (e *WorkflowEngine) ApproveFlow(ctx context.Context, ticketID, approverID, comment string) (*models.Ticket, error) {
	var result *models.Ticket
	var notify []*models.User
	var leftStep *models.Step

	err := e.tx.RunInTicketTransaction(ctx, func(txCtx context.Context) error {
		notify = nil
		leftStep = nil

		ticket, err := e.tickets.GetByIDForUpdate(txCtx, ticketID)
		if err != nil {
			return err
		}
		if ticket == nil {
			return apperrors.NewNotFoundError("ticket", ticketID)
		}
		if ticket.CurrentStepID == nil {
			return apperrors.NewValidationError("ticket", "flow has not started for this ticket")
		}

		if ticket.ApproverID != nil && *ticket.ApproverID != approverID {
			log.Printf("⚠️ Ticket %s: approval by %s but stored approver is %s", ticket.ID, approverID, *ticket.ApproverID)
		}

		current, err := e.definitions.GetStepByID(txCtx, *ticket.CurrentStepID)
		if err != nil {
			return err
		}
		if current == nil {
			return apperrors.NewNotFoundError("step", *ticket.CurrentStepID)
		}

		if current.IsParallel {
			pending, err := e.tasks.CountPending(txCtx, ticket.ID, current.ID)
			if err != nil {
				return err
			}
			if pending > 0 {
				return apperrors.NewBlockedError(current.ID, pending)
			}
		}

		res, err := e.steps.ResolveKeyedOnly(txCtx, current, constants.TransitionKeyApproved, ticket)
		if err != nil {
			return err
		}
		if res == nil {
			target, err := e.nextNonApprovalStep(txCtx, current)
			if err != nil {
				return err
			}
			if target == nil {
				// Nothing left to route to: the flow is complete
				if err := e.finishTicket(txCtx, ticket); err != nil {
					return err
				}
				result = ticket
				leftStep = current
				return e.recordComment(txCtx, ticket, approverID, comment)
			}
			res = &Resolution{Step: target}
		}

		notify, err = e.enterStep(txCtx, ticket, res.Step, approverID, TransitionOptions{}, transitionLabel(res))
		if err != nil {
			return err
		}

		leftStep = current
		result = ticket
		return e.recordComment(txCtx, ticket, approverID, comment)
	})
	if err != nil {
		return nil, err
	}

	e.dispatchAssignments(ctx, result, notify)
	e.restampDocument(ctx, result, leftStep, approverID)
	return result, nil
}

// StepPreview describes where a transition would land without mutating
// anything.
type StepPreview struct {
	NextStep                *models.Step   `json:"next_step"`
	Candidates              []*models.User `json:"candidates"`
	RequiresManualSelection bool           `json:"requires_manual_selection"`
	PendingSignatures       int            `json:"pending_signatures"`
}

// PreviewNextStep resolves the destination and candidates for a
// transition read-only, for selection UIs.
func (e *WorkflowEngine) PreviewNextStep(ctx context.Context, ticketID, key string) (*StepPreview, error) {
	ticket, err := e.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket == nil {
		return nil, apperrors.NewNotFoundError("ticket", ticketID)
	}
	if ticket.CurrentStepID == nil {
		return nil, apperrors.NewValidationError("ticket", "flow has not started for this ticket")
	}

	current, err := e.definitions.GetStepByID(ctx, *ticket.CurrentStepID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, apperrors.NewNotFoundError("step", *ticket.CurrentStepID)
	}

	preview := &StepPreview{}
	if current.IsParallel {
		preview.PendingSignatures, err = e.tasks.CountPending(ctx, ticket.ID, current.ID)
		if err != nil {
			return nil, err
		}
	}

	res, err := e.steps.Resolve(ctx, current, key, ticket)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return preview, nil // final step reached
	}

	preview.NextStep = res.Step
	preview.Candidates, err = e.resolver.GetCandidatesForStep(ctx, res.Step, ticket)
	if err != nil {
		return nil, err
	}
	preview.RequiresManualSelection = res.Step.RequiresManualSelection ||
		(len(preview.Candidates) > 1 && !res.Step.AssignToCreator && !res.Step.NeedsBossApproval && !res.Step.IsParallel)
	return preview, nil
}

// ==================== internals ====================

// absorbSignature handles a transition call arriving at a parallel step.
// Returns true when the caller may advance the ticket: either the actor
// was the last pending signer, or every task was already completed.
func (e *WorkflowEngine) absorbSignature(ctx context.Context, ticket *models.Ticket, step *models.Step, actorID string, opts TransitionOptions) (bool, error) {
	task, err := e.tasks.GetPendingForActor(ctx, ticket.ID, step.ID, actorID)
	if err != nil {
		return false, err
	}

	if task != nil {
		if err := e.tasks.Complete(ctx, task.ID, opts.ArtifactPath); err != nil {
			return false, err
		}
		log.Printf("✍️ Ticket %s: %s signed step %s", ticket.ID, actorID, step.ID)
	}

	pending, err := e.tasks.CountPending(ctx, ticket.ID, step.ID)
	if err != nil {
		return false, err
	}
	if pending == 0 {
		return true, nil
	}

	if task == nil {
		// The actor has nothing to sign while others still do
		return false, apperrors.NewBlockedError(step.ID, pending)
	}
	// Partial signature absorbed; the last signer re-evaluates under the
	// same row lock and advances.
	return false, nil
}

// enterStep applies all mutations of entering a step: assignee
// resolution (parallel expansion or single), ticket update, and one
// history row per new assignee, primary first.
func (e *WorkflowEngine) enterStep(ctx context.Context, ticket *models.Ticket, step *models.Step, actorID string, opts TransitionOptions, label *string) ([]*models.User, error) {
	var assignees []*models.User

	if step.IsParallel {
		signers, err := e.resolveSigners(ctx, ticket, step, opts.RoleAssignments)
		if err != nil {
			return nil, err
		}
		for _, signer := range signers {
			roleID := ""
			if signer.RoleID != nil {
				roleID = *signer.RoleID
			}
			task := &models.ParallelTask{
				TicketID: ticket.ID,
				StepID:   step.ID,
				UserID:   signer.ID,
				RoleID:   roleID,
			}
			if err := e.tasks.InsertIdempotent(ctx, task); err != nil {
				return nil, err
			}
		}
		assignees = signers
	} else {
		assigneeID, err := e.resolveStepAssignee(ctx, step, ticket, opts.ManualAssigneeID)
		if err != nil {
			return nil, err
		}
		if assigneeID != nil {
			user, err := e.users.GetByID(ctx, *assigneeID)
			if err != nil {
				return nil, err
			}
			if user == nil {
				user = &models.User{ID: *assigneeID}
			}
			assignees = []*models.User{user}
		}
	}

	ids := make([]string, len(assignees))
	for i, u := range assignees {
		ids[i] = u.ID
	}

	var approverID *string
	if step.NeedsBossApproval && len(ids) > 0 {
		approverID = &ids[0]
	}

	if err := e.tickets.UpdateStep(ctx, ticket.ID, &step.ID, approverID, constants.TicketStatusInProgress); err != nil {
		return nil, err
	}
	if err := e.tickets.ReplaceAssignees(ctx, ticket.ID, ids); err != nil {
		return nil, err
	}

	for _, id := range ids {
		h := &models.AssignmentHistory{
			TicketID:         ticket.ID,
			StepID:           step.ID,
			AssignedUserID:   id,
			AssignedByUserID: actorID,
			Label:            label,
		}
		if err := e.history.Insert(ctx, h); err != nil {
			return nil, err
		}
	}

	ticket.CurrentStepID = &step.ID
	ticket.ApproverID = approverID
	ticket.Status = constants.TicketStatusInProgress
	ticket.AssigneeIDs = ids
	return assignees, nil
}

// resolveSigners expands a parallel step to its required signers: one per
// resolved candidate, with per-role manual overrides replacing the
// candidates of their role.
func (e *WorkflowEngine) resolveSigners(ctx context.Context, ticket *models.Ticket, step *models.Step, roleAssignments map[string]string) ([]*models.User, error) {
	candidates, err := e.resolver.GetCandidatesForStep(ctx, step, ticket)
	if err != nil {
		return nil, err
	}

	signers := make([]*models.User, 0, len(candidates))
	seenRoles := make(map[string]bool)
	seenUsers := make(map[string]bool)

	for _, candidate := range candidates {
		roleID := ""
		if candidate.RoleID != nil {
			roleID = *candidate.RoleID
		}

		if overrideID, ok := roleAssignments[roleID]; ok && roleID != "" {
			if seenRoles[roleID] {
				continue
			}
			seenRoles[roleID] = true

			override, err := e.users.GetByID(ctx, overrideID)
			if err != nil {
				return nil, err
			}
			if override == nil {
				return nil, apperrors.NewNotFoundError("user", overrideID)
			}
			if !seenUsers[override.ID] {
				seenUsers[override.ID] = true
				signers = append(signers, override)
			}
			continue
		}

		if !seenUsers[candidate.ID] {
			seenUsers[candidate.ID] = true
			signers = append(signers, candidate)
		}
	}
	return signers, nil
}

// resolveStepAssignee runs the assignee priority chain: manual override,
// then the step's candidate strategy; a single candidate auto-assigns,
// multiple candidates auto-assign only for single-actor rules (creator,
// boss), and pure role pools stay unassigned for manual selection.
func (e *WorkflowEngine) resolveStepAssignee(ctx context.Context, step *models.Step, ticket *models.Ticket, manualOverride *string) (*string, error) {
	if manualOverride != nil && *manualOverride != "" {
		return manualOverride, nil
	}

	candidates, err := e.resolver.GetCandidatesForStep(ctx, step, ticket)
	if err != nil {
		return nil, err
	}

	switch {
	case len(candidates) == 0:
		return nil, nil
	case len(candidates) == 1:
		return &candidates[0].ID, nil
	case step.AssignToCreator || step.NeedsBossApproval:
		// Automatic single-actor rule: deterministic first candidate
		return &candidates[0].ID, nil
	default:
		// Pool state: manual selection required
		return nil, nil
	}
}

func (e *WorkflowEngine) nextNonApprovalStep(ctx context.Context, current *models.Step) (*models.Step, error) {
	steps, err := e.definitions.GetActiveStepsByFlow(ctx, current.FlowID)
	if err != nil {
		return nil, err
	}
	for _, s := range steps {
		if s.StepOrder > current.StepOrder && !s.IsApproval {
			return s, nil
		}
	}
	return nil, nil
}

func (e *WorkflowEngine) finishTicket(ctx context.Context, ticket *models.Ticket) error {
	if err := e.tickets.UpdateStep(ctx, ticket.ID, ticket.CurrentStepID, nil, constants.TicketStatusFinished); err != nil {
		return err
	}
	if err := e.tickets.ReplaceAssignees(ctx, ticket.ID, nil); err != nil {
		return err
	}
	ticket.Status = constants.TicketStatusFinished
	ticket.ApproverID = nil
	ticket.AssigneeIDs = nil
	log.Printf("✅ Ticket %s: flow finished", ticket.ID)
	return nil
}

func (e *WorkflowEngine) recordComment(ctx context.Context, ticket *models.Ticket, authorID, body string) error {
	if body == "" {
		return nil
	}
	return e.history.InsertComment(ctx, &models.TicketComment{TicketID: ticket.ID, AuthorID: authorID, Body: body})
}

func transitionLabel(res *Resolution) *string {
	if res.Transition != nil {
		if res.Transition.Label != nil && *res.Transition.Label != "" {
			return res.Transition.Label
		}
		return &res.Transition.ConditionKey
	}
	label := constants.HistoryLabelAdvanced
	return &label
}

// dispatchAssignments notifies the new assignees after commit.
// Best-effort: failures are logged, the transition is already committed.
func (e *WorkflowEngine) dispatchAssignments(ctx context.Context, ticket *models.Ticket, users []*models.User) {
	if ticket == nil {
		return
	}
	for _, user := range users {
		if err := e.notifier.NotifyAssignment(ctx, ticket, user); err != nil {
			log.Printf("⚠️ Failed to notify %s about ticket %s: %v", user.ID, ticket.ID, err)
		}
	}
}

// restampDocument re-stamps the ticket document for the step just left.
// Best-effort after commit.
func (e *WorkflowEngine) restampDocument(ctx context.Context, ticket *models.Ticket, leftStep *models.Step, signerID string) {
	if ticket == nil || leftStep == nil || ticket.DocumentPath == nil {
		return
	}
	if _, err := e.stamper.StampStepArtifact(ctx, *ticket.DocumentPath, leftStep.ID, ticket.ID, &signerID); err != nil {
		log.Printf("⚠️ Failed to stamp document for ticket %s step %s: %v", ticket.ID, leftStep.ID, err)
	}
}
