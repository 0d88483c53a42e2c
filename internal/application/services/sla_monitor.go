package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/4lexanderpardo09/help-desk-back-sub000/internal/domain/models"
	"github.com/4lexanderpardo09/help-desk-back-sub000/internal/domain/ports"
	"github.com/4lexanderpardo09/help-desk-back-sub000/pkg/constants"
)

// SLAMonitor periodically sweeps in-progress tickets and flags the ones
// whose current step exceeded its allotted hours. It only ever patches
// the history row's sla_state and notifies assignees; it never reassigns
// or escalates.
type SLAMonitor struct {
	tickets     TicketStore
	history     HistoryStore
	definitions ports.FlowDefinitionStore
	notifier    ports.Notifier

	cron    *cron.Cron
	mu      sync.Mutex
	running bool
	nowFn   func() time.Time
}

// NewSLAMonitor creates a new SLAMonitor
func NewSLAMonitor(tickets TicketStore, history HistoryStore, definitions ports.FlowDefinitionStore, notifier ports.Notifier) *SLAMonitor {
	return &SLAMonitor{
		tickets:     tickets,
		history:     history,
		definitions: definitions,
		notifier:    notifier,
		nowFn:       time.Now,
	}
}

// Start schedules the sweep with a cron expression (default every 5
// minutes) and runs one sweep immediately.
func (m *SLAMonitor) Start(schedule string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return nil
	}

	if schedule == "" {
		schedule = constants.DefaultSLASchedule
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	runner := cron.New(cron.WithParser(parser))
	if _, err := runner.AddFunc(schedule, func() { m.Sweep(context.Background()) }); err != nil {
		return fmt.Errorf("invalid SLA sweep schedule %q: %w", schedule, err)
	}

	m.cron = runner
	m.running = true
	runner.Start()
	log.Printf("⏰ SLA monitor started (schedule %q)", schedule)

	go m.Sweep(context.Background())
	return nil
}

// Stop halts the schedule and waits for a running sweep to finish.
func (m *SLAMonitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.running {
		return
	}
	m.running = false

	ctx := m.cron.Stop()
	<-ctx.Done()
	log.Println("⏰ SLA monitor stopped")
}

// Sweep checks every in-progress ticket once. Per-ticket errors are
// logged and skipped so one bad ticket does not halt the sweep for
// others.
func (m *SLAMonitor) Sweep(ctx context.Context) {
	tickets, err := m.tickets.ListInProgress(ctx)
	if err != nil {
		log.Printf("⚠️ SLA sweep: failed to list tickets: %v", err)
		return
	}

	flagged := 0
	for _, ticket := range tickets {
		late, err := m.checkTicket(ctx, ticket)
		if err != nil {
			log.Printf("⚠️ SLA sweep: ticket %s: %v", ticket.ID, err)
			continue
		}
		if late {
			flagged++
		}
	}

	if flagged > 0 {
		log.Printf("⏰ SLA sweep flagged %d ticket(s) late", flagged)
	}
}

// checkTicket returns true when the ticket was newly marked late.
func (m *SLAMonitor) checkTicket(ctx context.Context, ticket *models.Ticket) (bool, error) {
	if ticket.CurrentStepID == nil {
		return false, nil
	}

	step, err := m.definitions.GetStepByID(ctx, *ticket.CurrentStepID)
	if err != nil {
		return false, err
	}
	if step == nil || step.SLAHours == nil || *step.SLAHours <= 0 {
		return false, nil
	}

	entry, err := m.history.GetLatestForTicketStep(ctx, ticket.ID, step.ID)
	if err != nil {
		return false, err
	}
	if entry == nil {
		return false, nil
	}
	// Already flagged: skip, so assignees are not renotified every sweep
	if entry.SLAState == constants.SLAStateLate {
		return false, nil
	}

	if CalculateSLAStatus(entry.CreatedAt, *step.SLAHours, m.nowFn()) != constants.SLAStateLate {
		return false, nil
	}

	if err := m.history.UpdateSLAState(ctx, entry.ID, constants.SLAStateLate); err != nil {
		return false, err
	}

	payload := map[string]interface{}{
		"ticket_id": ticket.ID,
		"step_id":   step.ID,
		"step_name": step.Name,
		"sla_hours": *step.SLAHours,
	}
	for _, userID := range ticket.AssigneeIDs {
		if err := m.notifier.NotifyOverdue(ctx, userID, payload); err != nil {
			log.Printf("⚠️ Failed to send overdue notice to %s for ticket %s: %v", userID, ticket.ID, err)
		}
	}
	return true, nil
}

// CalculateSLAStatus returns "on-time" while the elapsed time since
// start is within the allotted hours, "late" once it exceeds them.
func CalculateSLAStatus(start time.Time, hours int, now time.Time) string {
	if now.Sub(start) > time.Duration(hours)*time.Hour {
		return constants.SLAStateLate
	}
	return constants.SLAStateOnTime
}
