package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/4lexanderpardo09/help-desk-back-sub000/internal/domain/models"
	"github.com/4lexanderpardo09/help-desk-back-sub000/pkg/constants"
)

func TestCalculateSLAStatus(t *testing.T) {
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	t.Run("WithinBudgetIsOnTime", func(t *testing.T) {
		now := start.Add(3 * time.Hour)
		assert.Equal(t, constants.SLAStateOnTime, CalculateSLAStatus(start, 4, now))
	})

	t.Run("ExactBoundaryIsOnTime", func(t *testing.T) {
		now := start.Add(4 * time.Hour)
		assert.Equal(t, constants.SLAStateOnTime, CalculateSLAStatus(start, 4, now))
	})

	t.Run("PastBudgetIsLate", func(t *testing.T) {
		now := start.Add(4*time.Hour + time.Second)
		assert.Equal(t, constants.SLAStateLate, CalculateSLAStatus(start, 4, now))
	})
}

func newMonitorFixture() (*SLAMonitor, *MockTicketStore, *MockHistoryStore, *MockFlowDefinitionStore, *MockNotifier) {
	tickets := new(MockTicketStore)
	history := new(MockHistoryStore)
	defs := new(MockFlowDefinitionStore)
	notifier := new(MockNotifier)
	return NewSLAMonitor(tickets, history, defs, notifier), tickets, history, defs, notifier
}

func TestSLAMonitor_Sweep(t *testing.T) {
	sweepTime := time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC)

	inProgress := func(id, stepID string, assignees ...string) *models.Ticket {
		return &models.Ticket{
			ID:            id,
			CategoryID:    "cat-1",
			CreatorID:     "u-creator",
			CurrentStepID: &stepID,
			Status:        constants.TicketStatusInProgress,
			AssigneeIDs:   assignees,
		}
	}

	t.Run("OverdueTicketIsFlaggedAndNotified", func(t *testing.T) {
		m, tickets, history, defs, notifier := newMonitorFixture()
		m.nowFn = func() time.Time { return sweepTime }

		ticket := inProgress("t1", "s1", "u-a", "u-b")
		step := &models.Step{ID: "s1", Name: "Review", SLAHours: intPtr(4), Active: true}
		entry := &models.AssignmentHistory{
			ID:        "h1",
			TicketID:  "t1",
			StepID:    "s1",
			SLAState:  constants.SLAStateOnTime,
			CreatedAt: sweepTime.Add(-5 * time.Hour),
		}

		tickets.On("ListInProgress", mock.Anything).Return([]*models.Ticket{ticket}, nil).Once()
		defs.On("GetStepByID", mock.Anything, "s1").Return(step, nil).Once()
		history.On("GetLatestForTicketStep", mock.Anything, "t1", "s1").Return(entry, nil).Once()
		history.On("UpdateSLAState", mock.Anything, "h1", constants.SLAStateLate).Return(nil).Once()
		notifier.On("NotifyOverdue", mock.Anything, "u-a", mock.MatchedBy(func(p map[string]interface{}) bool {
			return p["ticket_id"] == "t1" && p["sla_hours"] == 4
		})).Return(nil).Once()
		notifier.On("NotifyOverdue", mock.Anything, "u-b", mock.Anything).Return(nil).Once()

		m.Sweep(context.Background())

		history.AssertExpectations(t)
		notifier.AssertExpectations(t)
	})

	t.Run("AlreadyLateIsNotRenotified", func(t *testing.T) {
		m, tickets, history, defs, notifier := newMonitorFixture()
		m.nowFn = func() time.Time { return sweepTime }

		ticket := inProgress("t1", "s1", "u-a")
		step := &models.Step{ID: "s1", SLAHours: intPtr(4), Active: true}
		entry := &models.AssignmentHistory{
			ID:        "h1",
			TicketID:  "t1",
			StepID:    "s1",
			SLAState:  constants.SLAStateLate,
			CreatedAt: sweepTime.Add(-20 * time.Hour),
		}

		tickets.On("ListInProgress", mock.Anything).Return([]*models.Ticket{ticket}, nil).Twice()
		defs.On("GetStepByID", mock.Anything, "s1").Return(step, nil).Twice()
		history.On("GetLatestForTicketStep", mock.Anything, "t1", "s1").Return(entry, nil).Twice()

		// Two sweeps over the same late ticket: no update, no notice
		m.Sweep(context.Background())
		m.Sweep(context.Background())

		history.AssertNotCalled(t, "UpdateSLAState", mock.Anything, mock.Anything, mock.Anything)
		notifier.AssertNotCalled(t, "NotifyOverdue", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("StepsWithoutSLAAreSkipped", func(t *testing.T) {
		m, tickets, history, defs, _ := newMonitorFixture()
		m.nowFn = func() time.Time { return sweepTime }

		noSLA := inProgress("t1", "s1", "u-a")
		zeroSLA := inProgress("t2", "s2", "u-b")

		tickets.On("ListInProgress", mock.Anything).Return([]*models.Ticket{noSLA, zeroSLA}, nil).Once()
		defs.On("GetStepByID", mock.Anything, "s1").Return(&models.Step{ID: "s1"}, nil).Once()
		defs.On("GetStepByID", mock.Anything, "s2").Return(&models.Step{ID: "s2", SLAHours: intPtr(0)}, nil).Once()

		m.Sweep(context.Background())

		history.AssertNotCalled(t, "GetLatestForTicketStep", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("OneBadTicketDoesNotHaltTheSweep", func(t *testing.T) {
		m, tickets, history, defs, notifier := newMonitorFixture()
		m.nowFn = func() time.Time { return sweepTime }

		broken := inProgress("t-broken", "s-missing")
		healthy := inProgress("t-late", "s1", "u-a")
		step := &models.Step{ID: "s1", Name: "Review", SLAHours: intPtr(1), Active: true}
		entry := &models.AssignmentHistory{
			ID:        "h2",
			TicketID:  "t-late",
			StepID:    "s1",
			SLAState:  constants.SLAStateOnTime,
			CreatedAt: sweepTime.Add(-2 * time.Hour),
		}

		tickets.On("ListInProgress", mock.Anything).Return([]*models.Ticket{broken, healthy}, nil).Once()
		defs.On("GetStepByID", mock.Anything, "s-missing").Return(nil, assert.AnError).Once()
		defs.On("GetStepByID", mock.Anything, "s1").Return(step, nil).Once()
		history.On("GetLatestForTicketStep", mock.Anything, "t-late", "s1").Return(entry, nil).Once()
		history.On("UpdateSLAState", mock.Anything, "h2", constants.SLAStateLate).Return(nil).Once()
		notifier.On("NotifyOverdue", mock.Anything, "u-a", mock.Anything).Return(nil).Once()

		m.Sweep(context.Background())

		history.AssertExpectations(t)
	})
}

func TestSLAMonitor_StartValidatesSchedule(t *testing.T) {
	m, tickets, _, _, _ := newMonitorFixture()
	tickets.On("ListInProgress", mock.Anything).Return([]*models.Ticket{}, nil).Maybe()

	err := m.Start("not a cron expression")
	assert.Error(t, err)

	assert.NoError(t, m.Start("*/5 * * * *"))
	m.Stop()
}
