package services

import (
	"context"

	"github.com/4lexanderpardo09/help-desk-back-sub000/internal/domain/models"
	"github.com/4lexanderpardo09/help-desk-back-sub000/internal/infrastructure/persistence"
	apperrors "github.com/4lexanderpardo09/help-desk-back-sub000/pkg/errors"
	"github.com/4lexanderpardo09/help-desk-back-sub000/pkg/utils"
)

// TicketService covers the ticket reads and creation around the engine:
// opening a ticket, fetching it, and serving its audit trail and
// parallel-task state.
type TicketService struct {
	tickets *persistence.TicketRepository
	history HistoryStore
	tasks   ParallelTaskStore
}

// NewTicketService creates a new TicketService
func NewTicketService(tickets *persistence.TicketRepository, history HistoryStore, tasks ParallelTaskStore) *TicketService {
	return &TicketService{tickets: tickets, history: history, tasks: tasks}
}

// CreateTicketRequest is the input for opening a ticket.
type CreateTicketRequest struct {
	CategoryID   string
	Subject      string
	RegionID     *string
	CompanyID    *string
	DocumentPath *string
}

// CreateTicket opens a ticket in the open state; the flow starts with a
// separate call.
func (s *TicketService) CreateTicket(ctx context.Context, req CreateTicketRequest, creatorID string) (*models.Ticket, error) {
	if req.CategoryID == "" {
		return nil, apperrors.NewValidationError("category_id", "category is required")
	}
	if req.Subject == "" {
		return nil, apperrors.NewValidationError("subject", "subject is required")
	}

	ticket := &models.Ticket{
		ID:           utils.GenerateID(),
		CategoryID:   req.CategoryID,
		CreatorID:    creatorID,
		RegionID:     req.RegionID,
		CompanyID:    req.CompanyID,
		Subject:      req.Subject,
		DocumentPath: req.DocumentPath,
		AssigneeIDs:  []string{},
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, err
	}
	return ticket, nil
}

// GetTicket loads one ticket.
func (s *TicketService) GetTicket(ctx context.Context, id string) (*models.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ticket == nil {
		return nil, apperrors.NewNotFoundError("ticket", id)
	}
	return ticket, nil
}

// GetHistory returns the ticket's assignment audit trail, oldest first.
func (s *TicketService) GetHistory(ctx context.Context, ticketID string) ([]*models.AssignmentHistory, error) {
	if _, err := s.GetTicket(ctx, ticketID); err != nil {
		return nil, err
	}
	return s.history.ListByTicket(ctx, ticketID)
}

// GetParallelTasks returns the signer state of the ticket's current
// step, for pending-count UIs.
func (s *TicketService) GetParallelTasks(ctx context.Context, ticketID string) ([]*models.ParallelTask, error) {
	ticket, err := s.GetTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.CurrentStepID == nil {
		return []*models.ParallelTask{}, nil
	}
	return s.tasks.ListByTicketStep(ctx, ticketID, *ticket.CurrentStepID)
}
