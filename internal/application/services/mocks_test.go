package services

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/4lexanderpardo09/help-desk-back-sub000/internal/domain/models"
)

// Shared testify mocks for the engine's store and port contracts.

type MockFlowDefinitionStore struct {
	mock.Mock
}

func (m *MockFlowDefinitionStore) GetActiveFlowByCategory(ctx context.Context, categoryID string) (*models.Flow, error) {
	args := m.Called(ctx, categoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Flow), args.Error(1)
}

func (m *MockFlowDefinitionStore) GetStepByID(ctx context.Context, stepID string) (*models.Step, error) {
	args := m.Called(ctx, stepID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Step), args.Error(1)
}

func (m *MockFlowDefinitionStore) GetActiveStepsByFlow(ctx context.Context, flowID string) ([]*models.Step, error) {
	args := m.Called(ctx, flowID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Step), args.Error(1)
}

func (m *MockFlowDefinitionStore) GetTransitionsFromStep(ctx context.Context, stepID string) ([]*models.Transition, error) {
	args := m.Called(ctx, stepID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Transition), args.Error(1)
}

func (m *MockFlowDefinitionStore) GetRouteFirstActiveStep(ctx context.Context, routeID string) (*models.Step, error) {
	args := m.Called(ctx, routeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Step), args.Error(1)
}

type MockTicketStore struct {
	mock.Mock
}

func (m *MockTicketStore) GetByID(ctx context.Context, id string) (*models.Ticket, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Ticket), args.Error(1)
}

func (m *MockTicketStore) GetByIDForUpdate(ctx context.Context, id string) (*models.Ticket, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Ticket), args.Error(1)
}

func (m *MockTicketStore) UpdateStep(ctx context.Context, ticketID string, stepID, approverID *string, status string) error {
	args := m.Called(ctx, ticketID, stepID, approverID, status)
	return args.Error(0)
}

func (m *MockTicketStore) ReplaceAssignees(ctx context.Context, ticketID string, userIDs []string) error {
	args := m.Called(ctx, ticketID, userIDs)
	return args.Error(0)
}

func (m *MockTicketStore) ListInProgress(ctx context.Context) ([]*models.Ticket, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Ticket), args.Error(1)
}

type MockHistoryStore struct {
	mock.Mock
}

func (m *MockHistoryStore) Insert(ctx context.Context, h *models.AssignmentHistory) error {
	args := m.Called(ctx, h)
	return args.Error(0)
}

func (m *MockHistoryStore) InsertComment(ctx context.Context, c *models.TicketComment) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockHistoryStore) GetLatestForTicketStep(ctx context.Context, ticketID, stepID string) (*models.AssignmentHistory, error) {
	args := m.Called(ctx, ticketID, stepID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AssignmentHistory), args.Error(1)
}

func (m *MockHistoryStore) UpdateSLAState(ctx context.Context, historyID, state string) error {
	args := m.Called(ctx, historyID, state)
	return args.Error(0)
}

func (m *MockHistoryStore) ListByTicket(ctx context.Context, ticketID string) ([]*models.AssignmentHistory, error) {
	args := m.Called(ctx, ticketID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.AssignmentHistory), args.Error(1)
}

type MockParallelTaskStore struct {
	mock.Mock
}

func (m *MockParallelTaskStore) InsertIdempotent(ctx context.Context, t *models.ParallelTask) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockParallelTaskStore) GetPendingForActor(ctx context.Context, ticketID, stepID, userID string) (*models.ParallelTask, error) {
	args := m.Called(ctx, ticketID, stepID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ParallelTask), args.Error(1)
}

func (m *MockParallelTaskStore) CountPending(ctx context.Context, ticketID, stepID string) (int, error) {
	args := m.Called(ctx, ticketID, stepID)
	return args.Int(0), args.Error(1)
}

func (m *MockParallelTaskStore) Complete(ctx context.Context, taskID string, artifactPath *string) error {
	args := m.Called(ctx, taskID, artifactPath)
	return args.Error(0)
}

func (m *MockParallelTaskStore) ListByTicketStep(ctx context.Context, ticketID, stepID string) ([]*models.ParallelTask, error) {
	args := m.Called(ctx, ticketID, stepID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ParallelTask), args.Error(1)
}

type MockUserDirectory struct {
	mock.Mock
}

func (m *MockUserDirectory) GetByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserDirectory) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserDirectory) GetUsersByRole(ctx context.Context, roleID string, companyID, regionID *string) ([]*models.User, error) {
	args := m.Called(ctx, roleID, companyID, regionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

func (m *MockUserDirectory) GetAllRoles(ctx context.Context) ([]*models.Role, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Role), args.Error(1)
}

type MockAssignmentResolver struct {
	mock.Mock
}

func (m *MockAssignmentResolver) GetCandidatesForStep(ctx context.Context, step *models.Step, ticket *models.Ticket) ([]*models.User, error) {
	args := m.Called(ctx, step, ticket)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

func (m *MockAssignmentResolver) GetUsersByRole(ctx context.Context, roleID string, companyID, regionID *string) ([]*models.User, error) {
	args := m.Called(ctx, roleID, companyID, regionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) NotifyAssignment(ctx context.Context, ticket *models.Ticket, user *models.User) error {
	args := m.Called(ctx, ticket, user)
	return args.Error(0)
}

func (m *MockNotifier) NotifyOverdue(ctx context.Context, userID string, payload map[string]interface{}) error {
	args := m.Called(ctx, userID, payload)
	return args.Error(0)
}

type MockStamper struct {
	mock.Mock
}

func (m *MockStamper) StampStepArtifact(ctx context.Context, documentPath, stepID, ticketID string, signerID *string) ([]byte, error) {
	args := m.Called(ctx, documentPath, stepID, ticketID, signerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// passthroughTxRunner runs the unit of work directly, standing in for the
// transactional runner in unit tests.
type passthroughTxRunner struct{}

func (passthroughTxRunner) RunInTicketTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }
