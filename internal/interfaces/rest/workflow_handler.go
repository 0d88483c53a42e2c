package rest

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/4lexanderpardo09/help-desk-back-sub000/internal/application/services"
	"github.com/4lexanderpardo09/help-desk-back-sub000/internal/domain/models"
	"github.com/4lexanderpardo09/help-desk-back-sub000/pkg/constants"
	apperrors "github.com/4lexanderpardo09/help-desk-back-sub000/pkg/errors"
)

// WorkflowService defines the interface for workflow engine operations
type WorkflowService interface {
	StartFlow(ctx context.Context, ticketID string, manualAssigneeID *string, actorID string) (*models.Ticket, error)
	Transition(ctx context.Context, ticketID, key, actorID string, opts services.TransitionOptions) (*models.Ticket, error)
	ApproveFlow(ctx context.Context, ticketID, approverID, comment string) (*models.Ticket, error)
	SignParallelTask(ctx context.Context, ticketID, actorID string, artifactPath *string) (*models.Ticket, error)
	PreviewNextStep(ctx context.Context, ticketID, key string) (*services.StepPreview, error)
}

// TicketService defines the interface for ticket reads and creation
type TicketService interface {
	CreateTicket(ctx context.Context, req services.CreateTicketRequest, creatorID string) (*models.Ticket, error)
	GetTicket(ctx context.Context, id string) (*models.Ticket, error)
	GetHistory(ctx context.Context, ticketID string) ([]*models.AssignmentHistory, error)
	GetParallelTasks(ctx context.Context, ticketID string) ([]*models.ParallelTask, error)
}

// WorkflowHandler handles the workflow engine API endpoints
type WorkflowHandler struct {
	engine  WorkflowService
	tickets TicketService
}

// NewWorkflowHandler creates a new WorkflowHandler
func NewWorkflowHandler(engine WorkflowService, tickets TicketService) *WorkflowHandler {
	return &WorkflowHandler{engine: engine, tickets: tickets}
}

// ============================================================================
// Request Types
// ============================================================================

// CreateTicketRequest represents a request to open a ticket
type CreateTicketRequest struct {
	CategoryID   string  `json:"category_id" binding:"required"`
	Subject      string  `json:"subject" binding:"required"`
	RegionID     *string `json:"region_id"`
	CompanyID    *string `json:"company_id"`
	DocumentPath *string `json:"document_path"`
}

// StartFlowRequest represents a request to start a ticket's flow
type StartFlowRequest struct {
	ManualAssigneeID *string `json:"manual_assignee_id"`
}

// TransitionRequest represents a request to advance a ticket
type TransitionRequest struct {
	Key              string            `json:"key"`
	Comment          string            `json:"comment"`
	ManualAssigneeID *string           `json:"manual_assignee_id"`
	RoleAssignments  map[string]string `json:"role_assignments"`
}

// ApproveRequest represents an approval request
type ApproveRequest struct {
	Comment string `json:"comment"`
}

// SignRequest represents an individual parallel-task signature
type SignRequest struct {
	ArtifactPath *string `json:"artifact_path"`
}

// ============================================================================
// Endpoints
// ============================================================================

// CreateTicket handles POST /api/tickets
func (h *WorkflowHandler) CreateTicket(c *gin.Context) {
	user := GetUserFromContext(c)
	if user == nil {
		RespondAppError(c, apperrors.NewUnauthorizedError("no session"))
		return
	}

	var req CreateTicketRequest
	if !BindJSON(c, &req) {
		return
	}

	ticket, err := h.tickets.CreateTicket(c.Request.Context(), services.CreateTicketRequest{
		CategoryID:   req.CategoryID,
		Subject:      req.Subject,
		RegionID:     req.RegionID,
		CompanyID:    req.CompanyID,
		DocumentPath: req.DocumentPath,
	}, user.ID)
	if err != nil {
		RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": ticket})
}

// GetTicket handles GET /api/tickets/:id
func (h *WorkflowHandler) GetTicket(c *gin.Context) {
	ticket, err := h.tickets.GetTicket(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": ticket})
}

// StartFlow handles POST /api/tickets/:id/start
func (h *WorkflowHandler) StartFlow(c *gin.Context) {
	user := GetUserFromContext(c)
	if user == nil {
		RespondAppError(c, apperrors.NewUnauthorizedError("no session"))
		return
	}

	var req StartFlowRequest
	_ = c.ShouldBindJSON(&req) // Optional body

	ticket, err := h.engine.StartFlow(c.Request.Context(), c.Param("id"), req.ManualAssigneeID, user.ID)
	if err != nil {
		RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": ticket})
}

// Transition handles POST /api/tickets/:id/transition
func (h *WorkflowHandler) Transition(c *gin.Context) {
	user := GetUserFromContext(c)
	if user == nil {
		RespondAppError(c, apperrors.NewUnauthorizedError("no session"))
		return
	}

	var req TransitionRequest
	if !BindJSON(c, &req) {
		return
	}

	ticket, err := h.engine.Transition(c.Request.Context(), c.Param("id"), req.Key, user.ID, services.TransitionOptions{
		Comment:          req.Comment,
		ManualAssigneeID: req.ManualAssigneeID,
		RoleAssignments:  req.RoleAssignments,
	})
	if err != nil {
		RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": ticket})
}

// Preview handles GET /api/tickets/:id/preview
func (h *WorkflowHandler) Preview(c *gin.Context) {
	preview, err := h.engine.PreviewNextStep(c.Request.Context(), c.Param("id"), c.Query("key"))
	if err != nil {
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": preview})
}

// Approve handles POST /api/tickets/:id/approve
func (h *WorkflowHandler) Approve(c *gin.Context) {
	user := GetUserFromContext(c)
	if user == nil {
		RespondAppError(c, apperrors.NewUnauthorizedError("no session"))
		return
	}

	var req ApproveRequest
	_ = c.ShouldBindJSON(&req) // Optional comment

	ticket, err := h.engine.ApproveFlow(c.Request.Context(), c.Param("id"), user.ID, req.Comment)
	if err != nil {
		RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"ticket":               ticket,
			constants.FieldMessage: "Approval granted",
		},
	})
}

// Sign handles POST /api/tickets/:id/sign
func (h *WorkflowHandler) Sign(c *gin.Context) {
	user := GetUserFromContext(c)
	if user == nil {
		RespondAppError(c, apperrors.NewUnauthorizedError("no session"))
		return
	}

	var req SignRequest
	_ = c.ShouldBindJSON(&req) // Optional artifact

	ticket, err := h.engine.SignParallelTask(c.Request.Context(), c.Param("id"), user.ID, req.ArtifactPath)
	if err != nil {
		RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": ticket})
}

// History handles GET /api/tickets/:id/history
func (h *WorkflowHandler) History(c *gin.Context) {
	entries, err := h.tickets.GetHistory(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": entries})
}

// Tasks handles GET /api/tickets/:id/tasks
func (h *WorkflowHandler) Tasks(c *gin.Context) {
	tasks, err := h.tickets.GetParallelTasks(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": tasks})
}
