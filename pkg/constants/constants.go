package constants

// Table names
const (
	TableFlow              = "flows"
	TableStep              = "steps"
	TableTransition        = "transitions"
	TableRoute             = "routes"
	TableRouteStep         = "route_steps"
	TableTicket            = "tickets"
	TableTicketAssignee    = "ticket_assignees"
	TableAssignmentHistory = "assignment_history"
	TableParallelTask      = "parallel_tasks"
	TableTicketComment     = "ticket_comments"
	TableUser              = "users"
	TableRole              = "roles"
	TableNotification      = "notifications"
)

// Common column names
const (
	FieldID        = "id"
	FieldName      = "name"
	FieldEmail     = "email"
	FieldActive    = "active"
	FieldCreatedAt = "created_at"
	FieldUpdatedAt = "updated_at"
)

// Ticket status values
const (
	TicketStatusOpen       = "open"
	TicketStatusInProgress = "in_progress"
	TicketStatusFinished   = "finished"
)

// Parallel task states
const (
	TaskStatePending   = "pending"
	TaskStateCompleted = "completed"
)

// SLA states recorded on assignment history rows
const (
	SLAStateOnTime = "on-time"
	SLAStateLate   = "late"
)

// History labels
const (
	HistoryLabelFlowStart = "flow start"
	HistoryLabelAdvanced  = "advanced"
)

// TransitionKeyApproved is the conventional condition key used by the
// approval shortcut.
const TransitionKeyApproved = "approved"

// Notification kinds
const (
	NotificationKindAssignment = "assignment"
	NotificationKindOverdue    = "overdue"
)

// Request/response plumbing
const (
	ContextKeyUser      = "user"
	HeaderAuthorization = "Authorization"
	ResponseError       = "error"
	FieldMessage        = "message"
)

// Defaults
const (
	DefaultPort          = "3001"
	DefaultSLASchedule   = "*/5 * * * *" // every 5 minutes
	DefaultDBName        = "helpdesk"
	TxMaxRetries         = 3
	BossWalkMaxDepth     = 16
	SortASC              = "ASC"
	SortDESC             = "DESC"
)
