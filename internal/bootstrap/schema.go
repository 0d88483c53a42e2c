package bootstrap

import (
	"fmt"
	"log"

	"github.com/4lexanderpardo09/help-desk-back-sub000/internal/infrastructure/database"
)

// InitializeSchema creates the workflow tables when they do not exist.
// Definition tables (flows, steps, transitions, routes) are maintained by
// administrators; the engine only ever writes tickets, history, tasks,
// comments and notifications.
func InitializeSchema(db *database.Connection) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS roles (
			id VARCHAR(36) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			parent_role_id VARCHAR(36) NULL
		)`,
		`CREATE TABLE IF NOT EXISTS users (
			id VARCHAR(36) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			email VARCHAR(254) NOT NULL UNIQUE,
			password_hash VARCHAR(255) NOT NULL,
			role_id VARCHAR(36) NULL,
			region_id VARCHAR(36) NULL,
			company_id VARCHAR(36) NULL,
			active BOOLEAN NOT NULL DEFAULT TRUE,
			INDEX idx_users_role (role_id, active)
		)`,
		`CREATE TABLE IF NOT EXISTS flows (
			id VARCHAR(36) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			category_id VARCHAR(36) NOT NULL,
			active BOOLEAN NOT NULL DEFAULT TRUE,
			INDEX idx_flows_category (category_id, active)
		)`,
		`CREATE TABLE IF NOT EXISTS steps (
			id VARCHAR(36) PRIMARY KEY,
			flow_id VARCHAR(36) NOT NULL,
			name VARCHAR(255) NOT NULL,
			step_order INT NOT NULL,
			assigned_role_id VARCHAR(36) NULL,
			sla_hours INT NULL,
			is_parallel BOOLEAN NOT NULL DEFAULT FALSE,
			is_approval BOOLEAN NOT NULL DEFAULT FALSE,
			assign_to_creator BOOLEAN NOT NULL DEFAULT FALSE,
			needs_boss_approval BOOLEAN NOT NULL DEFAULT FALSE,
			requires_manual_selection BOOLEAN NOT NULL DEFAULT FALSE,
			active BOOLEAN NOT NULL DEFAULT TRUE,
			INDEX idx_steps_flow (flow_id, active, step_order)
		)`,
		`CREATE TABLE IF NOT EXISTS transitions (
			id VARCHAR(36) PRIMARY KEY,
			step_id VARCHAR(36) NOT NULL,
			condition_key VARCHAR(100) NOT NULL,
			condition_expr TEXT NULL,
			dest_step_id VARCHAR(36) NULL,
			dest_route_id VARCHAR(36) NULL,
			label VARCHAR(255) NULL,
			active BOOLEAN NOT NULL DEFAULT TRUE,
			INDEX idx_transitions_step (step_id, active)
		)`,
		`CREATE TABLE IF NOT EXISTS routes (
			id VARCHAR(36) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			active BOOLEAN NOT NULL DEFAULT TRUE
		)`,
		`CREATE TABLE IF NOT EXISTS route_steps (
			route_id VARCHAR(36) NOT NULL,
			step_id VARCHAR(36) NOT NULL,
			position INT NOT NULL,
			PRIMARY KEY (route_id, step_id)
		)`,
		`CREATE TABLE IF NOT EXISTS tickets (
			id VARCHAR(36) PRIMARY KEY,
			category_id VARCHAR(36) NOT NULL,
			creator_id VARCHAR(36) NOT NULL,
			region_id VARCHAR(36) NULL,
			company_id VARCHAR(36) NULL,
			subject VARCHAR(500) NOT NULL,
			document_path VARCHAR(1024) NULL,
			current_step_id VARCHAR(36) NULL,
			approver_id VARCHAR(36) NULL,
			status VARCHAR(20) NOT NULL DEFAULT 'open',
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			INDEX idx_tickets_sweep (status, current_step_id)
		)`,
		`CREATE TABLE IF NOT EXISTS ticket_assignees (
			ticket_id VARCHAR(36) NOT NULL,
			user_id VARCHAR(36) NOT NULL,
			position INT NOT NULL,
			PRIMARY KEY (ticket_id, user_id)
		)`,
		`CREATE TABLE IF NOT EXISTS assignment_history (
			id VARCHAR(36) PRIMARY KEY,
			ticket_id VARCHAR(36) NOT NULL,
			step_id VARCHAR(36) NOT NULL,
			assigned_user_id VARCHAR(36) NOT NULL,
			assigned_by_user_id VARCHAR(36) NOT NULL,
			sla_state VARCHAR(10) NOT NULL DEFAULT 'on-time',
			label VARCHAR(255) NULL,
			comment TEXT NULL,
			created_at DATETIME NOT NULL,
			INDEX idx_history_ticket_step (ticket_id, step_id, created_at)
		)`,
		`CREATE TABLE IF NOT EXISTS parallel_tasks (
			id VARCHAR(36) PRIMARY KEY,
			ticket_id VARCHAR(36) NOT NULL,
			step_id VARCHAR(36) NOT NULL,
			user_id VARCHAR(36) NOT NULL,
			role_id VARCHAR(36) NOT NULL DEFAULT '',
			state VARCHAR(20) NOT NULL DEFAULT 'pending',
			artifact_path VARCHAR(1024) NULL,
			signed_at DATETIME NULL,
			created_at DATETIME NOT NULL,
			UNIQUE KEY uq_task_signer (ticket_id, step_id, user_id),
			INDEX idx_tasks_pending (ticket_id, step_id, state)
		)`,
		`CREATE TABLE IF NOT EXISTS ticket_comments (
			id VARCHAR(36) PRIMARY KEY,
			ticket_id VARCHAR(36) NOT NULL,
			author_id VARCHAR(36) NOT NULL,
			body TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			INDEX idx_comments_ticket (ticket_id, created_at)
		)`,
		`CREATE TABLE IF NOT EXISTS notifications (
			id VARCHAR(36) PRIMARY KEY,
			recipient_id VARCHAR(36) NOT NULL,
			title VARCHAR(255) NOT NULL,
			body TEXT NOT NULL,
			kind VARCHAR(30) NOT NULL,
			is_read BOOLEAN NOT NULL DEFAULT FALSE,
			created_at DATETIME NOT NULL,
			INDEX idx_notifications_recipient (recipient_id, is_read, created_at)
		)`,
	}

	for _, stmt := range statements {
		if _, err := db.DB().Exec(stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}

	log.Printf("✅ Schema initialized (%d tables)", len(statements))
	return nil
}
