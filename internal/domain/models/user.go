package models

import "time"

// User is an actor that steps can be assigned to.
type User struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	PasswordHash string  `json:"-"`
	RoleID       *string `json:"role_id,omitempty"`
	RegionID     *string `json:"region_id,omitempty"`
	CompanyID    *string `json:"company_id,omitempty"`
	Active       bool    `json:"active"`
}

// Role is a node in the organizational hierarchy. ParentRoleID points at
// the superior role; nil at the top.
type Role struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	ParentRoleID *string `json:"parent_role_id,omitempty"`
}

// Notification is a persisted in-app notification. Delivery beyond this
// row (email/push) is a collaborator concern.
type Notification struct {
	ID          string    `json:"id"`
	RecipientID string    `json:"recipient_id"`
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	Kind        string    `json:"kind"`
	IsRead      bool      `json:"is_read"`
	CreatedAt   time.Time `json:"created_at"`
}
