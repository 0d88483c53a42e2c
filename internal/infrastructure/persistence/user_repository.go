package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/4lexanderpardo09/help-desk-back-sub000/internal/domain/models"
	"github.com/4lexanderpardo09/help-desk-back-sub000/pkg/constants"
)

// UserRepository reads users and the organizational role hierarchy.
type UserRepository struct {
	db *sql.DB
	tm *TransactionManager
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *sql.DB, tm *TransactionManager) *UserRepository {
	return &UserRepository{db: db, tm: tm}
}

const userColumns = "id, name, email, password_hash, role_id, region_id, company_id, active"

func scanUser(row interface{ Scan(...interface{}) error }) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.RoleID, &u.RegionID, &u.CompanyID, &u.Active)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// GetByID returns a user by id, or nil when absent.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	q := resolveQuerier(ctx, r.tm, r.db)
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = ?", userColumns, constants.TableUser)

	u, err := scanUser(q.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user %s: %w", id, err)
	}
	return u, nil
}

// GetByEmail returns an active user by email, or nil when absent.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	q := resolveQuerier(ctx, r.tm, r.db)
	query := fmt.Sprintf(
		"SELECT %s FROM %s WHERE %s = ? AND active = true",
		userColumns, constants.TableUser, constants.FieldEmail,
	)

	u, err := scanUser(q.QueryRowContext(ctx, query, email))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user by email: %w", err)
	}
	return u, nil
}

// GetUsersByRole returns active holders of a role, optionally narrowed to
// a company and region. Results are ordered by id for deterministic
// first-candidate picking.
func (r *UserRepository) GetUsersByRole(ctx context.Context, roleID string, companyID, regionID *string) ([]*models.User, error) {
	q := resolveQuerier(ctx, r.tm, r.db)

	clauses := []string{"role_id = ?", "active = true"}
	args := []interface{}{roleID}
	if companyID != nil {
		clauses = append(clauses, "company_id = ?")
		args = append(args, *companyID)
	}
	if regionID != nil {
		clauses = append(clauses, "region_id = ?")
		args = append(args, *regionID)
	}

	query := fmt.Sprintf(
		"SELECT %s FROM %s WHERE %s ORDER BY id ASC",
		userColumns, constants.TableUser, strings.Join(clauses, " AND "),
	)

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load users for role %s: %w", roleID, err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// GetAllRoles loads the role adjacency table used by the boss-chain walk.
func (r *UserRepository) GetAllRoles(ctx context.Context) ([]*models.Role, error) {
	q := resolveQuerier(ctx, r.tm, r.db)
	query := fmt.Sprintf("SELECT id, name, parent_role_id FROM %s", constants.TableRole)

	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to load roles: %w", err)
	}
	defer rows.Close()

	var roles []*models.Role
	for rows.Next() {
		role := &models.Role{}
		if err := rows.Scan(&role.ID, &role.Name, &role.ParentRoleID); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}
