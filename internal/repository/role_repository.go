package repository

import (
	"database/sql"
	"fmt"
	"strings"

	"account-service/internal/models"

	"github.com/jmoiron/sqlx"
)

// RoleRepository handles the role registry and the user-role assignment
// ledger.
type RoleRepository interface {
	// Role registry
	CreateRole(role *models.Role) error
	GetRoleByID(id int) (*models.Role, error)
	GetRoleBySlug(slug string) (*models.Role, error)
	GetRoles(active *bool) ([]*models.Role, error)
	SetRoleActive(id int, active bool) error

	// Assignment ledger
	AssignRoleToUser(userID string, roleID int, assignedBy, note *string) (*models.UserRole, error)
	RevokeRoleFromUser(userID string, roleID int) error
	GetUserRoleEntry(userID string, roleID int) (*models.UserRole, error)
	GetUserActiveRoles(userID string) ([]*models.Role, error)
	UserHasRole(userID string, slug string) (bool, error)
}

type roleRepository struct {
	db *sqlx.DB
}

func NewRoleRepository(db *sqlx.DB) RoleRepository {
	return &roleRepository{db: db}
}

// CreateRole creates a new role. Duplicate name or slug surfaces as
// models.ErrConflict.
func (r *roleRepository) CreateRole(role *models.Role) error {
	query := `
		INSERT INTO roles (name, slug, description, is_active)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(query, role.Name, role.Slug, role.Description, role.IsActive).
		Scan(&role.ID, &role.CreatedAt, &role.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return models.ErrConflict
		}
		return fmt.Errorf("failed to create role: %w", err)
	}

	return nil
}

func (r *roleRepository) GetRoleByID(id int) (*models.Role, error) {
	role := &models.Role{}
	query := `
		SELECT id, name, slug, description, is_active, created_at, updated_at
		FROM roles
		WHERE id = $1`

	err := r.db.Get(role, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get role by ID: %w", err)
	}

	return role, nil
}

func (r *roleRepository) GetRoleBySlug(slug string) (*models.Role, error) {
	role := &models.Role{}
	query := `
		SELECT id, name, slug, description, is_active, created_at, updated_at
		FROM roles
		WHERE slug = $1`

	err := r.db.Get(role, query, slug)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get role by slug: %w", err)
	}

	return role, nil
}

// GetRoles retrieves roles ordered by name, optionally filtered on
// is_active.
func (r *roleRepository) GetRoles(active *bool) ([]*models.Role, error) {
	roles := []*models.Role{}
	var query string
	var args []interface{}

	baseQuery := `
		SELECT id, name, slug, description, is_active, created_at, updated_at
		FROM roles`

	conditions := []string{}
	if active != nil {
		conditions = append(conditions, "is_active = $1")
		args = append(args, *active)
	}

	if len(conditions) > 0 {
		query = baseQuery + " WHERE " + strings.Join(conditions, " AND ")
	} else {
		query = baseQuery
	}

	query += " ORDER BY name"

	err := r.db.Select(&roles, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get roles: %w", err)
	}

	return roles, nil
}

// SetRoleActive toggles a role's availability. Existing ledger rows are left
// untouched: a deactivated role simply stops counting for has-role checks.
func (r *roleRepository) SetRoleActive(id int, active bool) error {
	query := `UPDATE roles SET is_active = $2, updated_at = now() WHERE id = $1`

	result, err := r.db.Exec(query, id, active)
	if err != nil {
		return fmt.Errorf("failed to set role active: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return models.ErrNotFound
	}

	return nil
}

// AssignRoleToUser creates or reactivates the single (user, role) ledger
// row. The UNIQUE (user_id, role_id) constraint plus ON CONFLICT makes the
// get-or-create atomic under concurrent requests. On reactivation,
// assigned_by is only replaced when a new value is supplied, and note only
// when a non-empty one is supplied.
func (r *roleRepository) AssignRoleToUser(userID string, roleID int, assignedBy, note *string) (*models.UserRole, error) {
	query := `
        INSERT INTO user_roles (user_id, role_id, assigned_by, note, assigned_at, is_active)
        VALUES ($1, $2, $3, $4, now(), TRUE)
        ON CONFLICT (user_id, role_id) DO UPDATE SET
            is_active = true,
            assigned_at = now(),
            revoked_at = NULL,
            assigned_by = COALESCE(EXCLUDED.assigned_by, user_roles.assigned_by),
            note = COALESCE(NULLIF(EXCLUDED.note, ''), user_roles.note)
        RETURNING id, user_id, role_id, is_active, assigned_at, revoked_at, assigned_by, note`

	entry := &models.UserRole{}
	err := r.db.Get(entry, query, userID, roleID, assignedBy, note)
	if err != nil {
		// ON CONFLICT makes the upsert atomic; a unique violation can still
		// surface from a concurrent insert racing the constraint check, so
		// retry the same statement once, which then takes the update path.
		if isUniqueViolation(err) {
			if retryErr := r.db.Get(entry, query, userID, roleID, assignedBy, note); retryErr == nil {
				return entry, nil
			}
		}
		return nil, fmt.Errorf("failed to assign role to user: %w", err)
	}

	return entry, nil
}

// RevokeRoleFromUser soft-disables the active ledger row for the pair. No
// active row is a no-op, not an error.
func (r *roleRepository) RevokeRoleFromUser(userID string, roleID int) error {
	query := `
		UPDATE user_roles
		SET is_active = false, revoked_at = now()
		WHERE user_id = $1 AND role_id = $2 AND is_active = true`

	_, err := r.db.Exec(query, userID, roleID)
	if err != nil {
		return fmt.Errorf("failed to revoke role from user: %w", err)
	}

	return nil
}

func (r *roleRepository) GetUserRoleEntry(userID string, roleID int) (*models.UserRole, error) {
	entry := &models.UserRole{}
	query := `
		SELECT id, user_id, role_id, is_active, assigned_at, revoked_at, assigned_by, note
		FROM user_roles
		WHERE user_id = $1 AND role_id = $2`

	err := r.db.Get(entry, query, userID, roleID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user role entry: %w", err)
	}

	return entry, nil
}

// GetUserActiveRoles returns the distinct roles reachable through active
// ledger rows, filtered to active roles only.
func (r *roleRepository) GetUserActiveRoles(userID string) ([]*models.Role, error) {
	roles := []*models.Role{}
	query := `
		SELECT DISTINCT r.id, r.name, r.slug, r.description, r.is_active, r.created_at, r.updated_at
		FROM roles r
		INNER JOIN user_roles ur ON r.id = ur.role_id
		WHERE ur.user_id = $1 AND ur.is_active = true AND r.is_active = true
		ORDER BY r.name`

	err := r.db.Select(&roles, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user active roles: %w", err)
	}

	return roles, nil
}

// UserHasRole is true only when both the ledger row and the referenced role
// are active.
func (r *roleRepository) UserHasRole(userID string, slug string) (bool, error) {
	var exists bool
	query := `
		SELECT EXISTS(
			SELECT 1
			FROM user_roles ur
			INNER JOIN roles r ON r.id = ur.role_id
			WHERE ur.user_id = $1 AND r.slug = $2
			  AND ur.is_active = true AND r.is_active = true
		)`

	err := r.db.Get(&exists, query, userID, slug)
	if err != nil {
		return false, fmt.Errorf("failed to check user role: %w", err)
	}

	return exists, nil
}
