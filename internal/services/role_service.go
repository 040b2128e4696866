package services

import (
	"context"
	"fmt"
	"log/slog"

	"account-service/internal/event"
	"account-service/internal/models"
	"account-service/internal/repository"
	"account-service/utils"
)

// RoleService provides business logic for the role registry and the
// assignment ledger.
type RoleService struct {
	roleRepo       repository.RoleRepository
	eventPublisher *event.AccountEventPublisher
}

func NewRoleService(roleRepo repository.RoleRepository, eventPublisher *event.AccountEventPublisher) *RoleService {
	return &RoleService{
		roleRepo:       roleRepo,
		eventPublisher: eventPublisher,
	}
}

// CreateRole creates a role, deriving the slug from the name when none is
// supplied. Duplicate name or slug comes back as models.ErrConflict.
func (s *RoleService) CreateRole(name, slug string, description *string) (*models.Role, error) {
	if name == "" {
		return nil, fmt.Errorf("role name cannot be empty")
	}
	if slug == "" {
		slug = utils.Slugify(name)
	}
	if slug == "" {
		return nil, fmt.Errorf("role name produces an empty slug")
	}

	role := &models.Role{
		Name:        name,
		Slug:        slug,
		Description: description,
		IsActive:    true,
	}

	if err := s.roleRepo.CreateRole(role); err != nil {
		if err == models.ErrConflict {
			return nil, models.ErrConflict
		}
		return nil, fmt.Errorf("failed to create role: %w", err)
	}

	return role, nil
}

func (s *RoleService) GetRole(id int) (*models.Role, error) {
	return s.roleRepo.GetRoleByID(id)
}

func (s *RoleService) GetRoleBySlug(slug string) (*models.Role, error) {
	return s.roleRepo.GetRoleBySlug(slug)
}

// ListRoles retrieves roles ordered by name, optionally active ones only.
func (s *RoleService) ListRoles(activeOnly bool) ([]*models.Role, error) {
	var active *bool
	if activeOnly {
		active = &activeOnly
	}
	return s.roleRepo.GetRoles(active)
}

// SetRoleActive soft-enables or soft-disables a role. Ledger rows keep
// their state; an inactive role just stops satisfying has-role checks.
func (s *RoleService) SetRoleActive(id int, active bool) error {
	return s.roleRepo.SetRoleActive(id, active)
}

// AssignRole assigns a role to a user, reactivating a previously revoked
// mapping when one exists. Assigning an inactive role is refused.
func (s *RoleService) AssignRole(userID string, roleID int, assignedBy, note *string) (*models.UserRole, error) {
	role, err := s.roleRepo.GetRoleByID(roleID)
	if err != nil {
		return nil, fmt.Errorf("role not found: %w", err)
	}
	if !role.IsActive {
		return nil, models.ErrRoleInactive
	}

	entry, err := s.roleRepo.AssignRoleToUser(userID, roleID, assignedBy, note)
	if err != nil {
		return nil, err
	}

	if err := s.eventPublisher.Publish(context.Background(), event.EventRoleAssigned, userID,
		map[string]any{"role_slug": role.Slug}); err != nil {
		slog.Error("failed to publish role assigned event", "error", err)
	}

	return entry, nil
}

// RevokeRole soft-removes a user's role mapping; revoking a role the user
// does not hold is a no-op.
func (s *RoleService) RevokeRole(userID string, roleID int) error {
	if err := s.roleRepo.RevokeRoleFromUser(userID, roleID); err != nil {
		return err
	}

	if err := s.eventPublisher.Publish(context.Background(), event.EventRoleRevoked, userID,
		map[string]any{"role_id": roleID}); err != nil {
		slog.Error("failed to publish role revoked event", "error", err)
	}

	return nil
}

func (s *RoleService) GetUserActiveRoles(userID string) ([]*models.Role, error) {
	return s.roleRepo.GetUserActiveRoles(userID)
}

func (s *RoleService) UserHasRole(userID, slug string) (bool, error) {
	return s.roleRepo.UserHasRole(userID, slug)
}

// ActiveRoleSlugs is the snapshot embedded into token payloads.
func (s *RoleService) ActiveRoleSlugs(userID string) ([]string, error) {
	roles, err := s.roleRepo.GetUserActiveRoles(userID)
	if err != nil {
		return nil, err
	}
	slugs := make([]string, 0, len(roles))
	for _, role := range roles {
		slugs = append(slugs, role.Slug)
	}
	return slugs, nil
}
