package services

import (
	"testing"

	"account-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRoleService() (*RoleService, *fakeRoleRepo) {
	repo := newFakeRoleRepo()
	return NewRoleService(repo, nil), repo
}

func strPtr(s string) *string { return &s }

func TestCreateRole_DerivesSlugFromName(t *testing.T) {
	svc, _ := newTestRoleService()

	role, err := svc.CreateRole("Content Editor", "", nil)
	require.NoError(t, err)
	assert.Equal(t, "content-editor", role.Slug)
	assert.True(t, role.IsActive)
	assert.NotZero(t, role.ID)
}

func TestCreateRole_ExplicitSlugWins(t *testing.T) {
	svc, _ := newTestRoleService()

	role, err := svc.CreateRole("Content Editor", "editor", nil)
	require.NoError(t, err)
	assert.Equal(t, "editor", role.Slug)
}

func TestCreateRole_DuplicateIsConflict(t *testing.T) {
	svc, _ := newTestRoleService()

	_, err := svc.CreateRole("Member", "", nil)
	require.NoError(t, err)

	_, err = svc.CreateRole("Member", "", nil)
	assert.ErrorIs(t, err, models.ErrConflict)
}

func TestCreateRole_EmptyNameRejected(t *testing.T) {
	svc, _ := newTestRoleService()

	_, err := svc.CreateRole("", "", nil)
	assert.Error(t, err)

	_, err = svc.CreateRole("!!!", "", nil)
	assert.Error(t, err, "name producing an empty slug is rejected")
}

func TestAssignRole_DoubleAssignKeepsSingleEntry(t *testing.T) {
	svc, _ := newTestRoleService()
	role, err := svc.CreateRole("Member", "", nil)
	require.NoError(t, err)

	first, err := svc.AssignRole("UA1", role.ID, nil, nil)
	require.NoError(t, err)

	second, err := svc.AssignRole("UA1", role.ID, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID, "same ledger row on repeat assign")
	assert.True(t, second.IsActive)

	roles, err := svc.GetUserActiveRoles("UA1")
	require.NoError(t, err)
	assert.Len(t, roles, 1)
}

func TestAssignRole_ReactivationReusesEntry(t *testing.T) {
	svc, repo := newTestRoleService()
	role, err := svc.CreateRole("Member", "", nil)
	require.NoError(t, err)

	first, err := svc.AssignRole("UA1", role.ID, strPtr("UAadmin"), strPtr("initial grant"))
	require.NoError(t, err)

	require.NoError(t, svc.RevokeRole("UA1", role.ID))

	revoked, err := repo.GetUserRoleEntry("UA1", role.ID)
	require.NoError(t, err)
	assert.False(t, revoked.IsActive)
	assert.NotNil(t, revoked.RevokedAt)

	again, err := svc.AssignRole("UA1", role.ID, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, first.ID, again.ID, "reactivation reuses the row")
	assert.True(t, again.IsActive)
	assert.Nil(t, again.RevokedAt)
	require.NotNil(t, again.AssignedBy)
	assert.Equal(t, "UAadmin", *again.AssignedBy, "assigned_by preserved when none supplied")
	require.NotNil(t, again.Note)
	assert.Equal(t, "initial grant", *again.Note, "note preserved when none supplied")
}

func TestAssignRole_NewValuesReplaceOnReactivation(t *testing.T) {
	svc, _ := newTestRoleService()
	role, err := svc.CreateRole("Member", "", nil)
	require.NoError(t, err)

	_, err = svc.AssignRole("UA1", role.ID, strPtr("UAadmin"), strPtr("initial grant"))
	require.NoError(t, err)
	require.NoError(t, svc.RevokeRole("UA1", role.ID))

	again, err := svc.AssignRole("UA1", role.ID, strPtr("UAother"), strPtr("regrant"))
	require.NoError(t, err)
	assert.Equal(t, "UAother", *again.AssignedBy)
	assert.Equal(t, "regrant", *again.Note)
}

func TestAssignRole_InactiveRoleRefused(t *testing.T) {
	svc, _ := newTestRoleService()
	role, err := svc.CreateRole("Member", "", nil)
	require.NoError(t, err)
	require.NoError(t, svc.SetRoleActive(role.ID, false))

	_, err = svc.AssignRole("UA1", role.ID, nil, nil)
	assert.ErrorIs(t, err, models.ErrRoleInactive)
}

func TestAssignRole_UnknownRole(t *testing.T) {
	svc, _ := newTestRoleService()

	_, err := svc.AssignRole("UA1", 999, nil, nil)
	assert.Error(t, err)
}

func TestRevokeRole_WithoutAssignmentIsNoop(t *testing.T) {
	svc, _ := newTestRoleService()
	role, err := svc.CreateRole("Member", "", nil)
	require.NoError(t, err)

	assert.NoError(t, svc.RevokeRole("UA1", role.ID))
}

func TestUserHasRole_RequiresActiveRoleAndEntry(t *testing.T) {
	svc, _ := newTestRoleService()
	role, err := svc.CreateRole("Member", "", nil)
	require.NoError(t, err)

	has, err := svc.UserHasRole("UA1", "member")
	require.NoError(t, err)
	assert.False(t, has)

	_, err = svc.AssignRole("UA1", role.ID, nil, nil)
	require.NoError(t, err)

	has, err = svc.UserHasRole("UA1", "member")
	require.NoError(t, err)
	assert.True(t, has)

	// Deactivating the role suspends it for every holder without touching
	// the ledger rows.
	require.NoError(t, svc.SetRoleActive(role.ID, false))

	has, err = svc.UserHasRole("UA1", "member")
	require.NoError(t, err)
	assert.False(t, has)

	roles, err := svc.GetUserActiveRoles("UA1")
	require.NoError(t, err)
	assert.Empty(t, roles)

	// Reactivating the role restores the assignment as it was.
	require.NoError(t, svc.SetRoleActive(role.ID, true))

	has, err = svc.UserHasRole("UA1", "member")
	require.NoError(t, err)
	assert.True(t, has)
}

func TestListRoles_ActiveFilter(t *testing.T) {
	svc, _ := newTestRoleService()

	member, err := svc.CreateRole("Member", "", nil)
	require.NoError(t, err)
	_, err = svc.CreateRole("Admin", "", nil)
	require.NoError(t, err)
	require.NoError(t, svc.SetRoleActive(member.ID, false))

	all, err := svc.ListRoles(false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	active, err := svc.ListRoles(true)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "admin", active[0].Slug)
}

func TestActiveRoleSlugs(t *testing.T) {
	svc, _ := newTestRoleService()

	member, err := svc.CreateRole("Member", "", nil)
	require.NoError(t, err)
	admin, err := svc.CreateRole("Admin", "", nil)
	require.NoError(t, err)

	_, err = svc.AssignRole("UA1", member.ID, nil, nil)
	require.NoError(t, err)
	_, err = svc.AssignRole("UA1", admin.ID, nil, nil)
	require.NoError(t, err)

	slugs, err := svc.ActiveRoleSlugs("UA1")
	require.NoError(t, err)
	assert.Equal(t, []string{"admin", "member"}, slugs, "ordered by role name")
}

func TestSetRoleActive_UnknownRole(t *testing.T) {
	svc, _ := newTestRoleService()

	assert.ErrorIs(t, svc.SetRoleActive(42, false), models.ErrNotFound)
}
