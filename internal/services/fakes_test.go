package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"account-service/internal/models"
)

// ============================================================================
// IN-MEMORY FAKES
// ============================================================================

type fakeRoleRepo struct {
	nextRoleID  int
	nextEntryID int
	roles       map[int]*models.Role
	entries     map[string]*models.UserRole // keyed userID|roleID
}

func newFakeRoleRepo() *fakeRoleRepo {
	return &fakeRoleRepo{
		nextRoleID:  1,
		nextEntryID: 1,
		roles:       make(map[int]*models.Role),
		entries:     make(map[string]*models.UserRole),
	}
}

func entryKey(userID string, roleID int) string {
	return fmt.Sprintf("%s|%d", userID, roleID)
}

func (f *fakeRoleRepo) CreateRole(role *models.Role) error {
	for _, existing := range f.roles {
		if existing.Name == role.Name || existing.Slug == role.Slug {
			return models.ErrConflict
		}
	}
	role.ID = f.nextRoleID
	f.nextRoleID++
	role.CreatedAt = time.Now()
	role.UpdatedAt = role.CreatedAt
	clone := *role
	f.roles[role.ID] = &clone
	return nil
}

func (f *fakeRoleRepo) GetRoleByID(id int) (*models.Role, error) {
	role, ok := f.roles[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	clone := *role
	return &clone, nil
}

func (f *fakeRoleRepo) GetRoleBySlug(slug string) (*models.Role, error) {
	for _, role := range f.roles {
		if role.Slug == slug {
			clone := *role
			return &clone, nil
		}
	}
	return nil, models.ErrNotFound
}

func (f *fakeRoleRepo) GetRoles(active *bool) ([]*models.Role, error) {
	roles := []*models.Role{}
	for _, role := range f.roles {
		if active != nil && role.IsActive != *active {
			continue
		}
		clone := *role
		roles = append(roles, &clone)
	}
	sort.Slice(roles, func(i, j int) bool { return roles[i].Name < roles[j].Name })
	return roles, nil
}

func (f *fakeRoleRepo) SetRoleActive(id int, active bool) error {
	role, ok := f.roles[id]
	if !ok {
		return models.ErrNotFound
	}
	role.IsActive = active
	role.UpdatedAt = time.Now()
	return nil
}

func (f *fakeRoleRepo) AssignRoleToUser(userID string, roleID int, assignedBy, note *string) (*models.UserRole, error) {
	key := entryKey(userID, roleID)
	entry, ok := f.entries[key]
	if !ok {
		entry = &models.UserRole{
			ID:     f.nextEntryID,
			UserID: userID,
			RoleID: roleID,
		}
		f.nextEntryID++
		f.entries[key] = entry
	}

	entry.IsActive = true
	entry.AssignedAt = time.Now()
	entry.RevokedAt = nil
	if assignedBy != nil {
		entry.AssignedBy = assignedBy
	}
	if note != nil && *note != "" {
		entry.Note = note
	}

	clone := *entry
	return &clone, nil
}

func (f *fakeRoleRepo) RevokeRoleFromUser(userID string, roleID int) error {
	entry, ok := f.entries[entryKey(userID, roleID)]
	if !ok || !entry.IsActive {
		return nil
	}
	entry.IsActive = false
	now := time.Now()
	entry.RevokedAt = &now
	return nil
}

func (f *fakeRoleRepo) GetUserRoleEntry(userID string, roleID int) (*models.UserRole, error) {
	entry, ok := f.entries[entryKey(userID, roleID)]
	if !ok {
		return nil, models.ErrNotFound
	}
	clone := *entry
	return &clone, nil
}

func (f *fakeRoleRepo) GetUserActiveRoles(userID string) ([]*models.Role, error) {
	roles := []*models.Role{}
	for _, entry := range f.entries {
		if entry.UserID != userID || !entry.IsActive {
			continue
		}
		role, ok := f.roles[entry.RoleID]
		if !ok || !role.IsActive {
			continue
		}
		clone := *role
		roles = append(roles, &clone)
	}
	sort.Slice(roles, func(i, j int) bool { return roles[i].Name < roles[j].Name })
	return roles, nil
}

func (f *fakeRoleRepo) UserHasRole(userID string, slug string) (bool, error) {
	for _, entry := range f.entries {
		if entry.UserID != userID || !entry.IsActive {
			continue
		}
		role, ok := f.roles[entry.RoleID]
		if ok && role.IsActive && role.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

type fakeUserRepo struct {
	users    map[string]*models.User
	profiles map[string]*models.Profile
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users:    make(map[string]*models.User),
		profiles: make(map[string]*models.Profile),
	}
}

func (f *fakeUserRepo) CreateUserWithProfile(user *models.User) error {
	for _, existing := range f.users {
		if existing.Username == user.Username || existing.Email == user.Email {
			return models.ErrConflict
		}
	}
	user.IsActive = true
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	clone := *user
	f.users[user.ID] = &clone
	f.profiles[user.ID] = &models.Profile{
		UserID:    user.ID,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.CreatedAt,
	}
	return nil
}

func (f *fakeUserRepo) GetUserByID(id string) (*models.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	clone := *user
	return &clone, nil
}

func (f *fakeUserRepo) GetUserByUsername(username string) (*models.User, error) {
	for _, user := range f.users {
		if user.Username == username {
			clone := *user
			return &clone, nil
		}
	}
	return nil, models.ErrNotFound
}

func (f *fakeUserRepo) GetUserByEmail(email string) (*models.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, models.ErrNotFound
}

func (f *fakeUserRepo) EmailExists(email string) (bool, error) {
	_, err := f.GetUserByEmail(email)
	return err == nil, nil
}

func (f *fakeUserRepo) UsernameExists(username string) (bool, error) {
	_, err := f.GetUserByUsername(username)
	return err == nil, nil
}

func (f *fakeUserRepo) GetProfile(userID string) (*models.Profile, error) {
	profile, ok := f.profiles[userID]
	if !ok {
		profile = &models.Profile{UserID: userID}
		f.profiles[userID] = profile
	}
	clone := *profile
	return &clone, nil
}

func (f *fakeUserRepo) UpdateProfile(profile *models.Profile) error {
	stored, ok := f.profiles[profile.UserID]
	if !ok {
		return models.ErrNotFound
	}
	stored.Phone = profile.Phone
	stored.Bio = profile.Bio
	stored.UpdatedAt = time.Now()
	return nil
}

func (f *fakeUserRepo) UpdateProfilePic(userID, url string) error {
	stored, ok := f.profiles[userID]
	if !ok {
		return models.ErrNotFound
	}
	stored.ProfilePic = &url
	return nil
}

// Passwords are stored verbatim here; hashing is exercised against the real
// repository, not the fake.
func (f *fakeUserRepo) CheckPasswordHash(password, hash string) bool {
	return password == hash
}

type fakeTokenRepo struct {
	blacklisted map[string]bool
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{blacklisted: make(map[string]bool)}
}

func (f *fakeTokenRepo) BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error {
	if jti == "" {
		return fmt.Errorf("token ID cannot be empty")
	}
	if ttl <= 0 {
		return nil
	}
	f.blacklisted[jti] = true
	return nil
}

func (f *fakeTokenRepo) IsTokenBlacklisted(ctx context.Context, jti string) (bool, error) {
	if jti == "" {
		return false, fmt.Errorf("token ID cannot be empty")
	}
	return f.blacklisted[jti], nil
}
