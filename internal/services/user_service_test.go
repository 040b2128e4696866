package services

import (
	"testing"
	"time"

	"account-service/internal/config"
	"account-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type userServiceFixture struct {
	svc      IUserService
	userRepo *fakeUserRepo
	roleSvc  *RoleService
}

func newUserServiceFixture(t *testing.T, seedDefaultRole bool) *userServiceFixture {
	t.Helper()

	userRepo := newFakeUserRepo()
	tokenRepo := newFakeTokenRepo()
	roleSvc := NewRoleService(newFakeRoleRepo(), nil)

	cfg := &config.AccountServiceConfig{
		AuthCfg: config.AuthConfig{
			JWTSecret:            "test-secret",
			AccessTokenLifetime:  30 * time.Minute,
			RefreshTokenLifetime: 24 * time.Hour,
			DefaultRoleSlug:      models.DefaultMemberRoleSlug,
		},
	}

	jwtSvc := NewJWTService(cfg.AuthCfg)
	sessionSvc := NewSessionService(jwtSvc, tokenRepo, userRepo, roleSvc)
	profileSvc := NewProfileService(userRepo, roleSvc, nil)

	if seedDefaultRole {
		_, err := roleSvc.CreateRole("Member", "", nil)
		require.NoError(t, err)
	}

	svc := NewUserService(userRepo, roleSvc, sessionSvc, profileSvc, cfg, nil, nil)

	return &userServiceFixture{svc: svc, userRepo: userRepo, roleSvc: roleSvc}
}

func validRegisterRequest() models.RegisterRequest {
	return models.RegisterRequest{
		Username:  "alice",
		Email:     "alice@example.com",
		Password:  "correct-horse",
		Password2: "correct-horse",
		FirstName: "Alice",
		LastName:  "Nguyen",
	}
}

func fieldsOf(t *testing.T, err error) map[string]string {
	t.Helper()

	verr, ok := err.(*models.ValidationError)
	require.True(t, ok, "expected *models.ValidationError, got %T: %v", err, err)

	fields := make(map[string]string)
	for _, f := range verr.Fields {
		fields[f.Field] = f.Message
	}
	return fields
}

func TestRegister_HappyPath(t *testing.T) {
	fx := newUserServiceFixture(t, true)

	user, pair, err := fx.svc.Register(validRegisterRequest())
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.True(t, user.IsActive)
	assert.NotEmpty(t, user.ID)
	require.NotNil(t, pair)
	assert.NotEmpty(t, pair.Access)
	assert.NotEmpty(t, pair.Refresh)

	has, err := fx.roleSvc.UserHasRole(user.ID, models.DefaultMemberRoleSlug)
	require.NoError(t, err)
	assert.True(t, has, "default role assigned on registration")
}

func TestRegister_PasswordMismatch(t *testing.T) {
	fx := newUserServiceFixture(t, true)

	req := validRegisterRequest()
	req.Password2 = "something-else"

	_, _, err := fx.svc.Register(req)
	fields := fieldsOf(t, err)
	assert.Contains(t, fields, "password")

	exists, err := fx.userRepo.UsernameExists("alice")
	require.NoError(t, err)
	assert.False(t, exists, "no user persisted on validation failure")
}

func TestRegister_InvalidFields(t *testing.T) {
	fx := newUserServiceFixture(t, true)

	req := models.RegisterRequest{
		Username:  "",
		Email:     "not-an-email",
		Password:  "short",
		Password2: "short",
	}

	_, _, err := fx.svc.Register(req)
	fields := fieldsOf(t, err)
	assert.Contains(t, fields, "username")
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "password")
}

func TestRegister_DuplicateEmail(t *testing.T) {
	fx := newUserServiceFixture(t, true)

	_, _, err := fx.svc.Register(validRegisterRequest())
	require.NoError(t, err)

	dup := validRegisterRequest()
	dup.Username = "alice2"

	_, _, err = fx.svc.Register(dup)
	fields := fieldsOf(t, err)
	assert.Contains(t, fields, "email")
}

func TestRegister_DuplicateUsername(t *testing.T) {
	fx := newUserServiceFixture(t, true)

	_, _, err := fx.svc.Register(validRegisterRequest())
	require.NoError(t, err)

	dup := validRegisterRequest()
	dup.Email = "alice2@example.com"

	_, _, err = fx.svc.Register(dup)
	fields := fieldsOf(t, err)
	assert.Contains(t, fields, "username")
}

func TestRegister_MissingDefaultRoleStillSucceeds(t *testing.T) {
	fx := newUserServiceFixture(t, false)

	user, pair, err := fx.svc.Register(validRegisterRequest())
	require.NoError(t, err)
	require.NotNil(t, pair)

	roles, err := fx.roleSvc.GetUserActiveRoles(user.ID)
	require.NoError(t, err)
	assert.Empty(t, roles)
}

func TestLogin_ByUsernameAndByEmail(t *testing.T) {
	fx := newUserServiceFixture(t, true)

	registered, _, err := fx.svc.Register(validRegisterRequest())
	require.NoError(t, err)

	byUsername, pair, err := fx.svc.Login("alice", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, byUsername.ID)
	assert.NotEmpty(t, pair.Access)

	byEmail, _, err := fx.svc.Login("alice@example.com", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, byEmail.ID)
}

func TestLogin_WrongPassword(t *testing.T) {
	fx := newUserServiceFixture(t, true)

	_, _, err := fx.svc.Register(validRegisterRequest())
	require.NoError(t, err)

	_, _, err = fx.svc.Login("alice", "wrong-password")
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)
}

func TestLogin_UnknownUser(t *testing.T) {
	fx := newUserServiceFixture(t, true)

	_, _, err := fx.svc.Login("nobody", "whatever")
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)

	_, _, err = fx.svc.Login("nobody@example.com", "whatever")
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)
}

func TestLogin_InactiveUser(t *testing.T) {
	fx := newUserServiceFixture(t, true)

	user, _, err := fx.svc.Register(validRegisterRequest())
	require.NoError(t, err)

	fx.userRepo.users[user.ID].IsActive = false

	_, _, err = fx.svc.Login("alice", "correct-horse")
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)
}

func TestLogin_EmptyInput(t *testing.T) {
	fx := newUserServiceFixture(t, true)

	_, _, err := fx.svc.Login("", "")
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)
}

func TestMe_ReturnsLiveRoles(t *testing.T) {
	fx := newUserServiceFixture(t, true)

	user, _, err := fx.svc.Register(validRegisterRequest())
	require.NoError(t, err)

	me, err := fx.svc.Me(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", me.Username)
	assert.Equal(t, "alice@example.com", me.Email)
	require.NotNil(t, me.Profile)
	require.Len(t, me.Roles, 1)
	assert.Equal(t, models.DefaultMemberRoleSlug, me.Roles[0].Slug)

	// Deactivating the role disappears from the live list even though the
	// token snapshot still carries it.
	require.NoError(t, fx.roleSvc.SetRoleActive(me.Roles[0].ID, false))

	me, err = fx.svc.Me(user.ID)
	require.NoError(t, err)
	assert.Empty(t, me.Roles)
}

func TestMe_UnknownUser(t *testing.T) {
	fx := newUserServiceFixture(t, true)

	_, err := fx.svc.Me("UAmissing1")
	assert.ErrorIs(t, err, models.ErrNotFound)
}
