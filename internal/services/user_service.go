package services

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"strings"
	"sync"
	"time"

	"account-service/internal/config"
	"account-service/internal/event"
	"account-service/internal/models"
	"account-service/internal/repository"
	"account-service/utils"

	"github.com/redis/go-redis/v9"
)

type IUserService interface {
	Register(req models.RegisterRequest) (*models.User, *models.TokenPair, error)
	Login(identifier, password string) (*models.User, *models.TokenPair, error)
	Me(userID string) (*models.MeResponse, error)
	GetUserByID(userID string) (*models.User, error)
}

type UserService struct {
	userRepo       repository.IUserRepository
	roleService    *RoleService
	sessionService *SessionService
	profileService *ProfileService
	cfg            *config.AccountServiceConfig
	eventPublisher *event.AccountEventPublisher

	globalLoginAttempt map[string]int
	mu                 *sync.Mutex
	redisClient        *redis.Client
}

func NewUserService(userRepo repository.IUserRepository, roleService *RoleService, sessionService *SessionService, profileService *ProfileService, cfg *config.AccountServiceConfig, eventPublisher *event.AccountEventPublisher, redisClient *redis.Client) IUserService {
	return &UserService{
		userRepo:           userRepo,
		roleService:        roleService,
		sessionService:     sessionService,
		profileService:     profileService,
		cfg:                cfg,
		eventPublisher:     eventPublisher,
		globalLoginAttempt: make(map[string]int),
		mu:                 &sync.Mutex{},
		redisClient:        redisClient,
	}
}

// Register validates the payload, creates the user together with its
// profile, best-effort assigns the configured default role and issues the
// first token pair.
func (s *UserService) Register(req models.RegisterRequest) (*models.User, *models.TokenPair, error) {
	verr := &models.ValidationError{}

	if req.Username == "" {
		verr.Add("username", "Username is required.")
	}
	if req.Email == "" {
		verr.Add("email", "Email is required.")
	} else if !utils.ValidateEmail(req.Email) {
		verr.Add("email", "Enter a valid email address.")
	}
	if len(req.Password) < 8 {
		verr.Add("password", "Password must be at least 8 characters.")
	}
	if req.Password != req.Password2 {
		verr.Add("password", "Password fields didn't match.")
	}

	if !verr.HasErrors() && req.Email != "" {
		exists, err := s.userRepo.EmailExists(req.Email)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to check email: %w", err)
		}
		if exists {
			verr.Add("email", "Email already registered.")
		}
	}
	if !verr.HasErrors() && req.Username != "" {
		exists, err := s.userRepo.UsernameExists(req.Username)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to check username: %w", err)
		}
		if exists {
			verr.Add("username", "Username already taken.")
		}
	}

	if verr.HasErrors() {
		return nil, nil, verr
	}

	newUser := models.User{
		ID:           "UA" + utils.GenerateRandomStringWithLength(8),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: req.Password,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
	}
	if err := s.userRepo.CreateUserWithProfile(&newUser); err != nil {
		if err == models.ErrConflict {
			verr.Add("username", "Username or email already registered.")
			return nil, nil, verr
		}
		return nil, nil, fmt.Errorf("error creating new user: %w", err)
	}

	s.assignDefaultRole(&newUser)

	pair, err := s.sessionService.IssuePair(&newUser)
	if err != nil {
		return nil, nil, err
	}

	if err := s.eventPublisher.Publish(context.Background(), event.EventUserRegistered, newUser.ID,
		map[string]any{"username": newUser.Username, "email": newUser.Email}); err != nil {
		slog.Error("failed to publish user registered event", "error", err)
	}

	return &newUser, pair, nil
}

// assignDefaultRole is best-effort: a missing default role is logged and
// registration still succeeds.
func (s *UserService) assignDefaultRole(user *models.User) {
	role, err := s.roleService.GetRoleBySlug(s.cfg.AuthCfg.DefaultRoleSlug)
	if err != nil {
		slog.Warn("default role not found, skipping assignment",
			"slug", s.cfg.AuthCfg.DefaultRoleSlug, "user_id", user.ID)
		return
	}

	if _, err := s.roleService.AssignRole(user.ID, role.ID, nil, nil); err != nil {
		slog.Warn("default role assignment failed",
			"slug", role.Slug, "user_id", user.ID, "error", err)
	}
}

// Login accepts a username or an email as identifier; an identifier
// containing '@' is resolved to its username first. All failures surface
// as the same generic credential error.
func (s *UserService) Login(identifier, password string) (*models.User, *models.TokenPair, error) {
	if identifier == "" || password == "" {
		return nil, nil, models.ErrInvalidCredentials
	}

	var user *models.User
	var err error

	if strings.Contains(identifier, "@") {
		user, err = s.userRepo.GetUserByEmail(identifier)
		if err != nil {
			// Fall back to a username lookup; some usernames contain '@'.
			user, err = s.userRepo.GetUserByUsername(identifier)
		}
	} else {
		user, err = s.userRepo.GetUserByUsername(identifier)
	}
	if err != nil {
		log.Printf("user searching failed for login: %s", err)
		return nil, nil, models.ErrInvalidCredentials
	}

	if !s.userRepo.CheckPasswordHash(password, user.PasswordHash) {
		attemptCount := s.incrementLoginAttempts(user.ID)
		if attemptCount%5 == 0 {
			log.Printf("Suspicious login activity detected for user %s: %d attempts", user.ID, attemptCount)
		}
		return nil, nil, models.ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, nil, models.ErrInvalidCredentials
	}

	pair, err := s.sessionService.IssuePair(user)
	if err != nil {
		return nil, nil, err
	}

	s.resetLoginAttempts(user.ID)

	return user, pair, nil
}

// Me resolves the authenticated user to identity, profile and the live
// active-role list read from the ledger, not from the token snapshot.
func (s *UserService) Me(userID string) (*models.MeResponse, error) {
	user, err := s.userRepo.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	profile, err := s.profileService.GetProfile(userID)
	if err != nil {
		return nil, err
	}

	roles, err := s.roleService.GetUserActiveRoles(userID)
	if err != nil {
		return nil, err
	}

	return &models.MeResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Profile:   profile,
		Roles:     roles,
	}, nil
}

func (s *UserService) GetUserByID(userID string) (*models.User, error) {
	return s.userRepo.GetUserByID(userID)
}

func (s *UserService) incrementLoginAttempts(userID string) int {
	if s.redisClient == nil {
		s.mu.Lock()
		s.globalLoginAttempt[userID]++
		attempts := s.globalLoginAttempt[userID]
		s.mu.Unlock()
		return attempts
	}

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	key := fmt.Sprintf("login_attempts:%s", userID)
	count, err := s.redisClient.Incr(ctx, key).Result()
	if err != nil {
		s.mu.Lock()
		s.globalLoginAttempt[userID]++
		attempts := s.globalLoginAttempt[userID]
		s.mu.Unlock()
		return attempts
	}

	if count == 1 {
		s.redisClient.Expire(ctx, key, 24*time.Hour)
	}

	return int(count)
}

func (s *UserService) resetLoginAttempts(userID string) {
	if s.redisClient != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()
		key := fmt.Sprintf("login_attempts:%s", userID)
		s.redisClient.Del(ctx, key)
	}

	s.mu.Lock()
	delete(s.globalLoginAttempt, userID)
	s.mu.Unlock()
}
