package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"account-service/internal/models"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"
)

type IUserRepository interface {
	CreateUserWithProfile(user *models.User) error
	GetUserByID(id string) (*models.User, error)
	GetUserByUsername(username string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	EmailExists(email string) (bool, error)
	UsernameExists(username string) (bool, error)
	GetProfile(userID string) (*models.Profile, error)
	UpdateProfile(profile *models.Profile) error
	UpdateProfilePic(userID, url string) error
	CheckPasswordHash(password, hash string) bool
}

type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) IUserRepository {
	return &UserRepository{
		db: db,
	}
}

// CreateUserWithProfile inserts the user and its profile row in one
// transaction. Every user has exactly one profile.
func (u *UserRepository) CreateUserWithProfile(user *models.User) error {
	hashedPassword, err := u.hashPassword(user.PasswordHash)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user.PasswordHash = hashedPassword
	user.IsActive = true
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt

	tx, err := u.db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	userQuery := `
		INSERT INTO users (id, username, email, password_hash, first_name, last_name, is_active, created_at, updated_at)
		VALUES (:id, :username, :email, :password_hash, :first_name, :last_name, :is_active, :created_at, :updated_at)
	`
	if _, err := tx.NamedExec(userQuery, user); err != nil {
		if isUniqueViolation(err) {
			return models.ErrConflict
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	profileQuery := `INSERT INTO profiles (user_id, created_at, updated_at) VALUES ($1, $2, $2)`
	if _, err := tx.Exec(profileQuery, user.ID, user.CreatedAt); err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit user creation: %w", err)
	}

	return nil
}

func (r *UserRepository) GetUserByID(id string) (*models.User, error) {
	var user models.User
	query := `SELECT * FROM users WHERE id = $1`

	err := r.db.Get(&user, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}

	return &user, nil
}

func (r *UserRepository) GetUserByUsername(username string) (*models.User, error) {
	var user models.User
	query := `SELECT * FROM users WHERE username = $1`

	err := r.db.Get(&user, query, username)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}

	return &user, nil
}

func (r *UserRepository) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	query := `SELECT * FROM users WHERE email = $1`

	err := r.db.Get(&user, query, email)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return &user, nil
}

func (r *UserRepository) EmailExists(email string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`

	if err := r.db.Get(&exists, query, email); err != nil {
		return false, fmt.Errorf("failed to check email existence: %w", err)
	}
	return exists, nil
}

func (r *UserRepository) UsernameExists(username string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE username = $1)`

	if err := r.db.Get(&exists, query, username); err != nil {
		return false, fmt.Errorf("failed to check username existence: %w", err)
	}
	return exists, nil
}

// GetProfile returns the user's profile, lazily backfilling the row for
// users that predate the profiles table.
func (r *UserRepository) GetProfile(userID string) (*models.Profile, error) {
	var profile models.Profile
	query := `SELECT * FROM profiles WHERE user_id = $1`

	err := r.db.Get(&profile, query, userID)
	if err == nil {
		return &profile, nil
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	backfill := `
		INSERT INTO profiles (user_id) VALUES ($1)
		ON CONFLICT (user_id) DO NOTHING`
	if _, err := r.db.Exec(backfill, userID); err != nil {
		return nil, fmt.Errorf("failed to backfill profile: %w", err)
	}

	if err := r.db.Get(&profile, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get backfilled profile: %w", err)
	}
	return &profile, nil
}

func (r *UserRepository) UpdateProfile(profile *models.Profile) error {
	profile.UpdatedAt = time.Now()

	query := `
		UPDATE profiles
		SET phone = :phone, bio = :bio, updated_at = :updated_at
		WHERE user_id = :user_id
	`

	result, err := r.db.NamedExec(query, profile)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
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

func (r *UserRepository) UpdateProfilePic(userID, url string) error {
	query := `UPDATE profiles SET profile_pic = $1, updated_at = now() WHERE user_id = $2`

	result, err := r.db.Exec(query, url, userID)
	if err != nil {
		return fmt.Errorf("failed to update profile picture: %w", err)
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

func (r *UserRepository) hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func (r *UserRepository) CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// isUniqueViolation reports whether err is a postgres unique-constraint
// violation (class 23505).
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
