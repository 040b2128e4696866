package services

import (
	"context"
	"fmt"
	"mime/multipart"

	"account-service/internal/database/minio"
	"account-service/internal/models"
	"account-service/internal/repository"
	"account-service/utils"
)

const profilePicMaxMB = 3

var profilePicExts = []string{".jpg", ".jpeg", ".png", ".gif"}

// ProfileService is a thin facade over the profile record and the
// assignment ledger, scoped to a single user per call.
type ProfileService struct {
	userRepo    repository.IUserRepository
	roleSvc     *RoleService
	minioClient *minio.MinioClient
}

func NewProfileService(userRepo repository.IUserRepository, roleSvc *RoleService, minioClient *minio.MinioClient) *ProfileService {
	return &ProfileService{
		userRepo:    userRepo,
		roleSvc:     roleSvc,
		minioClient: minioClient,
	}
}

func (s *ProfileService) GetProfile(userID string) (*models.Profile, error) {
	return s.userRepo.GetProfile(userID)
}

// UpdateProfile applies phone/bio changes. Phone must be digits only,
// optionally prefixed with +, length 7-15.
func (s *ProfileService) UpdateProfile(userID string, req models.UpdateProfileRequest) (*models.Profile, error) {
	profile, err := s.userRepo.GetProfile(userID)
	if err != nil {
		return nil, err
	}

	if req.Phone != nil && *req.Phone != "" && !utils.ValidatePhone(*req.Phone) {
		verr := &models.ValidationError{}
		verr.Add("phone", "Phone must be digits, optionally starting with +, length 7-15.")
		return nil, verr
	}

	if req.Phone != nil {
		profile.Phone = req.Phone
	}
	if req.Bio != nil {
		profile.Bio = req.Bio
	}

	if err := s.userRepo.UpdateProfile(profile); err != nil {
		return nil, err
	}

	return profile, nil
}

// UploadProfilePicture validates and stores the image (max 3 MB) and
// records its URL on the profile.
func (s *ProfileService) UploadProfilePicture(ctx context.Context, userID string, fileHeader *multipart.FileHeader) (string, error) {
	if s.minioClient == nil {
		return "", fmt.Errorf("profile picture storage is not configured")
	}

	if err := utils.ValidateImageFile(fileHeader, profilePicExts, profilePicMaxMB); err != nil {
		verr := &models.ValidationError{}
		verr.Add("profile_pic", err.Error())
		return "", verr
	}

	file, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	objectName := fmt.Sprintf("user_%s/%s", userID, utils.GenerateSafeFilename(fileHeader.Filename))
	url, err := s.minioClient.UploadFile(ctx, objectName, contentType, file, fileHeader.Size)
	if err != nil {
		return "", fmt.Errorf("failed to store profile picture: %w", err)
	}

	if err := s.userRepo.UpdateProfilePic(userID, url); err != nil {
		return "", err
	}

	return url, nil
}

// HasRole reports whether the user holds an active mapping to an active
// role with the given slug.
func (s *ProfileService) HasRole(userID, slug string) (bool, error) {
	return s.roleSvc.UserHasRole(userID, slug)
}

func (s *ProfileService) GetActiveRoles(userID string) ([]*models.Role, error) {
	return s.roleSvc.GetUserActiveRoles(userID)
}

// AddRole assigns a saved, active role to the user through the ledger.
func (s *ProfileService) AddRole(userID string, role *models.Role, assignedBy, note *string) (*models.UserRole, error) {
	if role == nil || role.ID == 0 {
		return nil, fmt.Errorf("role must be saved before assigning")
	}
	return s.roleSvc.AssignRole(userID, role.ID, assignedBy, note)
}

// RemoveRole soft-removes the user's mapping to the role.
func (s *ProfileService) RemoveRole(userID string, role *models.Role) error {
	if role == nil || role.ID == 0 {
		return fmt.Errorf("role must be saved before removing")
	}
	return s.roleSvc.RevokeRole(userID, role.ID)
}
