package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/taskforge/task-manager-api/internal/dto"
	"github.com/taskforge/task-manager-api/internal/models"
	"github.com/taskforge/task-manager-api/internal/repository"
	"github.com/taskforge/task-manager-api/internal/uploads"
)

var (
	ErrMissingFields        = errors.New("all fields are mandatory")
	ErrEmailTaken           = errors.New("user already exists")
	ErrUserNotFound         = errors.New("user not found")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrFailedToHashPassword = errors.New("failed to hash password")
	ErrAvatarUploadFailed   = errors.New("avatar upload failed")
)

// UserService handles registration, authentication checks and profile
// queries.
type UserService struct {
	userRepo         repository.UserRepository
	taskRepo         repository.TaskRepository
	uploader         uploads.Uploader
	adminInviteToken string
}

// NewUserService creates a new UserService. uploader may be nil when no
// image store is configured.
func NewUserService(userRepo repository.UserRepository, taskRepo repository.TaskRepository, uploader uploads.Uploader, adminInviteToken string) *UserService {
	return &UserService{
		userRepo:         userRepo,
		taskRepo:         taskRepo,
		uploader:         uploader,
		adminInviteToken: adminInviteToken,
	}
}

// RegisterInput represents the information needed to create a user.
// AvatarPath, when set, points at a local file to hand to the image store.
type RegisterInput struct {
	Name             string
	Email            string
	Password         string
	AdminInviteToken string
	AvatarPath       string
}

// Register creates a new user. The role is admin only when the supplied
// invite token matches the configured secret.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	name := strings.TrimSpace(input.Name)
	email := strings.TrimSpace(input.Email)
	if name == "" || email == "" || input.Password == "" {
		return nil, ErrMissingFields
	}

	if _, err := s.userRepo.FindByEmail(email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrFailedToHashPassword
	}

	role := models.RoleMember
	if s.adminInviteToken != "" && input.AdminInviteToken == s.adminInviteToken {
		role = models.RoleAdmin
	}

	var avatarURL *string
	if input.AvatarPath != "" {
		if s.uploader == nil {
			return nil, ErrAvatarUploadFailed
		}
		url, err := s.uploader.Upload(ctx, input.AvatarPath)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrAvatarUploadFailed, err)
		}
		avatarURL = &url
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hashedPassword),
		Role:         role,
		AvatarURL:    avatarURL,
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Email    string
	Password string
}

// Login verifies credentials and returns the authenticated user. A missing
// account and a wrong password are distinct failures.
func (s *UserService) Login(input LoginInput) (*models.User, error) {
	if input.Email == "" || input.Password == "" {
		return nil, ErrMissingFields
	}

	user, err := s.userRepo.FindByEmail(input.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// GetUser retrieves a user by ID.
func (s *UserService) GetUser(id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return user, nil
}

// ListMembers returns all member users, each augmented with task counts
// computed against the task store.
func (s *UserService) ListMembers() ([]dto.MemberWithCountsDTO, error) {
	users, err := s.userRepo.ListByRole(models.RoleMember)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}

	members := make([]dto.MemberWithCountsDTO, 0, len(users))
	for _, user := range users {
		counts, err := s.taskCountsFor(user.ID)
		if err != nil {
			return nil, err
		}
		counts.UserDTO = dto.ToUserDTO(user)
		members = append(members, counts)
	}

	return members, nil
}

func (s *UserService) taskCountsFor(userID uint64) (dto.MemberWithCountsDTO, error) {
	var counts dto.MemberWithCountsDTO

	statuses := []struct {
		status models.TaskStatus
		target *int64
	}{
		{models.TaskStatusPending, &counts.PendingTasks},
		{models.TaskStatusInProgress, &counts.InProgressTasks},
		{models.TaskStatusCompleted, &counts.CompletedTasks},
	}

	for _, entry := range statuses {
		status := entry.status
		count, err := s.taskRepo.Count(repository.TaskFilter{
			Status:         &status,
			AssignedUserID: &userID,
		})
		if err != nil {
			return counts, fmt.Errorf("failed to count tasks: %w", err)
		}
		*entry.target = count
	}

	return counts, nil
}
