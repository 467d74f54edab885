package dto

import (
	"time"

	"github.com/taskforge/task-manager-api/internal/models"
)

// UserDTO represents a user profile in API responses. The password hash is
// never part of any DTO.
type UserDTO struct {
	ID        uint64          `json:"id"`
	Name      string          `json:"name"`
	Email     string          `json:"email"`
	Role      models.UserRole `json:"role"`
	AvatarURL *string         `json:"avatar_url"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// UserSummaryDTO is the short profile embedded in task responses.
type UserSummaryDTO struct {
	ID        uint64  `json:"id"`
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	AvatarURL *string `json:"avatar_url"`
}

// MemberWithCountsDTO is a member profile augmented with task counts.
type MemberWithCountsDTO struct {
	UserDTO
	PendingTasks    int64 `json:"pending_tasks"`
	InProgressTasks int64 `json:"in_progress_tasks"`
	CompletedTasks  int64 `json:"completed_tasks"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		AvatarURL: user.AvatarURL,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

// ToUserSummaryDTO converts a User model to UserSummaryDTO
func ToUserSummaryDTO(user models.User) UserSummaryDTO {
	return UserSummaryDTO{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		AvatarURL: user.AvatarURL,
	}
}

// UnknownUserSummary is the placeholder used when an assignee ID no longer
// resolves to a stored user. Assignments are weak references, so a removed
// user must not break task reads.
func UnknownUserSummary(id uint64) UserSummaryDTO {
	return UserSummaryDTO{
		ID:   id,
		Name: "Unknown User",
	}
}
