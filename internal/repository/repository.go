package repository

import (
	"github.com/taskforge/task-manager-api/internal/models"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(email string) (*models.User, error)

	// FindByIDs finds all users whose IDs appear in the given set
	FindByIDs(ids []uint64) ([]models.User, error)

	// ListByRole lists all users with the given role
	ListByRole(role models.UserRole) ([]models.User, error)
}

// TaskFilter holds filtering options for task queries. A nil field means
// no constraint.
type TaskFilter struct {
	Status         *models.TaskStatus
	AssignedUserID *uint64
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task together with its assignments and checklist
	Create(task *models.Task) error

	// FindByID finds a task by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Task, error)

	// List retrieves tasks matching the filter, relations included
	List(filter TaskFilter) ([]models.Task, error)

	// Update persists changes to a task's own columns
	Update(task *models.Task) error

	// Delete removes a task and its assignments and checklist
	Delete(id uint64) error

	// ReplaceAssignments replaces a task's assignments wholesale,
	// preserving the order of userIDs
	ReplaceAssignments(taskID uint64, userIDs []uint64) error

	// ReplaceChecklist replaces a task's checklist wholesale,
	// preserving item order
	ReplaceChecklist(taskID uint64, items []models.ChecklistItem) error

	// Count counts tasks matching the filter
	Count(filter TaskFilter) (int64, error)

	// PriorityCounts counts tasks matching the filter grouped by priority;
	// only priorities present in the data appear in the result
	PriorityCounts(filter TaskFilter) (map[string]int64, error)

	// ListRecent returns the most recently created tasks matching the
	// filter, newest first
	ListRecent(filter TaskFilter, limit int) ([]models.Task, error)
}
