package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/taskforge/task-manager-api/internal/constants"
	"github.com/taskforge/task-manager-api/internal/dto"
	"github.com/taskforge/task-manager-api/internal/models"
	"github.com/taskforge/task-manager-api/internal/repository"
)

var (
	ErrTaskNotFound       = errors.New("task not found")
	ErrTitleTooShort      = errors.New("title is required and must be at least 3 characters long")
	ErrAssignedToRequired = errors.New("assigned_to must be a non-empty array of user IDs")
	ErrInvalidStatus      = errors.New("invalid status value")
	ErrInvalidPriority    = errors.New("invalid priority value")
	ErrInvalidDueDate     = errors.New("due date must be a valid date")
	ErrNotAssigned        = errors.New("not authorized to modify this task")
)

// TaskService handles task business logic. When enforceAssigneeCheck is
// set, status and checklist updates are restricted to assignees and
// admins; by default any authenticated user may perform them, matching the
// historical API behavior.
type TaskService struct {
	taskRepo             repository.TaskRepository
	userRepo             repository.UserRepository
	enforceAssigneeCheck bool
}

// NewTaskService creates a new TaskService
func NewTaskService(taskRepo repository.TaskRepository, userRepo repository.UserRepository, enforceAssigneeCheck bool) *TaskService {
	return &TaskService{
		taskRepo:             taskRepo,
		userRepo:             userRepo,
		enforceAssigneeCheck: enforceAssigneeCheck,
	}
}

// CreateTaskInput represents input for creating a task. DueDate carries
// the raw client value so that date validation happens in field order,
// after title, assignees, status and priority.
type CreateTaskInput struct {
	Title       string
	Description string
	AssignedTo  []uint64
	Status      models.TaskStatus
	Priority    models.TaskPriority
	DueDate     string
	Checklist   []models.ChecklistItem
	CreatorID   uint64
}

// ParseDueDate accepts RFC3339 timestamps or plain dates.
func ParseDueDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	return time.Time{}, ErrInvalidDueDate
}

// UpdateTaskInput represents input for updating a task. Nil fields are
// left untouched; there is no way to clear a field by sending emptiness.
type UpdateTaskInput struct {
	Title       *string
	Description *string
	Priority    *models.TaskPriority
	Status      *models.TaskStatus
	DueDate     *time.Time
	AssignedTo  *[]uint64
	Checklist   *[]models.ChecklistItem
}

// CreateTask validates input and persists a new task with its assignments
// and checklist.
func (s *TaskService) CreateTask(input CreateTaskInput) (*dto.TaskDTO, error) {
	if len(strings.TrimSpace(input.Title)) < constants.MinTitleLength {
		return nil, ErrTitleTooShort
	}
	if len(input.AssignedTo) == 0 {
		return nil, ErrAssignedToRequired
	}
	if input.Status == "" {
		input.Status = models.TaskStatusPending
	} else if !models.ValidStatus(input.Status) {
		return nil, ErrInvalidStatus
	}
	if input.Priority == "" {
		input.Priority = models.TaskPriorityMedium
	} else if !models.ValidPriority(input.Priority) {
		return nil, ErrInvalidPriority
	}

	var dueDate time.Time
	if input.DueDate != "" {
		parsed, err := ParseDueDate(input.DueDate)
		if err != nil {
			return nil, err
		}
		dueDate = parsed
	}

	task := &models.Task{
		Title:       input.Title,
		Description: input.Description,
		Priority:    input.Priority,
		Status:      input.Status,
		DueDate:     dueDate,
		CreatedBy:   input.CreatorID,
	}

	task.Assignments = make([]models.TaskAssignment, len(input.AssignedTo))
	for i, userID := range input.AssignedTo {
		task.Assignments[i] = models.TaskAssignment{UserID: userID, Position: i}
	}

	task.Checklist = make([]models.ChecklistItem, len(input.Checklist))
	for i, item := range input.Checklist {
		task.Checklist[i] = models.ChecklistItem{Text: item.Text, Completed: item.Completed, Position: i}
	}

	if err := s.taskRepo.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return s.taskDTOByID(task.ID)
}

// ListTasks returns tasks visible to the acting user, optionally filtered
// by status, along with a status summary over the same visibility scope.
// Admins see every task; members only the ones they are assigned to.
func (s *TaskService) ListTasks(actor *models.User, statusFilter *models.TaskStatus) (*dto.TaskListResponse, error) {
	filter := repository.TaskFilter{Status: statusFilter}
	scope := repository.TaskFilter{}
	if !actor.IsAdmin() {
		filter.AssignedUserID = &actor.ID
		scope.AssignedUserID = &actor.ID
	}

	tasks, err := s.taskRepo.List(filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	usersByID, err := s.resolveAssignees(tasks)
	if err != nil {
		return nil, err
	}

	summary, err := s.statusSummary(scope)
	if err != nil {
		return nil, err
	}

	return &dto.TaskListResponse{
		Tasks:         dto.ToTaskDTOs(tasks, usersByID),
		StatusSummary: summary,
	}, nil
}

// GetTask returns a single task with assignee profiles resolved.
func (s *TaskService) GetTask(taskID uint64) (*dto.TaskDTO, error) {
	return s.taskDTOByID(taskID)
}

// DeleteTask removes a task together with its assignments and checklist.
func (s *TaskService) DeleteTask(taskID uint64) error {
	if _, err := s.taskRepo.FindByID(taskID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to find task: %w", err)
	}

	if err := s.taskRepo.Delete(taskID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	return nil
}

// UpdateTask merges the provided fields into an existing task. Absent
// fields stay unchanged.
func (s *TaskService) UpdateTask(taskID uint64, input UpdateTaskInput) (*dto.TaskDTO, error) {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if input.Title != nil {
		if len(strings.TrimSpace(*input.Title)) < constants.MinTitleLength {
			return nil, ErrTitleTooShort
		}
		task.Title = *input.Title
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Priority != nil {
		if !models.ValidPriority(*input.Priority) {
			return nil, ErrInvalidPriority
		}
		task.Priority = *input.Priority
	}
	if input.Status != nil {
		if !models.ValidStatus(*input.Status) {
			return nil, ErrInvalidStatus
		}
		task.Status = *input.Status
	}
	if input.DueDate != nil {
		task.DueDate = *input.DueDate
	}
	if input.AssignedTo != nil && len(*input.AssignedTo) == 0 {
		return nil, ErrAssignedToRequired
	}

	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	if input.AssignedTo != nil {
		if err := s.taskRepo.ReplaceAssignments(task.ID, *input.AssignedTo); err != nil {
			return nil, fmt.Errorf("failed to update assignments: %w", err)
		}
	}
	if input.Checklist != nil {
		if err := s.taskRepo.ReplaceChecklist(task.ID, *input.Checklist); err != nil {
			return nil, fmt.Errorf("failed to update checklist: %w", err)
		}
	}

	return s.taskDTOByID(task.ID)
}

// UpdateTaskStatus sets the task status when one is provided; with no
// status the call is a no-op returning current state. The assignee gate
// applies only when enforcement is enabled.
func (s *TaskService) UpdateTaskStatus(taskID uint64, status *models.TaskStatus, actor *models.User) (*dto.TaskDTO, error) {
	task, err := s.findWithRelations(taskID)
	if err != nil {
		return nil, err
	}

	if err := s.checkModifyAllowed(task, actor); err != nil {
		return nil, err
	}

	if status != nil {
		if !models.ValidStatus(*status) {
			return nil, ErrInvalidStatus
		}
		task.Status = *status
		if err := s.taskRepo.Update(task); err != nil {
			return nil, fmt.Errorf("failed to update task status: %w", err)
		}
	}

	return s.taskDTOByID(task.ID)
}

// UpdateChecklist replaces the checklist wholesale and re-derives the task
// status from item completion.
func (s *TaskService) UpdateChecklist(taskID uint64, items []models.ChecklistItem, actor *models.User) (*dto.TaskDTO, error) {
	task, err := s.findWithRelations(taskID)
	if err != nil {
		return nil, err
	}

	if err := s.checkModifyAllowed(task, actor); err != nil {
		return nil, err
	}

	if err := s.taskRepo.ReplaceChecklist(task.ID, items); err != nil {
		return nil, fmt.Errorf("failed to replace checklist: %w", err)
	}

	task.Status = models.DeriveStatus(items)
	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to update task status: %w", err)
	}

	return s.taskDTOByID(task.ID)
}

// GetDashboardData returns aggregates over every task.
func (s *TaskService) GetDashboardData() (*dto.DashboardDTO, error) {
	return s.dashboard(repository.TaskFilter{})
}

// GetUserDashboardData returns aggregates scoped to the acting user's
// assignments.
func (s *TaskService) GetUserDashboardData(actor *models.User) (*dto.DashboardDTO, error) {
	return s.dashboard(repository.TaskFilter{AssignedUserID: &actor.ID})
}

func (s *TaskService) dashboard(scope repository.TaskFilter) (*dto.DashboardDTO, error) {
	summary, err := s.statusSummary(scope)
	if err != nil {
		return nil, err
	}

	priorities, err := s.taskRepo.PriorityCounts(scope)
	if err != nil {
		return nil, fmt.Errorf("failed to count priorities: %w", err)
	}

	recent, err := s.taskRepo.ListRecent(scope, constants.RecentTaskLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent tasks: %w", err)
	}

	usersByID, err := s.resolveAssignees(recent)
	if err != nil {
		return nil, err
	}

	return &dto.DashboardDTO{
		Statistics: dto.DashboardStatisticsDTO{
			All:             summary.All,
			CompletedTasks:  summary.CompletedTasks,
			PendingTasks:    summary.PendingTasks,
			InProgressTasks: summary.InProgressTasks,
		},
		Priorities:  priorities,
		RecentTasks: dto.ToTaskDTOs(recent, usersByID),
	}, nil
}

func (s *TaskService) statusSummary(scope repository.TaskFilter) (dto.StatusSummaryDTO, error) {
	var summary dto.StatusSummaryDTO

	counts := []struct {
		status *models.TaskStatus
		target *int64
	}{
		{nil, &summary.All},
		{statusPtr(models.TaskStatusPending), &summary.PendingTasks},
		{statusPtr(models.TaskStatusInProgress), &summary.InProgressTasks},
		{statusPtr(models.TaskStatusCompleted), &summary.CompletedTasks},
	}

	for _, entry := range counts {
		count, err := s.taskRepo.Count(repository.TaskFilter{
			Status:         entry.status,
			AssignedUserID: scope.AssignedUserID,
		})
		if err != nil {
			return summary, fmt.Errorf("failed to count tasks: %w", err)
		}
		*entry.target = count
	}

	return summary, nil
}

func (s *TaskService) findWithRelations(taskID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID, "Assignments", "Checklist")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return task, nil
}

func (s *TaskService) checkModifyAllowed(task *models.Task, actor *models.User) error {
	if !s.enforceAssigneeCheck {
		return nil
	}
	if actor.IsAdmin() || task.IsAssignedTo(actor.ID) {
		return nil
	}
	return ErrNotAssigned
}

func (s *TaskService) taskDTOByID(taskID uint64) (*dto.TaskDTO, error) {
	task, err := s.findWithRelations(taskID)
	if err != nil {
		return nil, err
	}

	usersByID, err := s.resolveAssignees([]models.Task{*task})
	if err != nil {
		return nil, err
	}

	taskDTO := dto.ToTaskDTO(*task, usersByID)
	return &taskDTO, nil
}

// resolveAssignees fetches the profiles referenced by the tasks'
// assignments in one query. Missing users simply stay absent from the map.
func (s *TaskService) resolveAssignees(tasks []models.Task) (map[uint64]models.User, error) {
	seen := make(map[uint64]struct{})
	ids := make([]uint64, 0)
	for _, task := range tasks {
		for _, assignment := range task.Assignments {
			if _, ok := seen[assignment.UserID]; ok {
				continue
			}
			seen[assignment.UserID] = struct{}{}
			ids = append(ids, assignment.UserID)
		}
	}

	users, err := s.userRepo.FindByIDs(ids)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve assignees: %w", err)
	}

	usersByID := make(map[uint64]models.User, len(users))
	for _, user := range users {
		usersByID[user.ID] = user
	}

	return usersByID, nil
}

func statusPtr(status models.TaskStatus) *models.TaskStatus {
	return &status
}
