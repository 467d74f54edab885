package dto

import (
	"time"

	"github.com/taskforge/task-manager-api/internal/models"
)

// ChecklistItemDTO represents one checklist entry in API responses.
type ChecklistItemDTO struct {
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// TaskDTO represents a task in API responses. Progress is derived from the
// checklist, never stored.
type TaskDTO struct {
	ID          uint64              `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Priority    models.TaskPriority `json:"priority"`
	Status      models.TaskStatus   `json:"status"`
	DueDate     time.Time           `json:"due_date"`
	AssignedTo  []uint64            `json:"assigned_to"`
	Assignees   []UserSummaryDTO    `json:"assignees"`
	Checklist   []ChecklistItemDTO  `json:"todo_checklist"`
	Progress    int                 `json:"progress"`
	CreatedBy   uint64              `json:"created_by"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// StatusSummaryDTO holds task counts by status within a visibility scope.
type StatusSummaryDTO struct {
	All             int64 `json:"all"`
	PendingTasks    int64 `json:"pending_tasks"`
	InProgressTasks int64 `json:"in_progress_tasks"`
	CompletedTasks  int64 `json:"completed_tasks"`
}

// TaskListResponse is the payload of the list endpoint.
type TaskListResponse struct {
	Tasks         []TaskDTO        `json:"tasks"`
	StatusSummary StatusSummaryDTO `json:"status_summary"`
}

// DashboardStatisticsDTO holds the aggregate counts of a dashboard.
type DashboardStatisticsDTO struct {
	All             int64 `json:"all"`
	CompletedTasks  int64 `json:"completed_tasks"`
	PendingTasks    int64 `json:"pending_tasks"`
	InProgressTasks int64 `json:"in_progress_tasks"`
}

// DashboardDTO is the payload of the dashboard endpoints. Priorities only
// contains values present in the data.
type DashboardDTO struct {
	Statistics  DashboardStatisticsDTO `json:"statistics"`
	Priorities  map[string]int64       `json:"priorities"`
	RecentTasks []TaskDTO              `json:"recent_tasks"`
}

// ToTaskDTO converts a Task model to TaskDTO, resolving assignee profiles
// from usersByID. IDs that do not resolve get the unknown-user placeholder.
func ToTaskDTO(task models.Task, usersByID map[uint64]models.User) TaskDTO {
	dto := TaskDTO{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Priority:    task.Priority,
		Status:      task.Status,
		DueDate:     task.DueDate,
		AssignedTo:  task.AssignedUserIDs(),
		Assignees:   make([]UserSummaryDTO, 0, len(task.Assignments)),
		Checklist:   make([]ChecklistItemDTO, 0, len(task.Checklist)),
		Progress:    models.ChecklistProgress(task.Checklist),
		CreatedBy:   task.CreatedBy,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}

	for _, assignment := range task.Assignments {
		if user, ok := usersByID[assignment.UserID]; ok {
			dto.Assignees = append(dto.Assignees, ToUserSummaryDTO(user))
		} else {
			dto.Assignees = append(dto.Assignees, UnknownUserSummary(assignment.UserID))
		}
	}

	for _, item := range task.Checklist {
		dto.Checklist = append(dto.Checklist, ChecklistItemDTO{
			Text:      item.Text,
			Completed: item.Completed,
		})
	}

	return dto
}

// ToTaskDTOs converts a slice of tasks sharing one resolved user map.
func ToTaskDTOs(tasks []models.Task, usersByID map[uint64]models.User) []TaskDTO {
	dtos := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		dtos[i] = ToTaskDTO(task, usersByID)
	}
	return dtos
}
