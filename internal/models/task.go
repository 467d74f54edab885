package models

import (
	"math"
	"time"

	"gorm.io/gorm"
)

type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "Pending"
	TaskStatusInProgress TaskStatus = "In-Progress"
	TaskStatusCompleted  TaskStatus = "Completed"
)

type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "Low"
	TaskPriorityMedium TaskPriority = "Medium"
	TaskPriorityHigh   TaskPriority = "High"
)

// ValidStatus reports whether s is one of the three allowed status values.
func ValidStatus(s TaskStatus) bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted:
		return true
	}
	return false
}

// ValidPriority reports whether p is one of the three allowed priority values.
func ValidPriority(p TaskPriority) bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh:
		return true
	}
	return false
}

type Task struct {
	ID          uint64         `gorm:"primarykey" json:"id"`
	Title       string         `gorm:"not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	Priority    TaskPriority   `gorm:"type:varchar(20);not null;default:'Medium'" json:"priority"`
	Status      TaskStatus     `gorm:"type:varchar(20);not null;default:'Pending'" json:"status"`
	DueDate     time.Time      `gorm:"not null" json:"due_date"`
	CreatedBy   uint64         `gorm:"not null" json:"created_by"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations. CreatedBy is a weak reference with no association.
	Assignments []TaskAssignment `gorm:"foreignKey:TaskID" json:"assignments,omitempty"`
	Checklist   []ChecklistItem  `gorm:"foreignKey:TaskID" json:"checklist,omitempty"`
}

// AssignedUserIDs returns the assignee IDs in assignment order.
func (t *Task) AssignedUserIDs() []uint64 {
	ids := make([]uint64, len(t.Assignments))
	for i, a := range t.Assignments {
		ids[i] = a.UserID
	}
	return ids
}

// IsAssignedTo reports whether the user appears in the task's assignments.
func (t *Task) IsAssignedTo(userID uint64) bool {
	for _, a := range t.Assignments {
		if a.UserID == userID {
			return true
		}
	}
	return false
}

// DeriveStatus maps checklist completion to a task status: no completed
// items is Pending, all items completed is Completed, anything in between
// is In-Progress. An empty checklist counts as zero completed.
func DeriveStatus(items []ChecklistItem) TaskStatus {
	completed := 0
	for _, item := range items {
		if item.Completed {
			completed++
		}
	}

	switch {
	case completed == 0:
		return TaskStatusPending
	case completed == len(items):
		return TaskStatusCompleted
	default:
		return TaskStatusInProgress
	}
}

// ChecklistProgress returns the completion percentage rounded to the
// nearest integer, 0 for an empty checklist.
func ChecklistProgress(items []ChecklistItem) int {
	if len(items) == 0 {
		return 0
	}

	completed := 0
	for _, item := range items {
		if item.Completed {
			completed++
		}
	}

	return int(math.Round(float64(completed) / float64(len(items)) * 100))
}
