package repository

import (
	"github.com/taskforge/task-manager-api/internal/models"
	"gorm.io/gorm"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

func orderByPosition(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

// Create creates a new task together with its assignments and checklist
func (r *GormTaskRepository) Create(task *models.Task) error {
	return r.db.Create(task).Error
}

// FindByID finds a task by ID with optional preloading. Assignments and
// Checklist are always loaded in insertion order.
func (r *GormTaskRepository) FindByID(id uint64, preload ...string) (*models.Task, error) {
	var task models.Task
	query := r.db

	for _, p := range preload {
		switch p {
		case "Assignments", "Checklist":
			query = query.Preload(p, orderByPosition)
		default:
			query = query.Preload(p)
		}
	}

	if err := query.First(&task, id).Error; err != nil {
		return nil, err
	}

	return &task, nil
}

// applyFilter narrows a task query to the given filter.
func (r *GormTaskRepository) applyFilter(query *gorm.DB, filter TaskFilter) *gorm.DB {
	if filter.Status != nil {
		query = query.Where("tasks.status = ?", *filter.Status)
	}
	if filter.AssignedUserID != nil {
		assignmentSubQuery := r.db.Model(&models.TaskAssignment{}).
			Select("1").
			Where("task_assignments.task_id = tasks.id").
			Where("task_assignments.user_id = ?", *filter.AssignedUserID)
		query = query.Where("EXISTS (?)", assignmentSubQuery)
	}
	return query
}

// List retrieves tasks matching the filter, relations included
func (r *GormTaskRepository) List(filter TaskFilter) ([]models.Task, error) {
	var tasks []models.Task

	query := r.applyFilter(r.db.Model(&models.Task{}), filter).
		Order("tasks.created_at DESC").
		Preload("Assignments", orderByPosition).
		Preload("Checklist", orderByPosition)

	if err := query.Find(&tasks).Error; err != nil {
		return nil, err
	}

	return tasks, nil
}

// Update persists changes to a task's own columns. Assignments and
// checklist rows are replaced through their dedicated methods.
func (r *GormTaskRepository) Update(task *models.Task) error {
	return r.db.Omit("Assignments", "Checklist").Save(task).Error
}

// Delete removes a task and its assignments and checklist
func (r *GormTaskRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", id).Delete(&models.TaskAssignment{}).Error; err != nil {
			return err
		}

		if err := tx.Where("task_id = ?", id).Delete(&models.ChecklistItem{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Task{}, id).Error
	})
}

// ReplaceAssignments replaces a task's assignments wholesale, preserving
// the order of userIDs
func (r *GormTaskRepository) ReplaceAssignments(taskID uint64, userIDs []uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", taskID).Delete(&models.TaskAssignment{}).Error; err != nil {
			return err
		}

		if len(userIDs) == 0 {
			return nil
		}

		assignments := make([]models.TaskAssignment, len(userIDs))
		for i, userID := range userIDs {
			assignments[i] = models.TaskAssignment{
				TaskID:   taskID,
				UserID:   userID,
				Position: i,
			}
		}

		return tx.Create(&assignments).Error
	})
}

// ReplaceChecklist replaces a task's checklist wholesale, preserving item
// order
func (r *GormTaskRepository) ReplaceChecklist(taskID uint64, items []models.ChecklistItem) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", taskID).Delete(&models.ChecklistItem{}).Error; err != nil {
			return err
		}

		if len(items) == 0 {
			return nil
		}

		rows := make([]models.ChecklistItem, len(items))
		for i, item := range items {
			rows[i] = models.ChecklistItem{
				TaskID:    taskID,
				Text:      item.Text,
				Completed: item.Completed,
				Position:  i,
			}
		}

		return tx.Create(&rows).Error
	})
}

// Count counts tasks matching the filter
func (r *GormTaskRepository) Count(filter TaskFilter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.Model(&models.Task{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// PriorityCounts counts tasks matching the filter grouped by priority
func (r *GormTaskRepository) PriorityCounts(filter TaskFilter) (map[string]int64, error) {
	type priorityCount struct {
		Priority string
		Count    int64
	}

	var rows []priorityCount
	query := r.applyFilter(r.db.Model(&models.Task{}), filter).
		Select("tasks.priority AS priority, COUNT(*) AS count").
		Group("tasks.priority")

	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Priority] = row.Count
	}

	return counts, nil
}

// ListRecent returns the most recently created tasks matching the filter,
// newest first
func (r *GormTaskRepository) ListRecent(filter TaskFilter, limit int) ([]models.Task, error) {
	var tasks []models.Task

	query := r.applyFilter(r.db.Model(&models.Task{}), filter).
		Order("tasks.created_at DESC").
		Limit(limit).
		Preload("Assignments", orderByPosition).
		Preload("Checklist", orderByPosition)

	if err := query.Find(&tasks).Error; err != nil {
		return nil, err
	}

	return tasks, nil
}
