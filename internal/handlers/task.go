package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apierrors "github.com/taskforge/task-manager-api/internal/errors"
	"github.com/taskforge/task-manager-api/internal/middleware"
	"github.com/taskforge/task-manager-api/internal/models"
	"github.com/taskforge/task-manager-api/internal/services"
)

// TaskHandler coordinates task-related HTTP handlers.
type TaskHandler struct {
	taskService *services.TaskService
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// ChecklistItemRequest is a checklist entry as sent by clients.
type ChecklistItemRequest struct {
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

func toChecklistItems(items []ChecklistItemRequest) []models.ChecklistItem {
	out := make([]models.ChecklistItem, len(items))
	for i, item := range items {
		out[i] = models.ChecklistItem{Text: item.Text, Completed: item.Completed}
	}
	return out
}

// CreateTask creates a new task. Admin only at the routing layer.
func (h *TaskHandler) CreateTask(c *gin.Context) {
	actor, exists := middleware.GetUser(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	type CreateTaskRequest struct {
		Title         string                 `json:"title"`
		Description   string                 `json:"description"`
		AssignedTo    []uint64               `json:"assigned_to"`
		Status        string                 `json:"status"`
		Priority      string                 `json:"priority"`
		DueDate       string                 `json:"due_date"`
		TodoChecklist []ChecklistItemRequest `json:"todo_checklist"`
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	input := services.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		AssignedTo:  req.AssignedTo,
		Status:      models.TaskStatus(req.Status),
		Priority:    models.TaskPriority(req.Priority),
		DueDate:     req.DueDate,
		Checklist:   toChecklistItems(req.TodoChecklist),
		CreatorID:   actor.ID,
	}

	task, err := h.taskService.CreateTask(input)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Task created successfully",
		"task":    task,
	})
}

// ListTasks returns tasks visible to the acting user, optionally filtered
// by status, plus a status summary for the same scope.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	actor, exists := middleware.GetUser(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	var statusFilter *models.TaskStatus
	if raw := c.Query("status"); raw != "" {
		status := models.TaskStatus(raw)
		statusFilter = &status
	}

	result, err := h.taskService.ListTasks(actor, statusFilter)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":        "Tasks fetched successfully",
		"tasks":          result.Tasks,
		"status_summary": result.StatusSummary,
	})
}

// GetTask returns a single task with assignee profiles resolved.
func (h *TaskHandler) GetTask(c *gin.Context) {
	id, ok := taskIDParam(c)
	if !ok {
		return
	}

	task, err := h.taskService.GetTask(id)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Task fetched successfully",
		"task":    task,
	})
}

// DeleteTask removes a task. Admin only at the routing layer.
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	id, ok := taskIDParam(c)
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(id); err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Task deleted successfully",
	})
}

// UpdateTask merges the provided fields into an existing task.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	id, ok := taskIDParam(c)
	if !ok {
		return
	}

	type UpdateTaskRequest struct {
		Title         *string                 `json:"title"`
		Description   *string                 `json:"description"`
		Priority      *string                 `json:"priority"`
		Status        *string                 `json:"status"`
		DueDate       *string                 `json:"due_date"`
		AssignedTo    *[]uint64               `json:"assigned_to"`
		TodoChecklist *[]ChecklistItemRequest `json:"todo_checklist"`
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	input := services.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		AssignedTo:  req.AssignedTo,
	}
	if req.Priority != nil {
		priority := models.TaskPriority(*req.Priority)
		input.Priority = &priority
	}
	if req.Status != nil {
		status := models.TaskStatus(*req.Status)
		input.Status = &status
	}
	if req.DueDate != nil {
		dueDate, err := services.ParseDueDate(*req.DueDate)
		if err != nil {
			respondTaskError(c, err)
			return
		}
		input.DueDate = &dueDate
	}
	if req.TodoChecklist != nil {
		items := toChecklistItems(*req.TodoChecklist)
		input.Checklist = &items
	}

	task, err := h.taskService.UpdateTask(id, input)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Task updated successfully",
		"task":    task,
	})
}

// UpdateTaskStatus sets the task status; a request without a status is a
// no-op returning current state.
func (h *TaskHandler) UpdateTaskStatus(c *gin.Context) {
	actor, exists := middleware.GetUser(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	id, ok := taskIDParam(c)
	if !ok {
		return
	}

	type UpdateStatusRequest struct {
		Status *string `json:"status"`
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	var status *models.TaskStatus
	if req.Status != nil {
		s := models.TaskStatus(*req.Status)
		status = &s
	}

	task, err := h.taskService.UpdateTaskStatus(id, status, actor)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Task status updated successfully",
		"task":    task,
	})
}

// UpdateTodoChecklist replaces the checklist wholesale and re-derives the
// task status.
func (h *TaskHandler) UpdateTodoChecklist(c *gin.Context) {
	actor, exists := middleware.GetUser(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	id, ok := taskIDParam(c)
	if !ok {
		return
	}

	type UpdateChecklistRequest struct {
		TodoChecklist *[]ChecklistItemRequest `json:"todo_checklist"`
	}

	var req UpdateChecklistRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.TodoChecklist == nil {
		apierrors.BadRequest(c, "todo_checklist must be an array.")
		return
	}

	task, err := h.taskService.UpdateChecklist(id, toChecklistItems(*req.TodoChecklist), actor)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Todo CheckList updated",
		"task":    task,
	})
}

// GetDashboardData returns global task aggregates. Admin only at the
// routing layer.
func (h *TaskHandler) GetDashboardData(c *gin.Context) {
	data, err := h.taskService.GetDashboardData()
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "Dashboard data fetched successfully",
		"statistics":   data.Statistics,
		"priorities":   data.Priorities,
		"recent_tasks": data.RecentTasks,
	})
}

// GetUserDashboardData returns aggregates scoped to the acting user's
// assignments.
func (h *TaskHandler) GetUserDashboardData(c *gin.Context) {
	actor, exists := middleware.GetUser(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	data, err := h.taskService.GetUserDashboardData(actor)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "Dashboard data fetched successfully",
		"statistics":   data.Statistics,
		"priorities":   data.Priorities,
		"recent_tasks": data.RecentTasks,
	})
}

func taskIDParam(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid task ID")
		return 0, false
	}
	return id, true
}

func respondTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTitleTooShort):
		apierrors.BadRequest(c, "Title is required and must be at least 3 characters long.")
	case errors.Is(err, services.ErrAssignedToRequired):
		apierrors.BadRequest(c, "AssignedTo must be a non-empty array of user IDs.")
	case errors.Is(err, services.ErrInvalidStatus):
		apierrors.BadRequest(c, "Invalid status value.")
	case errors.Is(err, services.ErrInvalidPriority):
		apierrors.BadRequest(c, "Invalid priority value.")
	case errors.Is(err, services.ErrInvalidDueDate):
		apierrors.BadRequest(c, "Due date must be a valid date.")
	case errors.Is(err, services.ErrTaskNotFound):
		apierrors.NotFound(c, "No Task Found.")
	case errors.Is(err, services.ErrNotAssigned):
		apierrors.Forbidden(c, "Not authorized to modify this task.")
	default:
		apierrors.InternalError(c, "")
	}
}
