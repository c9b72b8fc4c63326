package delivery

import (
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"timesync-backend/internal/task/domain"
	"timesync-backend/internal/task/usecase"
	"timesync-backend/pkg/ai"
	"timesync-backend/pkg/gemini"

	"github.com/gin-gonic/gin"
)

// TaskHandler handles task-related HTTP requests
type TaskHandler struct {
	taskUsecase usecase.TaskUsecase
}

// NewTaskHandler creates a new TaskHandler
func NewTaskHandler(taskUsecase usecase.TaskUsecase) *TaskHandler {
	return &TaskHandler{
		taskUsecase: taskUsecase,
	}
}

type CompletionRequest struct {
	Completed *bool `json:"completed" binding:"required"`
}

type ArchiveRequest struct {
	Archived *bool `json:"archived" binding:"required"`
}

type ReminderRequest struct {
	At time.Time `json:"at" binding:"required"`
}

type ShareRequest struct {
	Email string `json:"email"`
}

type CategoryRequest struct {
	Name string `json:"name"`
}

type MigrateRequest struct {
	DryRun bool `json:"dry_run"`
}

// respondError maps usecase errors to status codes
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrTaskNotFound), errors.Is(err, domain.ErrShareNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrSelfShare):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrEmptyDescription),
		errors.Is(err, domain.ErrInvalidPriority),
		errors.Is(err, domain.ErrInvalidDueDate),
		errors.Is(err, domain.ErrReminderInPast),
		errors.Is(err, domain.ErrRecipientRequired),
		errors.Is(err, domain.ErrEmptyCategory):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrScheduleUnavailable), errors.Is(err, gemini.ErrMissingAPIKey):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": ai.ErrScheduleFetch.Error()})
	case errors.Is(err, ai.ErrScheduleFetch):
		c.JSON(http.StatusBadGateway, gin.H{"error": ai.ErrScheduleFetch.Error()})
	default:
		log.Printf("[TaskHandler] %s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// GetTasks returns the active tasks
// GET /api/tasks?category=work&tag=urgent&search=report
func (h *TaskHandler) GetTasks(c *gin.Context) {
	filter := usecase.Filter{
		Category: c.Query("category"),
		Tag:      c.Query("tag"),
		Search:   c.Query("search"),
	}
	list, err := h.taskUsecase.FetchTasks(c.Request.Context(), c.GetString("userID"), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// GET /api/tasks/archived
func (h *TaskHandler) GetArchived(c *gin.Context) {
	tasks, err := h.taskUsecase.FetchArchived(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}

// GET /api/tasks/:id
func (h *TaskHandler) GetTaskByID(c *gin.Context) {
	task, err := h.taskUsecase.GetTask(c.Request.Context(), c.GetString("userID"), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// CreateTask creates a task from the task-entry form
// POST /api/tasks
func (h *TaskHandler) CreateTask(c *gin.Context) {
	var req usecase.TaskInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.taskUsecase.CreateTask(c.Request.Context(), c.GetString("userID"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

// PUT /api/tasks/:id
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	var updates usecase.TaskUpdateRequest
	if err := c.ShouldBindJSON(&updates); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.taskUsecase.UpdateTask(c.Request.Context(), c.GetString("userID"), c.Param("id"), updates)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// DELETE /api/tasks/:id
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	if err := h.taskUsecase.DeleteTask(c.Request.Context(), c.GetString("userID"), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}

// PATCH /api/tasks/:id/complete
func (h *TaskHandler) ToggleCompletion(c *gin.Context) {
	var req CompletionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.taskUsecase.ToggleCompletion(c.Request.Context(), c.GetString("userID"), c.Param("id"), *req.Completed)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// PATCH /api/tasks/:id/archive
func (h *TaskHandler) SetArchived(c *gin.Context) {
	var req ArchiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.taskUsecase.SetArchived(c.Request.Context(), c.GetString("userID"), c.Param("id"), *req.Archived)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// POST /api/tasks/:id/reminder
func (h *TaskHandler) SetReminder(c *gin.Context) {
	var req ReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.taskUsecase.SetReminder(c.Request.Context(), c.GetString("userID"), c.Param("id"), req.At)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// DELETE /api/tasks/:id/reminder
func (h *TaskHandler) ClearReminder(c *gin.Context) {
	if err := h.taskUsecase.ClearReminder(c.Request.Context(), c.GetString("userID"), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Reminder cleared"})
}

// ShareTask sends a copy of the task to another user's inbox
// POST /api/tasks/:id/share
func (h *TaskHandler) ShareTask(c *gin.Context) {
	var req ShareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	shared, err := h.taskUsecase.ShareTask(c.Request.Context(), c.GetString("userID"), c.Param("id"), req.Email)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, shared)
}

// GET /api/shared
func (h *TaskHandler) ListIncoming(c *gin.Context) {
	shares, err := h.taskUsecase.ListIncoming(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"shared_tasks": shares})
}

// POST /api/shared/:id/accept
func (h *TaskHandler) AcceptShare(c *gin.Context) {
	task, err := h.taskUsecase.AcceptShare(c.Request.Context(), c.GetString("userID"), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// POST /api/shared/:id/decline
func (h *TaskHandler) DeclineShare(c *gin.Context) {
	if err := h.taskUsecase.DeclineShare(c.Request.Context(), c.GetString("userID"), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Shared task declined"})
}

// GET /api/categories
func (h *TaskHandler) ListCategories(c *gin.Context) {
	categories, err := h.taskUsecase.ListCategories(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// POST /api/categories
func (h *TaskHandler) RegisterCategory(c *gin.Context) {
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	category, err := h.taskUsecase.RegisterCategory(c.Request.Context(), c.GetString("userID"), req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

// GET /api/analytics
func (h *TaskHandler) GetAnalytics(c *gin.Context) {
	analytics, err := h.taskUsecase.Analytics(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, analytics)
}

// GET /api/calendar
func (h *TaskHandler) GetCalendar(c *gin.Context) {
	events, err := h.taskUsecase.Calendar(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

// GET /api/dashboard
func (h *TaskHandler) GetDashboard(c *gin.Context) {
	dashboard, err := h.taskUsecase.Dashboard(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

// MigrateLegacy moves records from the old flat layout on demand
// POST /api/tasks/migrate
func (h *TaskHandler) MigrateLegacy(c *gin.Context) {
	var req MigrateRequest
	// An empty body means a real run.
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.taskUsecase.MigrateLegacy(c.Request.Context(), c.GetString("userID"), req.DryRun)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// SuggestSchedule asks the AI provider to plan the active tasks
// POST /api/schedule/suggest
func (h *TaskHandler) SuggestSchedule(c *gin.Context) {
	suggestion, err := h.taskUsecase.SuggestSchedule(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"suggestion": suggestion})
}
