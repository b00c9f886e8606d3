package handlers

import (
	"context"
	"errors"

	"github.com/amercier/taskdeck-api/internal/middleware"
	"github.com/amercier/taskdeck-api/internal/models"
	"github.com/amercier/taskdeck-api/internal/services"
	"github.com/amercier/taskdeck-api/pkg/dto"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
)

type TaskHandler struct {
	taskService TaskServiceInterface
}

func NewTaskHandler(taskService TaskServiceInterface) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

func taskResponse(t *models.Task) dto.TaskResponse {
	return dto.TaskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Priority:    t.Priority,
		Status:      string(t.Status),
		CompanyID:   t.CompanyID,
		TeamName:    t.TeamName,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func taskResponses(tasks []models.Task) []dto.TaskResponse {
	out := make([]dto.TaskResponse, 0, len(tasks))
	for i := range tasks {
		out = append(out, taskResponse(&tasks[i]))
	}
	return out
}

func (h *TaskHandler) List(c *drift.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		c.Unauthorized("not authenticated")
		return
	}

	tasks, err := h.taskService.ListForScope(context.Background(), user.Scope())
	if err != nil {
		c.InternalServerError("failed to list tasks")
		return
	}

	_ = c.JSON(200, taskResponses(tasks))
}

func (h *TaskHandler) History(c *drift.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		c.Unauthorized("not authenticated")
		return
	}

	tasks, err := h.taskService.History(context.Background(), user.Scope())
	if err != nil {
		c.InternalServerError("failed to load task history")
		return
	}

	_ = c.JSON(200, taskResponses(tasks))
}

func (h *TaskHandler) Create(c *drift.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		c.Unauthorized("not authenticated")
		return
	}

	var req dto.CreateTaskRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.Title == "" || req.Priority == "" {
		c.BadRequest("title and priority are required")
		return
	}

	var companyID uuid.UUID
	switch user.Role {
	case models.RoleAdmin:
		if req.CompanyID == nil {
			c.BadRequest("company_id is required")
			return
		}
		companyID = *req.CompanyID
	case models.RoleManager:
		if user.CompanyID == nil {
			c.Forbidden("no company assigned")
			return
		}
		if req.CompanyID != nil && *req.CompanyID != *user.CompanyID {
			c.Forbidden("cannot create tasks for another company")
			return
		}
		companyID = *user.CompanyID
	default:
		c.Forbidden("insufficient permissions")
		return
	}

	task, err := h.taskService.Create(context.Background(), services.CreateTaskParams{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		CompanyID:   companyID,
		TeamName:    req.TeamName,
	})
	if err != nil {
		c.InternalServerError("failed to create task")
		return
	}

	_ = c.JSON(201, taskResponse(task))
}

// canTouchTask reports whether the user may act on the task at all. Team
// members are further restricted to their own team's tasks.
func canTouchTask(user *models.User, task *models.Task) bool {
	switch user.Role {
	case models.RoleAdmin:
		return true
	case models.RoleManager:
		return user.CompanyID != nil && *user.CompanyID == task.CompanyID
	case models.RoleTeam:
		if user.CompanyID == nil || *user.CompanyID != task.CompanyID {
			return false
		}
		if task.TeamName == nil {
			return true
		}
		return user.TeamName != nil && *user.TeamName == *task.TeamName
	}
	return false
}

func (h *TaskHandler) UpdateStatus(c *drift.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		c.Unauthorized("not authenticated")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid task id")
		return
	}

	var req dto.UpdateTaskStatusRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	status := models.TaskStatus(req.Status)
	if !status.Valid() {
		c.BadRequest("invalid task status")
		return
	}

	task, err := h.taskService.GetByID(context.Background(), id)
	if err != nil {
		if errors.Is(err, services.ErrTaskNotFound) {
			c.NotFound("task not found")
			return
		}
		c.InternalServerError("failed to load task")
		return
	}

	if !canTouchTask(user, task) {
		c.Forbidden("insufficient permissions")
		return
	}

	updated, err := h.taskService.UpdateStatus(context.Background(), id, status, req.Note, user.TeamName)
	if err != nil {
		if errors.Is(err, services.ErrTaskNotFound) {
			c.NotFound("task not found")
			return
		}
		c.InternalServerError("failed to update task status")
		return
	}

	_ = c.JSON(200, taskResponse(updated))
}

func (h *TaskHandler) Delete(c *drift.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		c.Unauthorized("not authenticated")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid task id")
		return
	}

	task, err := h.taskService.GetByID(context.Background(), id)
	if err != nil {
		if errors.Is(err, services.ErrTaskNotFound) {
			c.NotFound("task not found")
			return
		}
		c.InternalServerError("failed to load task")
		return
	}

	switch user.Role {
	case models.RoleAdmin:
	case models.RoleManager:
		if user.CompanyID == nil || *user.CompanyID != task.CompanyID {
			c.Forbidden("insufficient permissions")
			return
		}
	default:
		c.Forbidden("insufficient permissions")
		return
	}

	if err := h.taskService.Delete(context.Background(), id); err != nil {
		if errors.Is(err, services.ErrTaskNotFound) {
			c.NotFound("task not found")
			return
		}
		c.InternalServerError("failed to delete task")
		return
	}

	_ = c.JSON(200, map[string]string{"message": "task deleted"})
}
