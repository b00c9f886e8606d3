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

type IncidentHandler struct {
	incidentService IncidentServiceInterface
	taskService     TaskServiceInterface
}

func NewIncidentHandler(incidentService IncidentServiceInterface, taskService TaskServiceInterface) *IncidentHandler {
	return &IncidentHandler{
		incidentService: incidentService,
		taskService:     taskService,
	}
}

func incidentResponse(i *models.Incident) dto.IncidentResponse {
	return dto.IncidentResponse{
		ID:         i.ID,
		TaskID:     i.TaskID,
		TaskTitle:  i.TaskTitle,
		CompanyID:  i.CompanyID,
		TeamName:   i.TeamName,
		Message:    i.Message,
		CreatedAt:  i.CreatedAt,
		ResolvedAt: i.ResolvedAt,
	}
}

func incidentResponses(incidents []models.Incident) []dto.IncidentResponse {
	out := make([]dto.IncidentResponse, 0, len(incidents))
	for i := range incidents {
		out = append(out, incidentResponse(&incidents[i]))
	}
	return out
}

func (h *IncidentHandler) ListOpen(c *drift.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		c.Unauthorized("not authenticated")
		return
	}

	incidents, err := h.incidentService.ListOpenForScope(context.Background(), user.Scope())
	if err != nil {
		c.InternalServerError("failed to list incidents")
		return
	}

	_ = c.JSON(200, incidentResponses(incidents))
}

func (h *IncidentHandler) Report(c *drift.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		c.Unauthorized("not authenticated")
		return
	}

	var req dto.ReportIncidentRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.TaskID == nil {
		c.BadRequest("task_id is required")
		return
	}
	if req.Message == "" {
		c.BadRequest("message is required")
		return
	}

	task, err := h.taskService.GetByID(context.Background(), *req.TaskID)
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

	incident, err := h.incidentService.Create(context.Background(), task, req.Message, user.TeamName)
	if err != nil {
		c.InternalServerError("failed to report incident")
		return
	}

	_ = c.JSON(201, incidentResponse(incident))
}

func (h *IncidentHandler) ListResolved(c *drift.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		c.Unauthorized("not authenticated")
		return
	}

	if user.Role != models.RoleAdmin && user.Role != models.RoleManager {
		c.Forbidden("insufficient permissions")
		return
	}

	grouped, err := h.incidentService.ListResolvedGrouped(context.Background(), user.Scope())
	if err != nil {
		c.InternalServerError("failed to list resolved incidents")
		return
	}

	out := make(map[string][]dto.IncidentResponse, len(grouped))
	for team, incidents := range grouped {
		out[team] = incidentResponses(incidents)
	}
	_ = c.JSON(200, out)
}

func (h *IncidentHandler) Resolve(c *drift.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		c.Unauthorized("not authenticated")
		return
	}

	if user.Role != models.RoleAdmin && user.Role != models.RoleManager {
		c.Forbidden("insufficient permissions")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid incident id")
		return
	}

	if user.Role == models.RoleManager {
		incident, err := h.incidentService.GetByID(context.Background(), id)
		if err != nil {
			if errors.Is(err, services.ErrIncidentNotFound) {
				c.NotFound("incident not found")
				return
			}
			c.InternalServerError("failed to load incident")
			return
		}
		if user.CompanyID == nil || *user.CompanyID != incident.CompanyID {
			c.Forbidden("insufficient permissions")
			return
		}
	}

	incident, err := h.incidentService.Resolve(context.Background(), id)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrIncidentNotFound):
			c.NotFound("incident not found")
		case errors.Is(err, services.ErrAlreadyResolved):
			c.BadRequest(err.Error())
		default:
			c.InternalServerError("failed to resolve incident")
		}
		return
	}

	_ = c.JSON(200, incidentResponse(incident))
}
