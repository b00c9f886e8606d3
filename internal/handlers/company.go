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

type CompanyHandler struct {
	companyService CompanyServiceInterface
}

func NewCompanyHandler(companyService CompanyServiceInterface) *CompanyHandler {
	return &CompanyHandler{companyService: companyService}
}

func companyResponse(c *models.Company) dto.CompanyResponse {
	return dto.CompanyResponse{
		ID:          c.ID,
		Name:        c.Name,
		Teams:       c.Teams,
		NumTeams:    c.NumTeams,
		NumManagers: c.NumManagers,
		CreatedAt:   c.CreatedAt,
	}
}

func (h *CompanyHandler) List(c *drift.Context) {
	companies, err := h.companyService.List(context.Background())
	if err != nil {
		c.InternalServerError("failed to list companies")
		return
	}

	out := make([]dto.CompanyResponse, 0, len(companies))
	for i := range companies {
		out = append(out, companyResponse(&companies[i]))
	}
	_ = c.JSON(200, out)
}

func (h *CompanyHandler) Create(c *drift.Context) {
	var req dto.CompanyRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.Name == "" {
		c.BadRequest("company name is required")
		return
	}

	company, err := h.companyService.Create(context.Background(), services.CompanyParams{
		Name:        req.Name,
		Teams:       req.Teams,
		NumTeams:    req.NumTeams,
		NumManagers: req.NumManagers,
	})
	if err != nil {
		c.InternalServerError("failed to create company")
		return
	}

	_ = c.JSON(201, companyResponse(company))
}

func (h *CompanyHandler) Update(c *drift.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid company id")
		return
	}

	var req dto.CompanyRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.Name == "" {
		c.BadRequest("company name is required")
		return
	}

	company, err := h.companyService.Update(context.Background(), id, services.CompanyParams{
		Name:        req.Name,
		Teams:       req.Teams,
		NumTeams:    req.NumTeams,
		NumManagers: req.NumManagers,
	})
	if err != nil {
		if errors.Is(err, services.ErrCompanyNotFound) {
			c.NotFound("company not found")
			return
		}
		c.InternalServerError("failed to update company")
		return
	}

	_ = c.JSON(200, companyResponse(company))
}

func (h *CompanyHandler) Delete(c *drift.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid company id")
		return
	}

	if err := h.companyService.Delete(context.Background(), id); err != nil {
		if errors.Is(err, services.ErrCompanyNotFound) {
			c.NotFound("company not found")
			return
		}
		c.InternalServerError("failed to delete company")
		return
	}

	_ = c.JSON(200, map[string]string{"message": "company deleted"})
}

// MyCompany returns the caller's own company. Managers get the company they
// belong to; admins are not attached to one and get the oldest company, or a
// synthetic record when none exist yet.
func (h *CompanyHandler) MyCompany(c *drift.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		c.Unauthorized("not authenticated")
		return
	}

	switch user.Role {
	case models.RoleAdmin:
		company, err := h.companyService.FirstCompany(context.Background())
		if err != nil {
			if errors.Is(err, services.ErrCompanyNotFound) {
				_ = c.JSON(200, dto.CompanyResponse{
					ID:    uuid.Nil,
					Name:  "Administration",
					Teams: []string{},
				})
				return
			}
			c.InternalServerError("failed to load company")
			return
		}
		_ = c.JSON(200, companyResponse(company))

	case models.RoleManager:
		if user.CompanyID == nil {
			c.NotFound("company not found")
			return
		}
		company, err := h.companyService.GetByID(context.Background(), *user.CompanyID)
		if err != nil {
			if errors.Is(err, services.ErrCompanyNotFound) {
				c.NotFound("company not found")
				return
			}
			c.InternalServerError("failed to load company")
			return
		}
		_ = c.JSON(200, companyResponse(company))

	default:
		c.Forbidden("insufficient permissions")
	}
}
