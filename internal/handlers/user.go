package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/amercier/taskdeck-api/internal/models"
	"github.com/amercier/taskdeck-api/internal/services"
	"github.com/amercier/taskdeck-api/pkg/dto"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
)

type UserHandler struct {
	userService UserServiceInterface
}

func NewUserHandler(userService UserServiceInterface) *UserHandler {
	return &UserHandler{userService: userService}
}

func userResponse(u *models.User) dto.UserResponse {
	return dto.UserResponse{
		ID:         u.ID,
		Username:   u.Username,
		Role:       string(u.Role),
		CompanyID:  u.CompanyID,
		TeamName:   u.TeamName,
		ValidUntil: u.ValidUntil,
		DeletedAt:  u.DeletedAt,
		CreatedAt:  u.CreatedAt,
	}
}

func userResponses(users []models.User) []dto.UserResponse {
	out := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		out = append(out, userResponse(&users[i]))
	}
	return out
}

func (h *UserHandler) Create(c *drift.Context) {
	var req dto.CreateUserRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.Username == "" || req.Password == "" {
		c.BadRequest("username and password are required")
		return
	}

	user, err := h.userService.Create(context.Background(), services.CreateUserParams{
		Username:   req.Username,
		Password:   req.Password,
		Role:       models.Role(req.Role),
		CompanyID:  req.CompanyID,
		TeamName:   req.TeamName,
		ValidUntil: req.ValidUntil,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidRole),
			errors.Is(err, services.ErrUsernameTaken),
			errors.Is(err, services.ErrManagerLimitReached),
			errors.Is(err, services.ErrTeamLimitReached),
			errors.Is(err, services.ErrTeamNameRequired),
			errors.Is(err, services.ErrUnknownTeam):
			c.BadRequest(err.Error())
		case errors.Is(err, services.ErrCompanyNotFound):
			c.NotFound("company not found")
		default:
			c.InternalServerError("failed to create user")
		}
		return
	}

	_ = c.JSON(201, userResponse(user))
}

func (h *UserHandler) List(c *drift.Context) {
	users, err := h.userService.List(context.Background())
	if err != nil {
		c.InternalServerError("failed to list users")
		return
	}

	_ = c.JSON(200, userResponses(users))
}

func (h *UserHandler) Update(c *drift.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid user id")
		return
	}

	var req dto.UpdateUserRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	err = h.userService.Update(context.Background(), id, services.UpdateUserParams{
		Password:        req.Password,
		ValidUntil:      req.ValidUntil,
		ClearValidUntil: req.ClearValidUntil,
	})
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			c.NotFound("user not found")
			return
		}
		c.InternalServerError("failed to update user")
		return
	}

	_ = c.JSON(200, map[string]string{"message": "user updated"})
}

func (h *UserHandler) Delete(c *drift.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid user id")
		return
	}

	if err := h.userService.Delete(context.Background(), id); err != nil {
		switch {
		case errors.Is(err, services.ErrUserNotFound):
			c.NotFound("user not found")
		case errors.Is(err, services.ErrCannotDeleteAdmin):
			c.BadRequest(err.Error())
		default:
			c.InternalServerError("failed to delete user")
		}
		return
	}

	_ = c.JSON(200, map[string]string{"message": "user moved to trash"})
}

func (h *UserHandler) ListTrash(c *drift.Context) {
	users, err := h.userService.ListTrash(context.Background())
	if err != nil {
		c.InternalServerError("failed to list trash")
		return
	}

	_ = c.JSON(200, userResponses(users))
}

func (h *UserHandler) Restore(c *drift.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid user id")
		return
	}

	var req dto.RestoreUserRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if err := h.userService.Restore(context.Background(), id, req.ValidUntil); err != nil {
		switch {
		case errors.Is(err, services.ErrValidUntilRequired):
			c.BadRequest(err.Error())
		case errors.Is(err, services.ErrNotInTrash):
			c.NotFound("user not found in trash")
		default:
			c.InternalServerError("failed to restore user")
		}
		return
	}

	_ = c.JSON(200, map[string]string{"message": "user restored"})
}

func (h *UserHandler) Purge(c *drift.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid user id")
		return
	}

	if err := h.userService.Purge(context.Background(), id); err != nil {
		if errors.Is(err, services.ErrNotInTrash) {
			c.NotFound("user not found in trash")
			return
		}
		c.InternalServerError("failed to purge user")
		return
	}

	_ = c.JSON(200, map[string]string{"message": "user permanently deleted"})
}

func (h *UserHandler) SweepExpired(c *drift.Context) {
	expired, err := h.userService.SweepExpired(context.Background())
	if err != nil {
		c.InternalServerError("failed to sweep expired users")
		return
	}

	_ = c.JSON(200, dto.SweepExpiredResponse{
		ExpiredUsers: userResponses(expired),
		Message:      fmt.Sprintf("%d users moved to trash", len(expired)),
	})
}
