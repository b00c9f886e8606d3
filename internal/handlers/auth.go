package handlers

import (
	"context"
	"errors"

	"github.com/amercier/taskdeck-api/internal/middleware"
	"github.com/amercier/taskdeck-api/internal/services"
	"github.com/amercier/taskdeck-api/pkg/dto"
	"github.com/m1z23r/drift/pkg/drift"
)

type AuthHandler struct {
	userService UserServiceInterface
	jwtService  *services.JWTService
}

func NewAuthHandler(userService UserServiceInterface, jwtService *services.JWTService) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		jwtService:  jwtService,
	}
}

func (h *AuthHandler) Login(c *drift.Context) {
	var req dto.LoginRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.Username == "" || req.Password == "" {
		c.BadRequest("username and password are required")
		return
	}

	user, err := h.userService.Authenticate(context.Background(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			c.Unauthorized("invalid credentials")
			return
		}
		c.InternalServerError("failed to authenticate")
		return
	}

	token, err := h.jwtService.GenerateToken(user)
	if err != nil {
		c.InternalServerError("failed to generate token")
		return
	}

	_ = c.JSON(200, dto.LoginResponse{Token: token})
}

func (h *AuthHandler) Me(c *drift.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		c.Unauthorized("not authenticated")
		return
	}

	_ = c.JSON(200, userResponse(user))
}
