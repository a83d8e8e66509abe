package handlers

import (
	"github.com/gin-gonic/gin"

	"dispensary/internal/core/appctx"
	"dispensary/internal/domain/auth"
	"dispensary/internal/infrastructure/http/v1/dto"
)

// AuthHandler serves registration and login.
type AuthHandler struct {
	*BaseHandler
	service *auth.Service
}

func NewAuthHandler(service *auth.Service) *AuthHandler {
	return &AuthHandler{
		BaseHandler: NewBaseHandler(),
		service:     service,
	}
}

// Register creates a customer account. Staff accounts are provisioned by
// the seed tool, not through the public API.
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if !h.BindJSON(c, &req) {
		return
	}

	user := auth.NewUser(req.Email, req.FullName, appctx.RoleCustomer)
	if err := h.service.Register(c.Request.Context(), user, req.Password); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, user.ID.String())
}

// Login issues an access token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !h.BindJSON(c, &req) {
		return
	}

	token, expiresAt, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.TokenResponse{AccessToken: token, ExpiresAt: expiresAt})
}
