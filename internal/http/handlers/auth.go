package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stemtrack/cartline-backend/internal/http/response"
	"github.com/stemtrack/cartline-backend/internal/services"
)

type AuthHandler struct {
	authService   services.AuthService
	allowRegister bool
}

func NewAuthHandler(authService services.AuthService, allowRegister bool) *AuthHandler {
	return &AuthHandler{authService: authService, allowRegister: allowRegister}
}

type credentialsRequest struct {
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	if !h.allowRegister {
		response.RespondError(c, http.StatusForbidden, "registration_disabled", errors.New("registration is disabled"))
		return
	}

	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_payload", err)
		return
	}

	op, err := h.authService.Register(c.Request.Context(), req.Name, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrOperatorExists):
			response.RespondError(c, http.StatusConflict, "operator_exists", err)
		case errors.Is(err, services.ErrInvalidCredentials):
			response.RespondError(c, http.StatusBadRequest, "invalid_payload", err)
		default:
			response.RespondError(c, http.StatusInternalServerError, "register_failed", err)
		}
		return
	}
	response.RespondCreated(c, op)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_payload", err)
		return
	}

	token, err := h.authService.Login(c.Request.Context(), req.Name, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			response.RespondError(c, http.StatusUnauthorized, "invalid_credentials", err)
			return
		}
		response.RespondError(c, http.StatusInternalServerError, "login_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"token": token})
}
