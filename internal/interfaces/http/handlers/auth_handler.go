package handlers

import (
	stderrors "errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/turtacn/tgroups/internal/application/dto"
	"github.com/turtacn/tgroups/internal/application/service"
	"github.com/turtacn/tgroups/pkg/errors"
	"github.com/turtacn/tgroups/pkg/logger"
)

// AuthHandler handles the login endpoints.
type AuthHandler struct {
	authService service.AuthAppService
	log         logger.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService service.AuthAppService, log logger.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		log:         log.WithComponent("AuthHandler"),
	}
}

// SendPhone handles POST /api/auth/send-phone.
func (h *AuthHandler) SendPhone(c *gin.Context) {
	var req dto.SendPhoneRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.authService.SubmitPhone(c.Request.Context(), &req)
	if err != nil {
		dto.SendError(c, err)
		return
	}
	dto.SendSuccess(c, http.StatusOK, result)
}

// SendCode handles POST /api/auth/send-code.
func (h *AuthHandler) SendCode(c *gin.Context) {
	var req dto.SendCodeRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.authService.SubmitCode(c.Request.Context(), &req)
	if err != nil {
		dto.SendError(c, err)
		return
	}
	dto.SendSuccess(c, http.StatusOK, result)
}

// SendPassword handles POST /api/auth/send-password.
func (h *AuthHandler) SendPassword(c *gin.Context) {
	var req dto.SendPasswordRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.authService.SubmitPassword(c.Request.Context(), &req)
	if err != nil {
		dto.SendError(c, err)
		return
	}
	dto.SendSuccess(c, http.StatusOK, result)
}

// Logout handles POST /api/logout.
func (h *AuthHandler) Logout(c *gin.Context) {
	var req dto.LogoutRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.authService.Logout(c.Request.Context(), &req)
	if err != nil {
		dto.SendError(c, err)
		return
	}
	dto.SendSuccess(c, http.StatusOK, result)
}

// bindJSON decodes the body into req. An empty body leaves req zero-valued so the
// service reports the missing field. Malformed JSON is answered with 400.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil && !stderrors.Is(err, io.EOF) {
		dto.SendError(c, errors.ErrInvalidRequest("Invalid request body.").WithCause(err))
		return false
	}
	return true
}

//Personal.AI order the ending
