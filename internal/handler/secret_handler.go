package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Anandhg36/RMIT-Hackathon/internal/middleware"
	"github.com/Anandhg36/RMIT-Hackathon/internal/models"
	appErrors "github.com/Anandhg36/RMIT-Hackathon/pkg/errors"
	"github.com/Anandhg36/RMIT-Hackathon/pkg/response"
)

type secretManager interface {
	StoreToken(ctx context.Context, userID, token string) error
	HasToken(ctx context.Context, userID string) (bool, error)
}

// SecretHandler manages the user's stored upstream token.
type SecretHandler struct {
	service secretManager
}

// NewSecretHandler constructs the handler.
func NewSecretHandler(service secretManager) *SecretHandler {
	return &SecretHandler{service: service}
}

// Store godoc
// @Summary Store the upstream LMS token
// @Description Seal and persist the caller's upstream API token. Replaces any previously stored token.
// @Tags Secrets
// @Accept json
// @Produce json
// @Param payload body models.StoreTokenRequest true "Upstream token"
// @Security BearerAuth
// @Success 204 "stored"
// @Failure 400 {object} response.Envelope
// @Router /secrets/upstream [put]
func (h *SecretHandler) Store(c *gin.Context) {
	claims, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.StoreTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token is required"))
		return
	}

	if err := h.service.StoreToken(c.Request.Context(), claims.UserID, req.Token); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Status godoc
// @Summary Whether an upstream token is stored
// @Tags Secrets
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /secrets/upstream [get]
func (h *SecretHandler) Status(c *gin.Context) {
	claims, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	has, err := h.service.HasToken(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"stored": has})
}
