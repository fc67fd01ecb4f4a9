package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"schoolpay_backend/internal/middleware"
	"schoolpay_backend/internal/services"
	"schoolpay_backend/pkg/apperrors"
)

type PreferenceHandler struct {
	preferences *services.PreferenceService
}

func NewPreferenceHandler(preferences *services.PreferenceService) *PreferenceHandler {
	return &PreferenceHandler{preferences: preferences}
}

func (h *PreferenceHandler) RegisterRoutes(r *gin.RouterGroup) {
	prefs := r.Group("/preferences")
	prefs.Use(middleware.AuthMiddleware())
	{
		prefs.GET("", h.GetPreferences)
		prefs.PUT("", h.UpdatePreferences)
	}
}

func (h *PreferenceHandler) GetPreferences(c *gin.Context) {
	prefs, err := h.preferences.Get(c.Request.Context(), CurrentUserID(c))
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, prefs)
}

func (h *PreferenceHandler) UpdatePreferences(c *gin.Context) {
	var input services.UpdatePreferencesInput
	if err := c.ShouldBindJSON(&input); err != nil {
		apperrors.HandleBindingError(c, err)
		return
	}

	prefs, err := h.preferences.Update(c.Request.Context(), CurrentUserID(c), input)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, prefs)
}
