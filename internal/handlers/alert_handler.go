package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"schoolpay_backend/internal/middleware"
	"schoolpay_backend/internal/models"
	"schoolpay_backend/internal/services"
	"schoolpay_backend/pkg/apperrors"
)

type AlertHandler struct {
	alerts *services.AlertService
}

func NewAlertHandler(alerts *services.AlertService) *AlertHandler {
	return &AlertHandler{alerts: alerts}
}

func (h *AlertHandler) RegisterRoutes(r *gin.RouterGroup) {
	alerts := r.Group("/alerts")
	alerts.Use(middleware.AuthMiddleware(), middleware.RequireRoles(models.UserRoleAdmin, models.UserRoleSchoolAdmin))
	{
		alerts.GET("", h.ListAlerts)
		alerts.POST("", h.CreateAlert)
		alerts.POST("/:alertID/acknowledge", h.AcknowledgeAlert)
		alerts.POST("/:alertID/resolve", h.ResolveAlert)
	}
}

// ListAlerts returns device alerts newest-first; ?status= narrows, ?limit=
// caps the page.
func (h *AlertHandler) ListAlerts(c *gin.Context) {
	limit := 100
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	alerts, err := h.alerts.List(c.Request.Context(), models.AlertStatus(c.Query("status")), limit)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"alerts": alerts})
}

func (h *AlertHandler) CreateAlert(c *gin.Context) {
	var input services.CreateAlertInput
	if err := c.ShouldBindJSON(&input); err != nil {
		apperrors.HandleBindingError(c, err)
		return
	}

	alert, err := h.alerts.Create(c.Request.Context(), input)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, alert)
}

func (h *AlertHandler) AcknowledgeAlert(c *gin.Context) {
	alert, err := h.alerts.Acknowledge(c.Request.Context(), c.Param("alertID"), CurrentUserID(c))
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, alert)
}

func (h *AlertHandler) ResolveAlert(c *gin.Context) {
	alert, err := h.alerts.Resolve(c.Request.Context(), c.Param("alertID"), CurrentUserID(c))
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, alert)
}
