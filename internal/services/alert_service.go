package services

import (
	"context"

	"github.com/google/uuid"

	"schoolpay_backend/internal/cache"
	"schoolpay_backend/internal/models"
	"schoolpay_backend/internal/repositories"
	"schoolpay_backend/pkg/apperrors"
)

type AlertService struct {
	alerts *repositories.AlertRepository
	views  *cache.ViewCache
}

func NewAlertService(alerts *repositories.AlertRepository, views *cache.ViewCache) *AlertService {
	return &AlertService{alerts: alerts, views: views}
}

type CreateAlertInput struct {
	DeviceID string               `json:"device_id" binding:"required"`
	Category models.AlertCategory `json:"category" binding:"required,alertcategory"`
	Severity models.AlertSeverity `json:"severity" binding:"required,alertseverity"`
	Message  string               `json:"message" binding:"required"`
}

// Create registers a new active alert for a device.
func (s *AlertService) Create(ctx context.Context, input CreateAlertInput) (*models.DeviceAlert, error) {
	switch input.Severity {
	case models.AlertSeverityInfo, models.AlertSeverityWarning, models.AlertSeverityCritical:
	default:
		return nil, apperrors.ValidationError("alert", "Unknown severity: "+string(input.Severity))
	}
	switch input.Category {
	case models.AlertCategoryDevice, models.AlertCategoryTransaction,
		models.AlertCategorySystem, models.AlertCategorySchool:
	default:
		return nil, apperrors.ValidationError("alert", "Unknown category: "+string(input.Category))
	}

	alert := &models.DeviceAlert{
		DeviceID: input.DeviceID,
		Category: input.Category,
		Severity: input.Severity,
		Message:  input.Message,
		Status:   models.AlertStatusActive,
	}
	alert.ID = uuid.New().String()
	if err := s.alerts.Create(ctx, alert); err != nil {
		return nil, err
	}
	s.views.Invalidate(cache.AlertListKey())
	return alert, nil
}

// List returns alerts newest-first, optionally narrowed by status.
func (s *AlertService) List(ctx context.Context, status models.AlertStatus, limit int) ([]models.DeviceAlert, error) {
	if status != "" {
		switch status {
		case models.AlertStatusActive, models.AlertStatusAcknowledged, models.AlertStatusResolved:
		default:
			return nil, apperrors.ValidationError("alert", "Unknown status: "+string(status))
		}
	}
	return s.alerts.FindByStatus(ctx, status, limit)
}

// Acknowledge moves an active alert to acknowledged.
func (s *AlertService) Acknowledge(ctx context.Context, alertID, userID string) (*models.DeviceAlert, error) {
	return s.transition(ctx, alertID, userID, models.AlertStatusAcknowledged)
}

// Resolve closes an alert, stamping resolver and time. Allowed from both
// active and acknowledged.
func (s *AlertService) Resolve(ctx context.Context, alertID, userID string) (*models.DeviceAlert, error) {
	return s.transition(ctx, alertID, userID, models.AlertStatusResolved)
}

func (s *AlertService) transition(ctx context.Context, alertID, userID string, to models.AlertStatus) (*models.DeviceAlert, error) {
	alert, err := s.alerts.FindByID(ctx, alertID)
	if err != nil {
		return nil, err
	}
	if !alert.CanTransitionTo(to) {
		return nil, apperrors.InvalidStatus("alert",
			"Cannot move alert from "+string(alert.Status)+" to "+string(to))
	}

	affected, err := s.alerts.Transition(ctx, alertID, alert.Status, to, userID)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		// Lost a race against another operator.
		return nil, apperrors.ConstraintViolation(nil, "alert", "Alert was updated concurrently")
	}
	s.views.Invalidate(cache.AlertListKey())
	return s.alerts.FindByID(ctx, alertID)
}
