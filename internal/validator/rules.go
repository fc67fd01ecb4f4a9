package validator

import (
	"github.com/go-playground/validator/v10"

	"schoolpay_backend/internal/models"
	"schoolpay_backend/internal/models/messaging"
)

func validateUserRole(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		// Emptiness is the required tag's business.
		return true
	}
	return models.UserRole(value).Valid()
}

func validateAlertCategory(fl validator.FieldLevel) bool {
	switch models.AlertCategory(fl.Field().String()) {
	case "", models.AlertCategoryDevice, models.AlertCategoryTransaction,
		models.AlertCategorySystem, models.AlertCategorySchool:
		return true
	}
	return false
}

func validateAlertSeverity(fl validator.FieldLevel) bool {
	switch models.AlertSeverity(fl.Field().String()) {
	case "", models.AlertSeverityInfo, models.AlertSeverityWarning, models.AlertSeverityCritical:
		return true
	}
	return false
}

func validateThreadKind(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	return messaging.ThreadKind(value).Valid()
}
