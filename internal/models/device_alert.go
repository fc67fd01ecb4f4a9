package models

import (
	"time"

	"gorm.io/datatypes"
)

type AlertCategory string

const (
	AlertCategoryDevice      AlertCategory = "device"
	AlertCategoryTransaction AlertCategory = "transaction"
	AlertCategorySystem      AlertCategory = "system"
	AlertCategorySchool      AlertCategory = "school"
)

type AlertSeverity string

const (
	AlertSeverityInfo     AlertSeverity = "info"
	AlertSeverityWarning  AlertSeverity = "warning"
	AlertSeverityCritical AlertSeverity = "critical"
)

type AlertStatus string

const (
	AlertStatusActive       AlertStatus = "active"
	AlertStatusAcknowledged AlertStatus = "acknowledged"
	AlertStatusResolved     AlertStatus = "resolved"
)

// DeviceAlert is a system-generated notice about a card or wristband that
// requires operator attention. Status moves one way:
// active -> acknowledged -> resolved, or active -> resolved directly.
type DeviceAlert struct {
	BaseModel
	DeviceID   string         `gorm:"index;not null" json:"device_id"`
	Category   AlertCategory  `gorm:"type:varchar(20);not null" json:"category"`
	Severity   AlertSeverity  `gorm:"type:varchar(20);not null" json:"severity"`
	Message    string         `gorm:"type:text;not null" json:"message"`
	Status     AlertStatus    `gorm:"type:varchar(20);default:'active';index" json:"status"`
	ResolvedBy *string        `json:"resolved_by,omitempty"`
	ResolvedAt *time.Time     `json:"resolved_at,omitempty"`
	Metadata   datatypes.JSON `gorm:"type:jsonb" json:"metadata,omitempty"`
}

func (DeviceAlert) TableName() string {
	return "device_alerts"
}

// CanTransitionTo reports whether the status machine permits the move.
func (a *DeviceAlert) CanTransitionTo(next AlertStatus) bool {
	switch a.Status {
	case AlertStatusActive:
		return next == AlertStatusAcknowledged || next == AlertStatusResolved
	case AlertStatusAcknowledged:
		return next == AlertStatusResolved
	}
	return false
}
