package models

import "time"

// NotificationPreferences holds the per-user delivery toggles, one record per
// user, created lazily with every category enabled.
type NotificationPreferences struct {
	ID                string    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID            string    `gorm:"uniqueIndex;not null" json:"user_id"`
	DeviceAlerts      bool      `gorm:"default:true" json:"device_alerts"`
	TransactionAlerts bool      `gorm:"default:true" json:"transaction_alerts"`
	SystemAlerts      bool      `gorm:"default:true" json:"system_alerts"`
	SchoolAlerts      bool      `gorm:"default:true" json:"school_alerts"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (NotificationPreferences) TableName() string {
	return "notification_preferences"
}

// AllowsCategory reports whether alerts of the given category should be
// delivered to this user.
func (p *NotificationPreferences) AllowsCategory(category AlertCategory) bool {
	switch category {
	case AlertCategoryDevice:
		return p.DeviceAlerts
	case AlertCategoryTransaction:
		return p.TransactionAlerts
	case AlertCategorySystem:
		return p.SystemAlerts
	case AlertCategorySchool:
		return p.SchoolAlerts
	}
	return true
}
