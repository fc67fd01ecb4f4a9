package database

import (
	"gorm.io/gorm"

	"schoolpay_backend/internal/models"
	"schoolpay_backend/internal/models/messaging"
)

// AutoMigrate creates or updates the schema for every model.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.NotificationPreferences{},
		&models.DeviceAlert{},
		&messaging.Thread{},
		&messaging.Participant{},
		&messaging.Message{},
		&messaging.Attachment{},
	)
}
