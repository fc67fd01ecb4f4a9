package repositories

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"schoolpay_backend/internal/models"
	"schoolpay_backend/internal/store"
)

type PreferenceRepository struct {
	col *store.Collection[models.NotificationPreferences]
}

func NewPreferenceRepository(db *gorm.DB, pub store.Publisher) *PreferenceRepository {
	return &PreferenceRepository{col: store.NewCollection[models.NotificationPreferences](db, "notification_preferences", pub)}
}

// GetOrCreate returns the user's preference record, creating the default
// all-enabled record atomically when absent. The insert-ignore keeps
// concurrent first accesses from producing duplicates: every caller attempts
// the insert, the unique index on user_id lets exactly one row in, and all
// callers then read the same record.
func (r *PreferenceRepository) GetOrCreate(ctx context.Context, userID string) (*models.NotificationPreferences, error) {
	defaults := &models.NotificationPreferences{
		ID:                uuid.New().String(),
		UserID:            userID,
		DeviceAlerts:      true,
		TransactionAlerts: true,
		SystemAlerts:      true,
		SchoolAlerts:      true,
	}
	if err := r.col.UpsertIgnore(ctx, defaults, []string{"user_id"}); err != nil {
		return nil, err
	}
	return r.col.FindOne(ctx, []store.Filter{store.Eq("user_id", userID)})
}

// Replace overwrites all four flags for the user.
func (r *PreferenceRepository) Replace(ctx context.Context, userID string, device, transaction, system, school bool) (*models.NotificationPreferences, error) {
	_, err := r.col.Update(ctx,
		[]store.Filter{store.Eq("user_id", userID)},
		map[string]any{
			"device_alerts":      device,
			"transaction_alerts": transaction,
			"system_alerts":      system,
			"school_alerts":      school,
		},
	)
	if err != nil {
		return nil, err
	}
	return r.col.FindOne(ctx, []store.Filter{store.Eq("user_id", userID)})
}
