package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"schoolpay_backend/internal/models"
	"schoolpay_backend/internal/store"
)

type AlertRepository struct {
	col *store.Collection[models.DeviceAlert]
}

func NewAlertRepository(db *gorm.DB, pub store.Publisher) *AlertRepository {
	return &AlertRepository{col: store.NewCollection[models.DeviceAlert](db, "device_alerts", pub)}
}

func (r *AlertRepository) Create(ctx context.Context, alert *models.DeviceAlert) error {
	return r.col.Insert(ctx, alert)
}

func (r *AlertRepository) FindByID(ctx context.Context, id string) (*models.DeviceAlert, error) {
	return r.col.FindOne(ctx, []store.Filter{store.Eq("id", id)})
}

// FindByStatus lists alerts newest-first, optionally narrowed to one status.
func (r *AlertRepository) FindByStatus(ctx context.Context, status models.AlertStatus, limit int) ([]models.DeviceAlert, error) {
	filters := []store.Filter{}
	if status != "" {
		filters = append(filters, store.Eq("status", status))
	}
	return r.col.Find(ctx, filters, &store.Order{Field: "created_at", Desc: true}, limit)
}

// Transition moves an alert from one status to another. The current-status
// predicate makes the update a compare-and-set: a concurrent transition wins
// and this one reports zero rows.
func (r *AlertRepository) Transition(ctx context.Context, alertID string, from, to models.AlertStatus, resolvedBy string) (int64, error) {
	values := map[string]any{"status": to}
	if to == models.AlertStatusResolved {
		values["resolved_by"] = resolvedBy
		values["resolved_at"] = time.Now().UTC()
	}
	return r.col.Update(ctx,
		[]store.Filter{store.Eq("id", alertID), store.Eq("status", from)},
		values,
	)
}
