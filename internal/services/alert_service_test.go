package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schoolpay_backend/internal/cache"
	"schoolpay_backend/internal/models"
	"schoolpay_backend/internal/repositories"
	"schoolpay_backend/internal/testutil"
	"schoolpay_backend/pkg/apperrors"
)

func newAlertService(t *testing.T) *AlertService {
	t.Helper()
	db := testutil.OpenDB(t)
	repo := repositories.NewAlertRepository(db, nil)
	return NewAlertService(repo, cache.NewViewCache())
}

func createAlert(t *testing.T, svc *AlertService) *models.DeviceAlert {
	t.Helper()
	alert, err := svc.Create(context.Background(), CreateAlertInput{
		DeviceID: "device-42",
		Category: models.AlertCategoryDevice,
		Severity: models.AlertSeverityWarning,
		Message:  "Card reported lost",
	})
	require.NoError(t, err)
	return alert
}

func TestCreateAlert_StartsActive(t *testing.T) {
	svc := newAlertService(t)
	alert := createAlert(t, svc)
	assert.Equal(t, models.AlertStatusActive, alert.Status)
	assert.Nil(t, alert.ResolvedBy)
	assert.Nil(t, alert.ResolvedAt)
}

func TestCreateAlert_RejectsUnknownEnum(t *testing.T) {
	svc := newAlertService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateAlertInput{
		DeviceID: "device-42",
		Category: "weather",
		Severity: models.AlertSeverityInfo,
		Message:  "x",
	})
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeValidationFailed, appErr.Code)

	_, err = svc.Create(ctx, CreateAlertInput{
		DeviceID: "device-42",
		Category: models.AlertCategoryDevice,
		Severity: "catastrophic",
		Message:  "x",
	})
	require.Error(t, err)
	appErr, ok = apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeValidationFailed, appErr.Code)
}

func TestAlert_AcknowledgeThenResolve(t *testing.T) {
	svc := newAlertService(t)
	ctx := context.Background()
	alert := createAlert(t, svc)

	acked, err := svc.Acknowledge(ctx, alert.ID, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, models.AlertStatusAcknowledged, acked.Status)
	assert.Nil(t, acked.ResolvedBy)

	resolved, err := svc.Resolve(ctx, alert.ID, "admin-2")
	require.NoError(t, err)
	assert.Equal(t, models.AlertStatusResolved, resolved.Status)
	require.NotNil(t, resolved.ResolvedBy)
	assert.Equal(t, "admin-2", *resolved.ResolvedBy)
	assert.NotNil(t, resolved.ResolvedAt)
}

func TestAlert_ResolveDirectlyFromActive(t *testing.T) {
	svc := newAlertService(t)
	alert := createAlert(t, svc)

	resolved, err := svc.Resolve(context.Background(), alert.ID, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, models.AlertStatusResolved, resolved.Status)
}

func TestAlert_InvalidTransitions(t *testing.T) {
	svc := newAlertService(t)
	ctx := context.Background()
	alert := createAlert(t, svc)

	_, err := svc.Resolve(ctx, alert.ID, "admin-1")
	require.NoError(t, err)

	// Resolved is terminal.
	_, err = svc.Acknowledge(ctx, alert.ID, "admin-1")
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeInvalidStatus, appErr.Code)

	_, err = svc.Resolve(ctx, alert.ID, "admin-1")
	require.Error(t, err)
	appErr, ok = apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeInvalidStatus, appErr.Code)
}

func TestAlert_ListByStatus(t *testing.T) {
	svc := newAlertService(t)
	ctx := context.Background()

	first := createAlert(t, svc)
	createAlert(t, svc)
	_, err := svc.Resolve(ctx, first.ID, "admin-1")
	require.NoError(t, err)

	active, err := svc.List(ctx, models.AlertStatusActive, 100)
	require.NoError(t, err)
	require.Len(t, active, 1)

	resolved, err := svc.List(ctx, models.AlertStatusResolved, 100)
	require.NoError(t, err)
	require.Len(t, resolved, 1)
	assert.Equal(t, first.ID, resolved[0].ID)

	all, err := svc.List(ctx, "", 100)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = svc.List(ctx, "archived", 100)
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeValidationFailed, appErr.Code)
}

func TestAlert_NotFound(t *testing.T) {
	svc := newAlertService(t)

	_, err := svc.Acknowledge(context.Background(), "missing-id", "admin-1")
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeNotFound, appErr.Code)
}
