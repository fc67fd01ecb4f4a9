package services

import (
	"context"

	"schoolpay_backend/internal/cache"
	"schoolpay_backend/internal/models"
	"schoolpay_backend/internal/repositories"
	"schoolpay_backend/pkg/apperrors"
)

type PreferenceService struct {
	preferences *repositories.PreferenceRepository
	views       *cache.ViewCache
}

func NewPreferenceService(preferences *repositories.PreferenceRepository, views *cache.ViewCache) *PreferenceService {
	return &PreferenceService{preferences: preferences, views: views}
}

// UpdatePreferencesInput is a full replacement of the four delivery flags.
// Pointer booleans distinguish "missing" from "false": a missing flag is a
// validation error, never a silent default.
type UpdatePreferencesInput struct {
	DeviceAlerts      *bool `json:"device_alerts" binding:"required"`
	TransactionAlerts *bool `json:"transaction_alerts" binding:"required"`
	SystemAlerts      *bool `json:"system_alerts" binding:"required"`
	SchoolAlerts      *bool `json:"school_alerts" binding:"required"`
}

// Get returns the user's preferences, lazily creating the default all-enabled
// record on first access. Creation is atomic at the repository, so two rapid
// first accesses still yield a single record.
func (s *PreferenceService) Get(ctx context.Context, userID string) (*models.NotificationPreferences, error) {
	key := cache.PreferencesKey(userID)
	if cached, ok := s.views.Get(key); ok {
		if prefs, ok := cached.(*models.NotificationPreferences); ok {
			return prefs, nil
		}
	}
	version := s.views.Version(key)

	prefs, err := s.preferences.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.views.Put(key, prefs, version)
	return prefs, nil
}

// Update replaces all four flags wholesale.
func (s *PreferenceService) Update(ctx context.Context, userID string, input UpdatePreferencesInput) (*models.NotificationPreferences, error) {
	if input.DeviceAlerts == nil || input.TransactionAlerts == nil ||
		input.SystemAlerts == nil || input.SchoolAlerts == nil {
		return nil, apperrors.ValidationError("preferences", "All four flags are required")
	}

	// Ensure the record exists before replacing, same lazy-default path as Get.
	if _, err := s.preferences.GetOrCreate(ctx, userID); err != nil {
		return nil, err
	}

	prefs, err := s.preferences.Replace(ctx, userID,
		*input.DeviceAlerts, *input.TransactionAlerts, *input.SystemAlerts, *input.SchoolAlerts)
	if err != nil {
		return nil, err
	}
	s.views.Invalidate(cache.PreferencesKey(userID))
	return prefs, nil
}
