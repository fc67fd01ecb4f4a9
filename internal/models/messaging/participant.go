package messaging

import (
	"time"

	"gorm.io/gorm"

	"schoolpay_backend/internal/models"
)

// Participant is a user's membership record within a thread. UserID is unique
// per thread.
type Participant struct {
	ID          string          `gorm:"type:uuid;primaryKey" json:"id"`
	ThreadID    string          `gorm:"uniqueIndex:idx_thread_user;not null" json:"thread_id"`
	UserID      string          `gorm:"uniqueIndex:idx_thread_user;index;not null" json:"user_id"`
	DisplayName string          `gorm:"not null" json:"display_name"`
	Role        models.UserRole `gorm:"type:varchar(20);not null" json:"role"`
	SchoolID    *string         `json:"school_id,omitempty"`
	AvatarURL   *string         `json:"avatar_url,omitempty"`
	JoinedAt    time.Time       `json:"joined_at"`

	// RoleDisplay is the presentation metadata for Role, derived on load.
	RoleDisplay models.RoleDisplay `gorm:"-" json:"role_display"`
}

func (Participant) TableName() string {
	return "thread_participants"
}

func (p *Participant) AfterFind(*gorm.DB) error {
	p.RoleDisplay = p.Role.Display()
	return nil
}
