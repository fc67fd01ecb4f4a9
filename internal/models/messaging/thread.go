package messaging

import (
	"time"

	"schoolpay_backend/internal/models"
)

// ThreadKind is the closed set of conversation kinds.
type ThreadKind string

const (
	ThreadKindDirect  ThreadKind = "direct"
	ThreadKindGroup   ThreadKind = "group"
	ThreadKindSupport ThreadKind = "support"
)

func (k ThreadKind) Valid() bool {
	switch k {
	case ThreadKindDirect, ThreadKindGroup, ThreadKindSupport:
		return true
	}
	return false
}

// Thread is a conversation container. LastMessageAt is monotonically
// non-decreasing and equals the newest accepted message's timestamp, or the
// thread's creation time while empty.
type Thread struct {
	models.BaseModel
	Title         string     `gorm:"not null" json:"title"`
	Kind          ThreadKind `gorm:"type:varchar(20);default:'direct'" json:"kind"`
	CreatorID     string     `gorm:"index;not null" json:"creator_id"`
	LastMessageAt time.Time  `gorm:"index;not null" json:"last_message_at"`

	Participants []Participant `gorm:"foreignKey:ThreadID" json:"participants,omitempty"`
	Messages     []Message     `gorm:"foreignKey:ThreadID" json:"-"`
}

func (Thread) TableName() string {
	return "threads"
}
