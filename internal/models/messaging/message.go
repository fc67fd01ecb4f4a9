package messaging

import "time"

// Message is an immutable record within a thread. Content is non-empty and
// trimmed before acceptance; the read flag only ever moves false -> true.
type Message struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	ThreadID  string    `gorm:"index;not null" json:"thread_id"`
	SenderID  string    `gorm:"index;not null" json:"sender_id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Read      bool      `gorm:"default:false" json:"read"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`

	Attachments []Attachment `gorm:"foreignKey:MessageID" json:"attachments,omitempty"`
}

func (Message) TableName() string {
	return "messages"
}
