package messaging

import "time"

type Attachment struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	MessageID string    `gorm:"index;not null" json:"message_id"`
	FileName  string    `gorm:"not null" json:"file_name"`
	URL       string    `gorm:"not null" json:"url"`
	MimeType  string    `json:"mime_type"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

func (Attachment) TableName() string {
	return "message_attachments"
}
