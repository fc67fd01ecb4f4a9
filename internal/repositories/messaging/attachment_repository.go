package messaging

import (
	"context"

	"gorm.io/gorm"

	"schoolpay_backend/internal/models/messaging"
	"schoolpay_backend/internal/store"
)

type AttachmentRepository struct {
	col *store.Collection[messaging.Attachment]
}

func NewAttachmentRepository(db *gorm.DB, pub store.Publisher) *AttachmentRepository {
	return &AttachmentRepository{col: store.NewCollection[messaging.Attachment](db, "message_attachments", pub)}
}

func (r *AttachmentRepository) WithTx(tx *gorm.DB) *AttachmentRepository {
	return &AttachmentRepository{col: r.col.WithTx(tx)}
}

func (r *AttachmentRepository) CreateMany(ctx context.Context, attachments []messaging.Attachment) error {
	return r.col.InsertMany(ctx, attachments)
}

func (r *AttachmentRepository) GetByMessage(ctx context.Context, messageID string) ([]messaging.Attachment, error) {
	return r.col.Find(ctx, []store.Filter{store.Eq("message_id", messageID)}, nil, 0)
}
