package messaging

import (
	"context"
	"time"

	"gorm.io/gorm"

	"schoolpay_backend/internal/models/messaging"
	"schoolpay_backend/internal/store"
)

type MessageRepository struct {
	col *store.Collection[messaging.Message]
}

func NewMessageRepository(db *gorm.DB, pub store.Publisher) *MessageRepository {
	return &MessageRepository{col: store.NewCollection[messaging.Message](db, "messages", pub)}
}

func (r *MessageRepository) WithTx(tx *gorm.DB) *MessageRepository {
	return &MessageRepository{col: r.col.WithTx(tx)}
}

func (r *MessageRepository) Create(ctx context.Context, message *messaging.Message) error {
	return r.col.Insert(ctx, message)
}

// GetByThread returns up to limit messages of a thread ascending by creation
// time. A non-zero before narrows to messages strictly older than it, which
// is how older pages are fetched.
func (r *MessageRepository) GetByThread(ctx context.Context, threadID string, before time.Time, limit int) ([]messaging.Message, error) {
	q := r.col.DB().WithContext(ctx).
		Preload("Attachments").
		Where("thread_id = ?", threadID)
	if !before.IsZero() {
		q = q.Where("created_at < ?", before)
	}
	// Take the newest window, then serve it oldest-first.
	messages := make([]messaging.Message, 0)
	err := q.Order("created_at DESC").Limit(limit).Find(&messages).Error
	if err != nil {
		return nil, store.Classify(err, r.col.Name())
	}
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// UnreadCountsForUser returns unread counts grouped by thread for one user.
func (r *MessageRepository) UnreadCountsForUser(ctx context.Context, threadIDs []string, userID string) (map[string]int64, error) {
	counts := make(map[string]int64, len(threadIDs))
	if len(threadIDs) == 0 {
		return counts, nil
	}
	rows := make([]struct {
		ThreadID string
		Total    int64
	}, 0)
	err := r.col.DB().WithContext(ctx).
		Model(&messaging.Message{}).
		Select("thread_id, COUNT(*) AS total").
		Where("thread_id IN ? AND sender_id <> ? AND read = ?", threadIDs, userID, false).
		Group("thread_id").
		Scan(&rows).Error
	if err != nil {
		return nil, store.Classify(err, r.col.Name())
	}
	for _, row := range rows {
		counts[row.ThreadID] = row.Total
	}
	return counts, nil
}

// MarkThreadRead flips read on every message of the thread not sent by the
// user. Already-read rows are untouched, so repeated calls are no-ops.
func (r *MessageRepository) MarkThreadRead(ctx context.Context, threadID, userID string) (int64, error) {
	return r.col.Update(ctx,
		[]store.Filter{
			store.Eq("thread_id", threadID),
			store.Neq("sender_id", userID),
			store.Eq("read", false),
		},
		map[string]any{"read": true},
	)
}
