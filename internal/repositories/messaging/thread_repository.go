package messaging

import (
	"context"
	"time"

	"gorm.io/gorm"

	"schoolpay_backend/internal/models/messaging"
	"schoolpay_backend/internal/store"
)

type ThreadRepository struct {
	col *store.Collection[messaging.Thread]
}

func NewThreadRepository(db *gorm.DB, pub store.Publisher) *ThreadRepository {
	return &ThreadRepository{col: store.NewCollection[messaging.Thread](db, "threads", pub)}
}

// WithTx binds the repository to a transaction.
func (r *ThreadRepository) WithTx(tx *gorm.DB) *ThreadRepository {
	return &ThreadRepository{col: r.col.WithTx(tx)}
}

func (r *ThreadRepository) Create(ctx context.Context, thread *messaging.Thread) error {
	return r.col.Insert(ctx, thread)
}

// FindByID returns the thread with its participants loaded.
func (r *ThreadRepository) FindByID(ctx context.Context, id string) (*messaging.Thread, error) {
	var thread messaging.Thread
	err := r.col.DB().WithContext(ctx).
		Preload("Participants").
		First(&thread, "id = ?", id).Error
	if err != nil {
		return nil, store.Classify(err, r.col.Name())
	}
	return &thread, nil
}

// FindAllByUser returns every thread the user participates in, freshest
// first, with participants loaded.
func (r *ThreadRepository) FindAllByUser(ctx context.Context, userID string) ([]messaging.Thread, error) {
	threads := make([]messaging.Thread, 0)
	err := r.col.DB().WithContext(ctx).
		Joins("JOIN thread_participants tp ON tp.thread_id = threads.id").
		Where("tp.user_id = ?", userID).
		Preload("Participants").
		Order("threads.last_message_at DESC").
		Find(&threads).Error
	if err != nil {
		return nil, store.Classify(err, r.col.Name())
	}
	return threads, nil
}

// BumpLastMessage advances last_message_at. The timestamp is monotone: an
// older value never overwrites a newer one.
func (r *ThreadRepository) BumpLastMessage(ctx context.Context, threadID string, at time.Time) error {
	_, err := r.col.Update(ctx,
		[]store.Filter{store.Eq("id", threadID), store.Lte("last_message_at", at)},
		map[string]any{"last_message_at": at},
	)
	return err
}

func (r *ThreadRepository) Delete(ctx context.Context, threadID string) error {
	return r.col.Delete(ctx, []store.Filter{store.Eq("id", threadID)})
}
