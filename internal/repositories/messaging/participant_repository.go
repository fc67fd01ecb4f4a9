package messaging

import (
	"context"

	"gorm.io/gorm"

	"schoolpay_backend/internal/models/messaging"
	"schoolpay_backend/internal/store"
)

type ParticipantRepository struct {
	col *store.Collection[messaging.Participant]
}

func NewParticipantRepository(db *gorm.DB, pub store.Publisher) *ParticipantRepository {
	return &ParticipantRepository{col: store.NewCollection[messaging.Participant](db, "thread_participants", pub)}
}

func (r *ParticipantRepository) WithTx(tx *gorm.DB) *ParticipantRepository {
	return &ParticipantRepository{col: r.col.WithTx(tx)}
}

// CreateMany adds several participants at once.
func (r *ParticipantRepository) CreateMany(ctx context.Context, participants []messaging.Participant) error {
	return r.col.InsertMany(ctx, participants)
}

// IsUserInThread reports thread membership.
func (r *ParticipantRepository) IsUserInThread(ctx context.Context, userID, threadID string) (bool, error) {
	count, err := r.col.Count(ctx, []store.Filter{
		store.Eq("user_id", userID),
		store.Eq("thread_id", threadID),
	})
	return count > 0, err
}

// GetParticipants returns all members of a thread.
func (r *ParticipantRepository) GetParticipants(ctx context.Context, threadID string) ([]messaging.Participant, error) {
	return r.col.Find(ctx, []store.Filter{store.Eq("thread_id", threadID)}, nil, 0)
}
