package messaging

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"schoolpay_backend/internal/cache"
	"schoolpay_backend/internal/logger"
	"schoolpay_backend/internal/models"
	modelMessaging "schoolpay_backend/internal/models/messaging"
	"schoolpay_backend/internal/repositories"
	repoMessaging "schoolpay_backend/internal/repositories/messaging"
	"schoolpay_backend/pkg/apperrors"
)

type ThreadService struct {
	db           *gorm.DB
	threads      *repoMessaging.ThreadRepository
	participants *repoMessaging.ParticipantRepository
	messages     *repoMessaging.MessageRepository
	users        *repositories.UserRepository
	views        *cache.ViewCache
}

func NewThreadService(
	db *gorm.DB,
	threads *repoMessaging.ThreadRepository,
	participants *repoMessaging.ParticipantRepository,
	messages *repoMessaging.MessageRepository,
	users *repositories.UserRepository,
	views *cache.ViewCache,
) *ThreadService {
	return &ThreadService{
		db:           db,
		threads:      threads,
		participants: participants,
		messages:     messages,
		users:        users,
		views:        views,
	}
}

// ParticipantInput carries one participant's identity and display data.
type ParticipantInput struct {
	UserID      string          `json:"user_id" binding:"required"`
	DisplayName string          `json:"display_name" binding:"required"`
	Role        models.UserRole `json:"role" binding:"required,userrole"`
	SchoolID    *string         `json:"school_id"`
	AvatarURL   *string         `json:"avatar_url"`
}

type CreateThreadInput struct {
	Title          string                   `json:"title" binding:"required"`
	Kind           modelMessaging.ThreadKind `json:"kind" binding:"omitempty,threadkind"`
	Participants   []ParticipantInput       `json:"participants" binding:"required"`
	InitialMessage string                   `json:"initial_message" binding:"required"`
}

// ThreadSummary is one row of a user's thread list.
type ThreadSummary struct {
	modelMessaging.Thread
	UnreadCount int64 `json:"unread_count"`
}

// ListForUser returns the user's threads, freshest first, each with the
// count of messages they have not read. Serves from the view cache when the
// entry is still valid.
func (s *ThreadService) ListForUser(ctx context.Context, userID string) ([]ThreadSummary, error) {
	key := cache.ThreadListKey(userID)
	if cached, ok := s.views.Get(key); ok {
		if summaries, ok := cached.([]ThreadSummary); ok {
			return summaries, nil
		}
	}
	version := s.views.Version(key)

	threads, err := s.threads.FindAllByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	threadIDs := make([]string, 0, len(threads))
	for _, t := range threads {
		threadIDs = append(threadIDs, t.ID)
	}
	counts, err := s.messages.UnreadCountsForUser(ctx, threadIDs, userID)
	if err != nil {
		return nil, err
	}

	summaries := make([]ThreadSummary, 0, len(threads))
	for _, t := range threads {
		summaries = append(summaries, ThreadSummary{Thread: t, UnreadCount: counts[t.ID]})
	}

	// A concurrent invalidation makes Put a no-op; the result is still
	// correct for this caller.
	s.views.Put(key, summaries, version)
	return summaries, nil
}

// Create creates the thread, its participants and the initial message as one
// logical unit. Any failure rolls everything back: no empty thread survives.
func (s *ThreadService) Create(ctx context.Context, creatorID string, input CreateThreadInput) (*modelMessaging.Thread, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apperrors.ValidationError("thread", "Title must not be empty")
	}
	if len(input.Participants) == 0 {
		return nil, apperrors.ValidationError("thread", "Thread must have at least one participant")
	}
	content := strings.TrimSpace(input.InitialMessage)
	if content == "" {
		return nil, apperrors.ValidationError("thread", "Initial message must not be empty")
	}
	kind := input.Kind
	if kind == "" {
		kind = modelMessaging.ThreadKindDirect
	}
	if !kind.Valid() {
		return nil, apperrors.ValidationError("thread", "Unknown thread kind")
	}
	for _, p := range input.Participants {
		if !p.Role.Valid() {
			return nil, apperrors.ValidationError("thread", "Unknown participant role: "+string(p.Role))
		}
	}

	now := time.Now().UTC()
	thread := &modelMessaging.Thread{
		Title:         title,
		Kind:          kind,
		CreatorID:     creatorID,
		LastMessageAt: now,
	}
	thread.ID = uuid.New().String()

	participants := make([]modelMessaging.Participant, 0, len(input.Participants)+1)
	seen := make(map[string]bool, len(input.Participants)+1)
	add := func(p ParticipantInput) {
		if seen[p.UserID] {
			return
		}
		seen[p.UserID] = true
		participants = append(participants, modelMessaging.Participant{
			ID:          uuid.New().String(),
			ThreadID:    thread.ID,
			UserID:      p.UserID,
			DisplayName: p.DisplayName,
			Role:        p.Role,
			SchoolID:    p.SchoolID,
			AvatarURL:   p.AvatarURL,
			JoinedAt:    now,
			RoleDisplay: p.Role.Display(),
		})
	}

	// The creator is always a member, first in the list. Callers that omit
	// themselves get their membership row from their user record.
	creatorInput, err := s.creatorParticipant(ctx, creatorID, input.Participants)
	if err != nil {
		return nil, err
	}
	add(creatorInput)
	for _, p := range input.Participants {
		add(p)
	}

	initial := &modelMessaging.Message{
		ID:        uuid.New().String(),
		ThreadID:  thread.ID,
		SenderID:  creatorID,
		Content:   content,
		CreatedAt: now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.threads.WithTx(tx).Create(ctx, thread); err != nil {
			return err
		}
		if err := s.participants.WithTx(tx).CreateMany(ctx, participants); err != nil {
			return err
		}
		return s.messages.WithTx(tx).Create(ctx, initial)
	})
	if err != nil {
		return nil, err
	}

	thread.Participants = participants
	s.invalidateThreadViews(participants)
	return thread, nil
}

// creatorParticipant resolves the creator's membership entry: the matching
// input entry when the caller listed themselves, otherwise their user record.
func (s *ThreadService) creatorParticipant(ctx context.Context, creatorID string, inputs []ParticipantInput) (ParticipantInput, error) {
	for _, p := range inputs {
		if p.UserID == creatorID {
			return p, nil
		}
	}
	creator, err := s.users.FindByID(ctx, creatorID)
	if err != nil {
		return ParticipantInput{}, err
	}
	return ParticipantInput{
		UserID:      creator.ID,
		DisplayName: creator.FullName,
		Role:        creator.Role,
		SchoolID:    creator.SchoolID,
		AvatarURL:   creator.AvatarURL,
	}, nil
}

// GetThread returns a thread with participants, for members only.
func (s *ThreadService) GetThread(ctx context.Context, threadID, userID string) (*modelMessaging.Thread, error) {
	thread, err := s.threads.FindByID(ctx, threadID)
	if err != nil {
		return nil, err
	}
	if !threadHasMember(thread, userID) {
		return nil, apperrors.Forbidden("Not a participant of this thread")
	}
	return thread, nil
}

// MarkRead marks every message of the thread not sent by the user as read.
// Idempotent: repeated calls touch nothing further.
func (s *ThreadService) MarkRead(ctx context.Context, threadID, userID string) error {
	isMember, err := s.participants.IsUserInThread(ctx, userID, threadID)
	if err != nil {
		return err
	}
	if !isMember {
		return apperrors.Forbidden("Not a participant of this thread")
	}

	affected, err := s.messages.MarkThreadRead(ctx, threadID, userID)
	if err != nil {
		return err
	}
	if affected > 0 {
		// The read flag is shared state: clearing it changes every other
		// participant's unread count, so all their views go stale, not just
		// the caller's.
		participants, perr := s.participants.GetParticipants(ctx, threadID)
		if perr != nil {
			logger.FromContext(ctx).Warn("failed to load participants for view invalidation",
				"thread_id", threadID, "error", perr)
			s.views.Invalidate(cache.ThreadListKey(userID))
			return nil
		}
		s.invalidateThreadViews(participants)
	}
	return nil
}

func (s *ThreadService) invalidateThreadViews(participants []modelMessaging.Participant) {
	keys := make([]cache.Key, 0, len(participants))
	for _, p := range participants {
		keys = append(keys, cache.ThreadListKey(p.UserID))
	}
	s.views.Invalidate(keys...)
}

func threadHasMember(thread *modelMessaging.Thread, userID string) bool {
	for _, p := range thread.Participants {
		if p.UserID == userID {
			return true
		}
	}
	return false
}
