package messaging

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"schoolpay_backend/internal/cache"
	modelMessaging "schoolpay_backend/internal/models/messaging"
	repoMessaging "schoolpay_backend/internal/repositories/messaging"
	"schoolpay_backend/pkg/apperrors"
)

type MessageService struct {
	db           *gorm.DB
	threads      *repoMessaging.ThreadRepository
	participants *repoMessaging.ParticipantRepository
	messages     *repoMessaging.MessageRepository
	attachments  *repoMessaging.AttachmentRepository
	views        *cache.ViewCache
	pageSize     int
}

func NewMessageService(
	db *gorm.DB,
	threads *repoMessaging.ThreadRepository,
	participants *repoMessaging.ParticipantRepository,
	messages *repoMessaging.MessageRepository,
	attachments *repoMessaging.AttachmentRepository,
	views *cache.ViewCache,
	pageSize int,
) *MessageService {
	if pageSize <= 0 {
		pageSize = 200
	}
	return &MessageService{
		db:           db,
		threads:      threads,
		participants: participants,
		messages:     messages,
		attachments:  attachments,
		views:        views,
		pageSize:     pageSize,
	}
}

type AttachmentInput struct {
	FileName string `json:"file_name" binding:"required"`
	URL      string `json:"url" binding:"required"`
	MimeType string `json:"mime_type"`
	Size     int64  `json:"size"`
}

type SendMessageInput struct {
	Content     string            `json:"content" binding:"required"`
	Attachments []AttachmentInput `json:"attachments"`
}

// List returns one page of the thread's messages ascending by creation time,
// capped at the configured page size. A non-zero before fetches the page of
// messages older than it. Members only.
func (s *MessageService) List(ctx context.Context, threadID, userID string, before time.Time) ([]modelMessaging.Message, error) {
	isMember, err := s.participants.IsUserInThread(ctx, userID, threadID)
	if err != nil {
		return nil, err
	}
	if !isMember {
		return nil, apperrors.Forbidden("Not a participant of this thread")
	}
	return s.messages.GetByThread(ctx, threadID, before, s.pageSize)
}

// Send appends a message and advances the thread's last_message_at in one
// transaction, making this the single point of truth for thread freshness.
// Ordering is defined by the server-assigned timestamp, not client dispatch
// order. Whitespace-only content is rejected before anything is touched.
func (s *MessageService) Send(ctx context.Context, threadID, senderID string, input SendMessageInput) (*modelMessaging.Message, error) {
	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, apperrors.ValidationError("message", "Message content must not be empty")
	}

	isMember, err := s.participants.IsUserInThread(ctx, senderID, threadID)
	if err != nil {
		return nil, err
	}
	if !isMember {
		return nil, apperrors.Forbidden("Not a participant of this thread")
	}

	now := time.Now().UTC()
	message := &modelMessaging.Message{
		ID:        uuid.New().String(),
		ThreadID:  threadID,
		SenderID:  senderID,
		Content:   content,
		CreatedAt: now,
	}
	attachments := make([]modelMessaging.Attachment, 0, len(input.Attachments))
	for _, a := range input.Attachments {
		attachments = append(attachments, modelMessaging.Attachment{
			ID:        uuid.New().String(),
			MessageID: message.ID,
			FileName:  a.FileName,
			URL:       a.URL,
			MimeType:  a.MimeType,
			Size:      a.Size,
		})
	}

	// Membership is read inside the transaction so the invalidation set is
	// consistent with the write it follows.
	var participants []modelMessaging.Participant
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.messages.WithTx(tx).Create(ctx, message); err != nil {
			return err
		}
		if len(attachments) > 0 {
			if err := s.attachments.WithTx(tx).CreateMany(ctx, attachments); err != nil {
				return err
			}
		}
		if err := s.threads.WithTx(tx).BumpLastMessage(ctx, threadID, now); err != nil {
			return err
		}
		var perr error
		participants, perr = s.participants.WithTx(tx).GetParticipants(ctx, threadID)
		return perr
	})
	if err != nil {
		return nil, err
	}
	message.Attachments = attachments

	keys := make([]cache.Key, 0, len(participants))
	for _, p := range participants {
		keys = append(keys, cache.ThreadListKey(p.UserID))
	}
	s.views.Invalidate(keys...)
	return message, nil
}
