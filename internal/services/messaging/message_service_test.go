package messaging

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schoolpay_backend/internal/models"
	modelMessaging "schoolpay_backend/internal/models/messaging"
	"schoolpay_backend/pkg/apperrors"
)

func createTestThread(t *testing.T, env *messagingEnv) *modelMessaging.Thread {
	t.Helper()
	thread, err := env.threads.Create(context.Background(), "u1", CreateThreadInput{
		Title: "T",
		Participants: []ParticipantInput{
			participant("u1", "User One", models.UserRoleParent),
			participant("u2", "User Two", models.UserRoleStaff),
		},
		InitialMessage: "hello",
	})
	require.NoError(t, err)
	return thread
}

func TestSendMessage_WhitespaceRejected(t *testing.T) {
	env := newMessagingEnv(t, 200)
	ctx := context.Background()
	thread := createTestThread(t, env)

	before, err := env.threads.GetThread(ctx, thread.ID, "u1")
	require.NoError(t, err)

	_, err = env.messages.Send(ctx, thread.ID, "u2", SendMessageInput{Content: "   "})
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeValidationFailed, appErr.Code)

	// Rejected sends leave thread freshness untouched.
	after, err := env.threads.GetThread(ctx, thread.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, before.LastMessageAt, after.LastMessageAt)
}

func TestSendMessage_TrimsContent(t *testing.T) {
	env := newMessagingEnv(t, 200)
	thread := createTestThread(t, env)

	msg, err := env.messages.Send(context.Background(), thread.ID, "u2", SendMessageInput{Content: "  spaced out  "})
	require.NoError(t, err)
	assert.Equal(t, "spaced out", msg.Content)
}

func TestSendMessage_NonMember(t *testing.T) {
	env := newMessagingEnv(t, 200)
	thread := createTestThread(t, env)

	_, err := env.messages.Send(context.Background(), thread.ID, "intruder", SendMessageInput{Content: "hi"})
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeForbidden, appErr.Code)
}

func TestSendMessage_BumpsLastMessageAt(t *testing.T) {
	env := newMessagingEnv(t, 200)
	ctx := context.Background()
	thread := createTestThread(t, env)

	time.Sleep(5 * time.Millisecond)
	msg, err := env.messages.Send(ctx, thread.ID, "u2", SendMessageInput{Content: "reply"})
	require.NoError(t, err)

	updated, err := env.threads.GetThread(ctx, thread.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, msg.CreatedAt.Unix(), updated.LastMessageAt.Unix())
	assert.False(t, updated.LastMessageAt.Before(thread.LastMessageAt))
}

func TestListMessages_AscendingOrder(t *testing.T) {
	env := newMessagingEnv(t, 200)
	ctx := context.Background()
	thread := createTestThread(t, env)

	for i := 0; i < 5; i++ {
		sender := "u1"
		if i%2 == 0 {
			sender = "u2"
		}
		_, err := env.messages.Send(ctx, thread.ID, sender, SendMessageInput{Content: fmt.Sprintf("msg %d", i)})
		require.NoError(t, err)
		time.Sleep(2 * time.Millisecond)
	}

	messages, err := env.messages.List(ctx, thread.ID, "u1", time.Time{})
	require.NoError(t, err)
	require.Len(t, messages, 6)
	for i := 1; i < len(messages); i++ {
		assert.False(t, messages[i].CreatedAt.Before(messages[i-1].CreatedAt),
			"messages must be in non-decreasing timestamp order")
	}
}

func TestListMessages_PaginationOlderFirst(t *testing.T) {
	env := newMessagingEnv(t, 3)
	ctx := context.Background()
	thread := createTestThread(t, env)

	for i := 0; i < 4; i++ {
		_, err := env.messages.Send(ctx, thread.ID, "u2", SendMessageInput{Content: fmt.Sprintf("msg %d", i)})
		require.NoError(t, err)
		time.Sleep(2 * time.Millisecond)
	}

	// Newest page of three, oldest first within the page.
	page, err := env.messages.List(ctx, thread.ID, "u1", time.Time{})
	require.NoError(t, err)
	require.Len(t, page, 3)
	assert.Equal(t, "msg 1", page[0].Content)
	assert.Equal(t, "msg 3", page[2].Content)

	// The page before the oldest shown message holds the rest.
	older, err := env.messages.List(ctx, thread.ID, "u1", page[0].CreatedAt)
	require.NoError(t, err)
	require.Len(t, older, 2)
	assert.Equal(t, "hello", older[0].Content)
	assert.Equal(t, "msg 0", older[1].Content)
}

func TestSendMessage_WithAttachments(t *testing.T) {
	env := newMessagingEnv(t, 200)
	ctx := context.Background()
	thread := createTestThread(t, env)

	msg, err := env.messages.Send(ctx, thread.ID, "u1", SendMessageInput{
		Content: "see attached",
		Attachments: []AttachmentInput{
			{FileName: "boleto.pdf", URL: "https://files.example.com/boleto.pdf", MimeType: "application/pdf", Size: 52341},
		},
	})
	require.NoError(t, err)
	require.Len(t, msg.Attachments, 1)

	messages, err := env.messages.List(ctx, thread.ID, "u2", time.Time{})
	require.NoError(t, err)
	last := messages[len(messages)-1]
	require.Len(t, last.Attachments, 1)
	assert.Equal(t, "boleto.pdf", last.Attachments[0].FileName)
}

func TestSendMessage_ConcurrentSendersAllAccepted(t *testing.T) {
	env := newMessagingEnv(t, 200)
	ctx := context.Background()
	thread := createTestThread(t, env)

	const perSender = 5
	errs := make(chan error, perSender*2)
	for _, sender := range []string{"u1", "u2"} {
		go func(sender string) {
			for i := 0; i < perSender; i++ {
				_, err := env.messages.Send(ctx, thread.ID, sender, SendMessageInput{Content: fmt.Sprintf("%s-%d", sender, i)})
				errs <- err
			}
		}(sender)
	}
	for i := 0; i < perSender*2; i++ {
		require.NoError(t, <-errs)
	}

	messages, err := env.messages.List(ctx, thread.ID, "u1", time.Time{})
	require.NoError(t, err)
	// Initial message plus everything sent; nobody silently dropped.
	assert.Len(t, messages, 1+perSender*2)
	for i := 1; i < len(messages); i++ {
		assert.False(t, messages[i].CreatedAt.Before(messages[i-1].CreatedAt))
	}
}

func TestSendMessage_RefreshesRecipientThreadLists(t *testing.T) {
	env := newMessagingEnv(t, 200)
	ctx := context.Background()
	thread := createTestThread(t, env)

	// u2's summary is computed and cached with the initial message unread.
	summaries, err := env.threads.ListForUser(ctx, "u2")
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	require.Equal(t, int64(1), summaries[0].UnreadCount)

	_, err = env.messages.Send(ctx, thread.ID, "u1", SendMessageInput{Content: "segue o boleto"})
	require.NoError(t, err)

	// The send invalidated every participant's cached list, not just the
	// sender's.
	summaries, err = env.threads.ListForUser(ctx, "u2")
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, int64(2), summaries[0].UnreadCount)
}
