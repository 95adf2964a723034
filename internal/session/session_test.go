package session

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storechat/internal/channel"
	"storechat/internal/models"
)

// fakeEmitter records emits and lets tests answer acks by hand.
type fakeEmitter struct {
	emits  []emit
	acks   []func(json.RawMessage)
	closed bool
}

type emit struct {
	event string
	data  any
}

func (f *fakeEmitter) Emit(event string, data any) error {
	f.emits = append(f.emits, emit{event, data})
	return nil
}

func (f *fakeEmitter) EmitWithAck(event string, data any, fn func(json.RawMessage)) error {
	f.emits = append(f.emits, emit{event, data})
	f.acks = append(f.acks, fn)
	return nil
}

func (f *fakeEmitter) Close() error {
	f.closed = true
	return nil
}

func (f *fakeEmitter) events() []string {
	names := make([]string, len(f.emits))
	for i, e := range f.emits {
		names[i] = e.event
	}
	return names
}

func (f *fakeEmitter) lastAck(t *testing.T, payload models.Ack) {
	t.Helper()
	require.NotEmpty(t, f.acks)
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	f.acks[len(f.acks)-1](raw)
}

func started(t *testing.T, productID string) (*Session, *fakeEmitter) {
	t.Helper()
	fake := &fakeEmitter{}
	s := New(Options{
		ProductID: productID,
		Dial: func(ctx context.Context, sink channel.Sink) (Emitter, error) {
			return fake, nil
		},
		Now: func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) },
	})
	require.NoError(t, s.Start(context.Background()))
	require.Equal(t, Connected, s.State())
	require.Equal(t, []string{models.EventListConversations}, fake.events())
	return s, fake
}

func push(s *Session, name string, payload any) {
	raw, _ := json.Marshal(payload)
	s.handleEvent(channel.Event{Name: name, Data: raw})
}

func conv(chatID int, productID string, last time.Time) models.Conversation {
	return models.Conversation{ChatID: chatID, ProductID: productID, LastMessageDate: last}
}

var (
	t1 = time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC)
	t2 = time.Date(2025, 2, 2, 10, 0, 0, 0, time.UTC)
)

func TestConversationsListedSortsByRecency(t *testing.T) {
	s, _ := started(t, "prod-1")

	push(s, models.EventConversationsListed, models.ConversationsListed{
		Conversations: []models.Conversation{
			conv(1, "a", t1),
			conv(2, "b", t2),
		},
	})

	list := s.Conversations()
	require.Len(t, list, 2)
	assert.Equal(t, 2, list[0].ChatID)
	assert.Equal(t, 1, list[1].ChatID)
}

func TestConversationsListedAutoSelectsMostRecent(t *testing.T) {
	s, fake := started(t, "")

	push(s, models.EventConversationsListed, models.ConversationsListed{
		Conversations: []models.Conversation{conv(1, "a", t1), conv(2, "b", t2)},
	})

	chatID, productID := s.Active()
	assert.Equal(t, 2, chatID)
	assert.Equal(t, "b", productID)
	assert.Equal(t, LoadPending, s.LoadState())
	assert.Contains(t, fake.events(), models.EventJoinConversation)
}

func TestConversationsListedKeepsProductContext(t *testing.T) {
	// Arriving from a product page must not auto-open an unrelated thread.
	s, fake := started(t, "prod-9")

	push(s, models.EventConversationsListed, models.ConversationsListed{
		Conversations: []models.Conversation{conv(1, "a", t1)},
	})

	chatID, productID := s.Active()
	assert.Zero(t, chatID)
	assert.Equal(t, "prod-9", productID)
	assert.NotContains(t, fake.events(), models.EventJoinConversation)
}

func TestSelectUnknownChatIsNoop(t *testing.T) {
	s, fake := started(t, "")
	push(s, models.EventConversationsListed, models.ConversationsListed{
		Conversations: []models.Conversation{conv(1, "a", t2)},
	})
	before := len(fake.emits)

	s.Select(99)

	chatID, _ := s.Active()
	assert.Equal(t, 1, chatID)
	assert.Len(t, fake.emits, before)
}

func TestSelectJoinsWithClientTimestamp(t *testing.T) {
	s, fake := started(t, "prod-1")
	push(s, models.EventConversationsListed, models.ConversationsListed{
		Conversations: []models.Conversation{conv(5, "p", t1)},
	})

	s.Select(5)

	require.Equal(t, models.EventJoinConversation, fake.emits[len(fake.emits)-1].event)
	payload := fake.emits[len(fake.emits)-1].data.(models.JoinConversation)
	assert.Equal(t, 5, payload.ChatID)
	assert.Equal(t, "2025-03-01T12:00:00Z", payload.Date)
	assert.Equal(t, LoadPending, s.LoadState())
}

func TestMessagesListedStampsAvatars(t *testing.T) {
	s, _ := started(t, "")
	push(s, models.EventConversationsListed, models.ConversationsListed{
		Conversations: []models.Conversation{conv(1, "a", t1)},
	})

	push(s, models.EventMessagesListed, models.MessagesListed{
		ChatID: 1,
		Messages: []models.Message{
			{Content: "hi", IsCurrentUser: true},
			{Content: "hello", IsCurrentUser: false},
		},
		IsCurrentUserImage: "me.png",
		OtherUserImage:     "them.png",
	})

	msgs := s.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "me.png", msgs[0].SenderImage)
	assert.Equal(t, "them.png", msgs[1].SenderImage)
	assert.Equal(t, LoadLoaded, s.LoadState())
}

func TestMessagesListedEmptyIsLoaded(t *testing.T) {
	s, _ := started(t, "")
	push(s, models.EventConversationsListed, models.ConversationsListed{
		Conversations: []models.Conversation{conv(1, "a", t1)},
	})

	push(s, models.EventMessagesListed, models.MessagesListed{ChatID: 1})

	assert.Empty(t, s.Messages())
	assert.Equal(t, LoadLoaded, s.LoadState())
}

func TestStaleMessagesListedIsDiscarded(t *testing.T) {
	// Join A then B; A's late response must not overwrite B's log.
	s, _ := started(t, "prod")
	push(s, models.EventConversationsListed, models.ConversationsListed{
		Conversations: []models.Conversation{conv(1, "a", t2), conv(2, "b", t1)},
	})
	s.Select(1)
	s.Select(2)

	push(s, models.EventMessagesListed, models.MessagesListed{
		ChatID:   1,
		Messages: []models.Message{{Content: "stale"}},
	})
	assert.Equal(t, LoadPending, s.LoadState())
	assert.Empty(t, s.Messages())

	push(s, models.EventMessagesListed, models.MessagesListed{
		ChatID:   2,
		Messages: []models.Message{{Content: "fresh"}},
	})
	msgs := s.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "fresh", msgs[0].Content)
}

func TestSendWithoutChatCreatesConversation(t *testing.T) {
	s, fake := started(t, "prod-7")

	require.NoError(t, s.Send("  first message "))

	last := fake.emits[len(fake.emits)-1]
	require.Equal(t, models.EventCreateConversation, last.event)
	payload := last.data.(models.CreateConversationAndMessage)
	assert.Equal(t, "prod-7", payload.ProductID)
	assert.Equal(t, "first message", payload.Content)
	assert.NotContains(t, fake.events(), models.EventSendMessage)
}

func TestSendCreateAckAdoptsChatAndRefreshes(t *testing.T) {
	s, fake := started(t, "prod-7")
	push(s, models.EventMessagesListed, models.MessagesListed{IsCurrentUserImage: "me.png"})
	require.NoError(t, s.Send("first"))

	fake.lastAck(t, models.Ack{
		Success: true,
		ChatID:  42,
		Message: &models.Message{Content: "first"},
	})

	chatID, _ := s.Active()
	assert.Equal(t, 42, chatID)
	msgs := s.Messages()
	require.Len(t, msgs, 1)
	assert.True(t, msgs[0].IsCurrentUser)
	assert.Equal(t, "me.png", msgs[0].SenderImage)
	assert.Equal(t, models.EventListConversations, fake.emits[len(fake.emits)-1].event)
}

func TestSendToExistingChat(t *testing.T) {
	s, fake := started(t, "")
	push(s, models.EventConversationsListed, models.ConversationsListed{
		Conversations: []models.Conversation{conv(3, "p", t1)},
	})

	require.NoError(t, s.Send("hello"))

	last := fake.emits[len(fake.emits)-1]
	require.Equal(t, models.EventSendMessage, last.event)
	payload := last.data.(models.SendMessage)
	assert.Equal(t, 3, payload.ChatID)

	fake.lastAck(t, models.Ack{Success: true, Message: &models.Message{Content: "hello"}})
	msgs := s.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "hello", msgs[0].Content)
}

func TestFailedSendAckLeavesStateUntouched(t *testing.T) {
	s, fake := started(t, "prod-7")
	require.NoError(t, s.Send("first"))

	fake.lastAck(t, models.Ack{Success: false, Error: "product no longer exists"})

	chatID, _ := s.Active()
	assert.Zero(t, chatID)
	assert.Empty(t, s.Messages())
	assert.Equal(t, "product no longer exists", s.Notice())
}

func TestSendValidation(t *testing.T) {
	s, fake := started(t, "")

	assert.ErrorIs(t, s.Send("   "), ErrEmptyMessage)
	assert.ErrorIs(t, s.Send("hi"), ErrNoConversation)
	assert.Equal(t, []string{models.EventListConversations}, fake.events())
}

func TestMessageCreatedForActiveChatAppendsAndReorders(t *testing.T) {
	// Spec scenario: [2,1] sorted; new message on 1 moves it to the front.
	s, _ := started(t, "prod")
	push(s, models.EventConversationsListed, models.ConversationsListed{
		Conversations: []models.Conversation{conv(1, "a", t1), conv(2, "b", t2)},
	})
	require.Equal(t, 2, s.Conversations()[0].ChatID)

	s.Select(1)
	push(s, models.EventMessagesListed, models.MessagesListed{ChatID: 1, OtherUserImage: "them.png"})

	push(s, models.EventMessageCreated, models.MessageCreated{
		Data: models.CreatedMessage{
			ChatID:  1,
			Message: models.Message{Content: "any news?", CreatedAt: t2.Add(time.Hour)},
		},
	})

	msgs := s.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "them.png", msgs[0].SenderImage)

	list := s.Conversations()
	assert.Equal(t, 1, list[0].ChatID)
	assert.Equal(t, "any news?", list[0].LastMessage)
	assert.Equal(t, 2, list[1].ChatID)
}

func TestMessageCreatedForBackgroundChatPatchesSummaryOnly(t *testing.T) {
	s, _ := started(t, "prod")
	push(s, models.EventConversationsListed, models.ConversationsListed{
		Conversations: []models.Conversation{conv(1, "a", t1), conv(2, "b", t2)},
	})
	s.Select(2)
	push(s, models.EventMessagesListed, models.MessagesListed{ChatID: 2})

	push(s, models.EventMessageCreated, models.MessageCreated{
		Data: models.CreatedMessage{
			ChatID:  1,
			Message: models.Message{Content: "still there?", CreatedAt: t2.Add(time.Hour)},
		},
	})

	assert.Empty(t, s.Messages(), "background message must not enter the active log")
	list := s.Conversations()
	assert.Equal(t, 1, list[0].ChatID)
	assert.Equal(t, "still there?", list[0].LastMessage)
}

func TestMessageCreatedForUnknownChatRefreshesList(t *testing.T) {
	s, fake := started(t, "prod")
	push(s, models.EventConversationsListed, models.ConversationsListed{
		Conversations: []models.Conversation{conv(1, "a", t1)},
	})

	push(s, models.EventMessageCreated, models.MessageCreated{
		Data: models.CreatedMessage{ChatID: 9, Message: models.Message{Content: "new thread"}},
	})

	assert.Equal(t, models.EventListConversations, fake.emits[len(fake.emits)-1].event)
}

func TestNoMessagesFoundIsEmptyStateNotError(t *testing.T) {
	s, _ := started(t, "")
	push(s, models.EventConversationsListed, models.ConversationsListed{
		Conversations: []models.Conversation{conv(1, "a", t1)},
	})

	push(s, models.EventError, models.ChannelError{Message: models.NoMessagesFound})

	assert.Equal(t, LoadLoaded, s.LoadState())
	assert.Empty(t, s.Messages())
	assert.Empty(t, s.Notice())
}

func TestOtherErrorsSurfaceAsNotice(t *testing.T) {
	s, _ := started(t, "")

	push(s, models.EventError, models.ChannelError{Message: "backend exploded"})

	assert.Equal(t, "backend exploded", s.Notice())
	assert.Equal(t, Connected, s.State())
}

func TestDisconnectDiscardsLog(t *testing.T) {
	s, _ := started(t, "")
	push(s, models.EventConversationsListed, models.ConversationsListed{
		Conversations: []models.Conversation{conv(1, "a", t1)},
	})
	push(s, models.EventMessagesListed, models.MessagesListed{
		ChatID:   1,
		Messages: []models.Message{{Content: "hi"}},
	})

	push(s, channel.Disconnected, models.ChannelError{Message: "gone"})

	assert.Equal(t, Disconnected, s.State())
	assert.Empty(t, s.Messages())
	assert.Equal(t, LoadNotRequested, s.LoadState())
	assert.ErrorIs(t, s.Send("hi"), ErrNotConnected)
}

func TestUpdatesSignalCoalesces(t *testing.T) {
	s, _ := started(t, "")
	push(s, models.EventConversationsListed, models.ConversationsListed{})
	push(s, models.EventError, models.ChannelError{Message: "x"})

	select {
	case <-s.Updates():
	default:
		t.Fatal("expected a pending update signal")
	}
}
