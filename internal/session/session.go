// Package session owns the client-side view of the storefront chat: the
// conversation list ordered by recency and the message log of the single
// active conversation, reconciled against server pushes and acknowledgements.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"storechat/internal/channel"
	"storechat/internal/models"
)

var (
	// ErrEmptyMessage rejects whitespace-only input before any emit.
	ErrEmptyMessage = errors.New("message text is empty")
	// ErrNoConversation means neither an active chat nor a product context
	// exists, so there is nowhere to send.
	ErrNoConversation = errors.New("no conversation selected")
	// ErrNotConnected is returned for operations before Start or after the
	// channel went away.
	ErrNotConnected = errors.New("session not connected")
)

// State is the session's connection lifecycle.
type State int

const (
	Disconnected State = iota
	Connecting
	Connected
)

// LoadState distinguishes "still fetching" from "fetched zero messages" for
// the active conversation's log.
type LoadState int

const (
	LoadNotRequested LoadState = iota
	LoadPending
	LoadLoaded
)

// Emitter is the slice of the channel the session drives. *channel.Channel
// satisfies it; tests substitute a fake.
type Emitter interface {
	Emit(event string, data any) error
	EmitWithAck(event string, data any, fn func(json.RawMessage)) error
	Close() error
}

// DialFunc opens the messaging channel, delivering every push to sink.
type DialFunc func(ctx context.Context, sink channel.Sink) (Emitter, error)

// ChannelDialer adapts channel.Dial to a DialFunc.
func ChannelDialer(url string, header http.Header) DialFunc {
	return func(ctx context.Context, sink channel.Sink) (Emitter, error) {
		return channel.Dial(ctx, url, header, sink)
	}
}

// Options configures a session.
type Options struct {
	// ProductID is the product context carried into the view when the user
	// arrived from a product page and no conversation exists yet.
	ProductID string
	Dial      DialFunc
	// Now stamps client timestamps; defaults to time.Now.
	Now func() time.Time
}

// Session is one mounted chat view and its single channel connection. All
// exported methods are safe for concurrent use; inbound events are already
// serialized by the channel's read loop.
type Session struct {
	dial DialFunc
	now  func() time.Time

	mu               sync.Mutex
	emitter          Emitter
	state            State
	conversations    []models.Conversation
	messages         []models.Message
	currentChatID    int
	productID        string
	initialProductID string
	loadState        LoadState
	currentUserImage string
	otherUserImage   string
	notice           string

	updates chan struct{}
}

// New builds a session; Start connects it.
func New(opts Options) *Session {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Session{
		dial:             opts.Dial,
		now:              now,
		productID:        opts.ProductID,
		initialProductID: opts.ProductID,
		updates:          make(chan struct{}, 1),
	}
}

// Start dials the channel and requests the conversation list. A session
// instance connects once; after disconnect a new one must be created.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.state != Disconnected || s.emitter != nil {
		s.mu.Unlock()
		return errors.New("session already started")
	}
	s.state = Connecting
	s.mu.Unlock()

	emitter, err := s.dial(ctx, s.handleEvent)
	if err != nil {
		s.mu.Lock()
		s.state = Disconnected
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	s.emitter = emitter
	s.state = Connected
	err = emitter.Emit(models.EventListConversations, nil)
	s.mu.Unlock()
	s.changed()
	return err
}

// Close tears down the channel connection.
func (s *Session) Close() error {
	s.mu.Lock()
	emitter := s.emitter
	s.mu.Unlock()
	if emitter == nil {
		return nil
	}
	return emitter.Close()
}

// ListConversations re-requests the conversation summaries. The result lands
// asynchronously as a conversations_listed push.
func (s *Session) ListConversations() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Connected {
		return ErrNotConnected
	}
	return s.emitter.Emit(models.EventListConversations, nil)
}

// Select makes chatID the active conversation and joins it. Unknown ids are
// ignored; re-selecting the active conversation simply re-fetches its log.
func (s *Session) Select(chatID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Connected {
		return
	}
	for _, conv := range s.conversations {
		if conv.ChatID == chatID {
			s.join(conv)
			return
		}
	}
}

// join issues the joinConversation emit for conv. Caller holds s.mu.
func (s *Session) join(conv models.Conversation) {
	s.currentChatID = conv.ChatID
	s.productID = conv.ProductID
	s.loadState = LoadPending
	s.messages = nil
	if err := s.emitter.Emit(models.EventJoinConversation, models.JoinConversation{
		ChatID: conv.ChatID,
		Date:   s.now().Format(time.RFC3339),
	}); err != nil {
		log.Printf("join conversation %d: %v", conv.ChatID, err)
	}
	s.changed()
}

// Send posts text to the active conversation, or starts a new conversation
// from the product context when none is active. The message log is only
// mutated once the server acknowledges success.
func (s *Session) Send(text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyMessage
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Connected {
		return ErrNotConnected
	}

	if s.currentChatID == 0 {
		if s.productID == "" {
			return ErrNoConversation
		}
		return s.emitter.EmitWithAck(models.EventCreateConversation, models.CreateConversationAndMessage{
			ProductID: s.productID,
			Content:   text,
		}, s.sendAck)
	}

	return s.emitter.EmitWithAck(models.EventSendMessage, models.SendMessage{
		ChatID:  s.currentChatID,
		Content: text,
	}, s.sendAck)
}

// sendAck applies a send acknowledgement. Runs on the channel read loop.
func (s *Session) sendAck(raw json.RawMessage) {
	var ack models.Ack
	if err := json.Unmarshal(raw, &ack); err != nil {
		log.Printf("decode send ack: %v", err)
		return
	}

	s.mu.Lock()
	if !ack.Success {
		s.notice = ack.Error
		s.mu.Unlock()
		s.changed()
		return
	}

	if ack.ChatID != 0 {
		s.currentChatID = ack.ChatID
	}
	if ack.Message != nil {
		msg := *ack.Message
		msg.IsCurrentUser = true
		msg.SenderImage = s.currentUserImage
		s.messages = append(s.messages, msg)
		s.loadState = LoadLoaded
	}
	err := s.emitter.Emit(models.EventListConversations, nil)
	s.mu.Unlock()
	if err != nil {
		log.Printf("refresh conversations: %v", err)
	}
	s.changed()
}

// handleEvent is the single entry point for server pushes.
func (s *Session) handleEvent(ev channel.Event) {
	switch ev.Name {
	case models.EventConversationsListed:
		var p models.ConversationsListed
		if decode(ev, &p) {
			s.conversationsListed(p)
		}
	case models.EventMessagesListed:
		var p models.MessagesListed
		if decode(ev, &p) {
			s.messagesListed(p)
		}
	case models.EventMessageCreated:
		var p models.MessageCreated
		if decode(ev, &p) {
			s.messageCreated(p.Data)
		}
	case models.EventError:
		var p models.ChannelError
		if decode(ev, &p) {
			s.channelError(p)
		}
	case channel.Disconnected:
		s.disconnected()
	default:
		log.Printf("unhandled channel event %q", ev.Name)
	}
}

func decode(ev channel.Event, v any) bool {
	if err := json.Unmarshal(ev.Data, v); err != nil {
		log.Printf("decode %s: %v", ev.Name, err)
		return false
	}
	return true
}

func (s *Session) conversationsListed(p models.ConversationsListed) {
	s.mu.Lock()
	s.conversations = p.Conversations
	sortConversations(s.conversations)

	// Convenience default: with no product context and nothing selected,
	// open the most recent conversation.
	if s.currentChatID == 0 && s.initialProductID == "" && len(s.conversations) > 0 {
		s.join(s.conversations[0])
	}
	s.mu.Unlock()
	s.changed()
}

func (s *Session) messagesListed(p models.MessagesListed) {
	s.mu.Lock()
	// A late response for a previously joined conversation must not
	// overwrite the current one's log.
	if p.ChatID != 0 && p.ChatID != s.currentChatID {
		s.mu.Unlock()
		return
	}

	s.currentUserImage = p.IsCurrentUserImage
	s.otherUserImage = p.OtherUserImage
	s.messages = make([]models.Message, len(p.Messages))
	for i, msg := range p.Messages {
		msg.SenderImage = s.avatarFor(msg.IsCurrentUser)
		s.messages[i] = msg
	}
	s.loadState = LoadLoaded
	s.mu.Unlock()
	s.changed()
}

func (s *Session) messageCreated(d models.CreatedMessage) {
	s.mu.Lock()
	when := d.CreatedAt
	if when.IsZero() {
		when = s.now()
	}

	// Summaries update for every conversation, active or not, so the list
	// order stays accurate while viewing another thread.
	found := false
	for i := range s.conversations {
		if s.conversations[i].ChatID == d.ChatID {
			s.conversations[i].LastMessage = d.Content
			s.conversations[i].LastMessageDate = when
			found = true
			break
		}
	}
	sortConversations(s.conversations)

	if d.ChatID == s.currentChatID {
		msg := d.Message
		msg.SenderImage = s.avatarFor(msg.IsCurrentUser)
		s.messages = append(s.messages, msg)
	}

	var err error
	if !found && s.emitter != nil {
		// A thread we have never seen; refresh the list rather than
		// invent a summary row.
		err = s.emitter.Emit(models.EventListConversations, nil)
	}
	s.mu.Unlock()
	if err != nil {
		log.Printf("refresh conversations: %v", err)
	}
	s.changed()
}

func (s *Session) channelError(p models.ChannelError) {
	s.mu.Lock()
	s.loadState = LoadLoaded
	if p.Message == models.NoMessagesFound {
		// A joined conversation with no history is a valid empty result.
		s.messages = nil
	} else {
		s.notice = p.Message
	}
	s.mu.Unlock()
	s.changed()
}

func (s *Session) disconnected() {
	s.mu.Lock()
	s.state = Disconnected
	s.messages = nil
	s.loadState = LoadNotRequested
	s.mu.Unlock()
	s.changed()
}

// avatarFor is the pure derivation of a message's avatar from the session's
// two avatar URLs. Caller holds s.mu.
func (s *Session) avatarFor(isCurrentUser bool) string {
	if isCurrentUser {
		return s.currentUserImage
	}
	return s.otherUserImage
}

// sortConversations orders descending by last message date; the stable sort
// keeps arrival order for ties.
func sortConversations(conversations []models.Conversation) {
	sort.SliceStable(conversations, func(i, j int) bool {
		return conversations[i].LastMessageDate.After(conversations[j].LastMessageDate)
	})
}

// changed coalesces change notifications for the render layer.
func (s *Session) changed() {
	select {
	case s.updates <- struct{}{}:
	default:
	}
}

// Updates signals after every state change; reads coalesce.
func (s *Session) Updates() <-chan struct{} { return s.updates }

// Conversations returns a copy of the ordered conversation list.
func (s *Session) Conversations() []models.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Conversation, len(s.conversations))
	copy(out, s.conversations)
	return out
}

// Messages returns a copy of the active conversation's log.
func (s *Session) Messages() []models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Active reports the active chat id (zero when none) and product context.
func (s *Session) Active() (chatID int, productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentChatID, s.productID
}

// State reports the connection lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// LoadState reports whether the active log is pending, loaded or untouched.
func (s *Session) LoadState() LoadState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadState
}

// Notice returns the latest non-fatal server error surfaced to the user.
func (s *Session) Notice() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.notice
}
