package models

// Channel event names. Client emits use lowerCamel verbs, server pushes use
// snake_case past tense, matching the backend protocol.
const (
	EventListConversations   = "listConversations"
	EventJoinConversation    = "joinConversation"
	EventCreateConversation  = "createConversationAndMessage"
	EventSendMessage         = "sendMessage"
	EventConversationsListed = "conversations_listed"
	EventMessagesListed      = "messages_listed"
	EventMessageCreated      = "message_created"
	EventError               = "error"
)

// NoMessagesFound is the error push the backend sends for a joined chat with an
// empty history. Clients treat it as a valid empty result, not a failure.
const NoMessagesFound = "No messages found for this chat"

// JoinConversation is the payload of a joinConversation emit. Date is a client
// timestamp in RFC 3339.
type JoinConversation struct {
	ChatID int    `json:"chatId"`
	Date   string `json:"date"`
}

// CreateConversationAndMessage starts a new thread with its first message.
// The lowercase "productid" key is what the backend expects.
type CreateConversationAndMessage struct {
	ProductID string `json:"productid"`
	Content   string `json:"content"`
}

// SendMessage posts to an existing thread.
type SendMessage struct {
	ChatID  int    `json:"chatId"`
	Content string `json:"content"`
}

// Ack is the acknowledgement payload for createConversationAndMessage and
// sendMessage. ChatID is only present when a new conversation was created.
type Ack struct {
	Success bool     `json:"success"`
	ChatID  int      `json:"chatId,omitempty"`
	Message *Message `json:"message,omitempty"`
	Error   string   `json:"error,omitempty"`
}

// ConversationsListed replaces the client's conversation list.
type ConversationsListed struct {
	Conversations []Conversation `json:"conversations"`
}

// MessagesListed replaces the active message log. ChatID identifies which join
// this answers so late responses can be discarded.
type MessagesListed struct {
	ChatID             int       `json:"chatId"`
	Messages           []Message `json:"messages"`
	IsCurrentUserImage string    `json:"isCurrentUserImage"`
	OtherUserImage     string    `json:"otherUserImage"`
}

// CreatedMessage is the body of a message_created push.
type CreatedMessage struct {
	ChatID int `json:"chatId"`
	Message
}

// MessageCreated is a message_created push.
type MessageCreated struct {
	Data CreatedMessage `json:"data"`
}

// ChannelError is an error push.
type ChannelError struct {
	Message string `json:"message"`
}
