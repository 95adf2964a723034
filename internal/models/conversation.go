package models

import "time"

// Conversation is a buyer-seller thread about one product. ChatID is zero until
// the first message creates the thread server-side; before that only ProductID
// identifies the context.
type Conversation struct {
	ChatID          int       `db:"id" json:"chatId"`
	ProductID       string    `db:"product_id" json:"productId"`
	ProductName     string    `db:"product_name" json:"productName"`
	ProductImage    string    `db:"product_image" json:"productImage"`
	LastMessage     string    `db:"last_message" json:"lastMessage"`
	LastMessageDate time.Time `db:"last_message_date" json:"lastMessageDate"`
}

// Message is a single chat message as the client sees it. SenderImage is never
// stored by the server; the session stamps it from the two session-level avatar
// URLs based on IsCurrentUser.
type Message struct {
	ID            int       `db:"id" json:"id,omitempty"`
	Content       string    `db:"content" json:"content"`
	IsCurrentUser bool      `db:"-" json:"isCurrentUser"`
	SenderImage   string    `db:"-" json:"senderImage,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt,omitempty"`
}

// Chat is the dev backend's persisted conversation row. The seller side is
// derived from the product's owner.
type Chat struct {
	ID        int       `db:"id"`
	ProductID string    `db:"product_id"`
	BuyerID   int       `db:"buyer_id"`
	CreatedAt time.Time `db:"created_at"`
}

// StoredMessage is the dev backend's persisted row; IsCurrentUser is computed
// per recipient at delivery time.
type StoredMessage struct {
	ID        int       `db:"id"`
	ChatID    int       `db:"chat_id"`
	SenderID  int       `db:"sender_id"`
	Content   string    `db:"content"`
	CreatedAt time.Time `db:"created_at"`
}
