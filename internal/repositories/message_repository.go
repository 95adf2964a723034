package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"

	"storechat/internal/models"
)

// MessageRepository abstracts message persistence.
type MessageRepository interface {
	CreateMessage(ctx context.Context, chatID, senderID int, content string) (models.StoredMessage, error)
	ListMessages(ctx context.Context, chatID int) ([]models.StoredMessage, error)
}

// MessageRepo is a sqlx implementation of MessageRepository.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs a MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// CreateMessage appends a message to a thread.
func (r *MessageRepo) CreateMessage(ctx context.Context, chatID, senderID int, content string) (models.StoredMessage, error) {
	var msg models.StoredMessage
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO messages (chat_id, sender_id, content) VALUES ($1, $2, $3)
         RETURNING id, chat_id, sender_id, content, created_at`, chatID, senderID, content).
		Scan(&msg.ID, &msg.ChatID, &msg.SenderID, &msg.Content, &msg.CreatedAt)
	return msg, err
}

// ListMessages returns a thread's full history, oldest first.
func (r *MessageRepo) ListMessages(ctx context.Context, chatID int) ([]models.StoredMessage, error) {
	var msgs []models.StoredMessage
	err := r.db.SelectContext(ctx, &msgs,
		`SELECT id, chat_id, sender_id, content, created_at FROM messages
         WHERE chat_id=$1 ORDER BY created_at ASC`, chatID)
	return msgs, err
}
