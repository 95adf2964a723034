package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"storechat/internal/models"
)

var ErrChatNotFound = errors.New("chat not found")

// ConversationRepository abstracts buyer-seller thread persistence.
type ConversationRepository interface {
	CreateConversation(ctx context.Context, productID string, buyerID int) (models.Chat, error)
	Participants(ctx context.Context, chatID int) (buyerID, sellerID int, err error)
	ListForUser(ctx context.Context, userID int) ([]models.Conversation, error)
}

// ConversationRepo is a sqlx implementation of ConversationRepository.
type ConversationRepo struct {
	db *sqlx.DB
}

// NewConversationRepo constructs a ConversationRepo.
func NewConversationRepo(db *sqlx.DB) *ConversationRepo {
	return &ConversationRepo{db: db}
}

// CreateConversation creates (or returns the existing) thread between buyerID
// and the product's seller.
func (r *ConversationRepo) CreateConversation(ctx context.Context, productID string, buyerID int) (models.Chat, error) {
	var chat models.Chat
	err := r.db.GetContext(ctx, &chat,
		`SELECT id, product_id, buyer_id, created_at FROM chats WHERE product_id=$1 AND buyer_id=$2`,
		productID, buyerID)
	if err == nil {
		return chat, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return models.Chat{}, err
	}

	err = r.db.QueryRowxContext(ctx,
		`INSERT INTO chats (product_id, buyer_id) VALUES ($1, $2)
         RETURNING id, product_id, buyer_id, created_at`, productID, buyerID).
		Scan(&chat.ID, &chat.ProductID, &chat.BuyerID, &chat.CreatedAt)
	return chat, err
}

// Participants returns both sides of a thread; membership checks compare
// the caller against the pair.
func (r *ConversationRepo) Participants(ctx context.Context, chatID int) (int, int, error) {
	var row struct {
		BuyerID  int `db:"buyer_id"`
		SellerID int `db:"seller_id"`
	}
	err := r.db.GetContext(ctx, &row,
		`SELECT c.buyer_id, p.seller_id FROM chats c
         JOIN products p ON p.product_id = c.product_id
         WHERE c.id=$1`, chatID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, 0, ErrChatNotFound
	}
	return row.BuyerID, row.SellerID, err
}

// ListForUser returns conversation summaries for every thread the user is on
// either side of, with the latest message folded in.
func (r *ConversationRepo) ListForUser(ctx context.Context, userID int) ([]models.Conversation, error) {
	query := `SELECT c.id, c.product_id, p.name AS product_name,
            COALESCE((SELECT url FROM product_images pi WHERE pi.product_id = p.product_id ORDER BY position LIMIT 1), '') AS product_image,
            COALESCE(m.content, '') AS last_message,
            COALESCE(m.created_at, c.created_at) AS last_message_date
        FROM chats c
        JOIN products p ON p.product_id = c.product_id
        LEFT JOIN LATERAL (
            SELECT content, created_at FROM messages
            WHERE chat_id = c.id ORDER BY created_at DESC LIMIT 1
        ) m ON TRUE
        WHERE c.buyer_id=$1 OR p.seller_id=$1
        ORDER BY last_message_date DESC`
	var conversations []models.Conversation
	err := r.db.SelectContext(ctx, &conversations, query, userID)
	return conversations, err
}
