package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"storechat/internal/models"
)

type UserRepositoryMock struct {
	mock.Mock
}

func (m *UserRepositoryMock) CreateUser(ctx context.Context, email, name, image, password string) (models.User, error) {
	args := m.Called(ctx, email, name, image, password)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) GetUser(ctx context.Context, userID int) (models.User, error) {
	args := m.Called(ctx, userID)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) Authenticate(ctx context.Context, email, password string) (models.User, error) {
	args := m.Called(ctx, email, password)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

type ProductRepositoryMock struct {
	mock.Mock
}

func (m *ProductRepositoryMock) CreateProduct(ctx context.Context, p models.Product) (models.Product, error) {
	args := m.Called(ctx, p)
	var product models.Product
	if val := args.Get(0); val != nil {
		product = val.(models.Product)
	}
	return product, args.Error(1)
}

func (m *ProductRepositoryMock) UpdateProduct(ctx context.Context, p models.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *ProductRepositoryMock) DeleteProduct(ctx context.Context, productID string, sellerID int) error {
	args := m.Called(ctx, productID, sellerID)
	return args.Error(0)
}

func (m *ProductRepositoryMock) GetProduct(ctx context.Context, productID string) (models.Product, error) {
	args := m.Called(ctx, productID)
	var product models.Product
	if val := args.Get(0); val != nil {
		product = val.(models.Product)
	}
	return product, args.Error(1)
}

func (m *ProductRepositoryMock) ListBySeller(ctx context.Context, sellerID int) ([]models.Product, error) {
	args := m.Called(ctx, sellerID)
	var list []models.Product
	if val := args.Get(0); val != nil {
		list = val.([]models.Product)
	}
	return list, args.Error(1)
}

func (m *ProductRepositoryMock) ListCategories(ctx context.Context) ([]models.Category, error) {
	args := m.Called(ctx)
	var list []models.Category
	if val := args.Get(0); val != nil {
		list = val.([]models.Category)
	}
	return list, args.Error(1)
}

type CartRepositoryMock struct {
	mock.Mock
}

func (m *CartRepositoryMock) SetCartQuantity(ctx context.Context, userID int, productID string, quantity int) error {
	args := m.Called(ctx, userID, productID, quantity)
	return args.Error(0)
}

func (m *CartRepositoryMock) RemoveFromCart(ctx context.Context, userID int, productID string) error {
	args := m.Called(ctx, userID, productID)
	return args.Error(0)
}

func (m *CartRepositoryMock) ListCart(ctx context.Context, userID int) ([]models.CartProduct, error) {
	args := m.Called(ctx, userID)
	var list []models.CartProduct
	if val := args.Get(0); val != nil {
		list = val.([]models.CartProduct)
	}
	return list, args.Error(1)
}

func (m *CartRepositoryMock) Checkout(ctx context.Context, userID int) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *CartRepositoryMock) ListPurchases(ctx context.Context, userID int) ([]models.PurchasedProduct, error) {
	args := m.Called(ctx, userID)
	var list []models.PurchasedProduct
	if val := args.Get(0); val != nil {
		list = val.([]models.PurchasedProduct)
	}
	return list, args.Error(1)
}

type ConversationRepositoryMock struct {
	mock.Mock
}

func (m *ConversationRepositoryMock) CreateConversation(ctx context.Context, productID string, buyerID int) (models.Chat, error) {
	args := m.Called(ctx, productID, buyerID)
	var chat models.Chat
	if val := args.Get(0); val != nil {
		chat = val.(models.Chat)
	}
	return chat, args.Error(1)
}

func (m *ConversationRepositoryMock) Participants(ctx context.Context, chatID int) (int, int, error) {
	args := m.Called(ctx, chatID)
	return args.Int(0), args.Int(1), args.Error(2)
}

func (m *ConversationRepositoryMock) ListForUser(ctx context.Context, userID int) ([]models.Conversation, error) {
	args := m.Called(ctx, userID)
	var list []models.Conversation
	if val := args.Get(0); val != nil {
		list = val.([]models.Conversation)
	}
	return list, args.Error(1)
}

type MessageRepositoryMock struct {
	mock.Mock
}

func (m *MessageRepositoryMock) CreateMessage(ctx context.Context, chatID, senderID int, content string) (models.StoredMessage, error) {
	args := m.Called(ctx, chatID, senderID, content)
	var msg models.StoredMessage
	if val := args.Get(0); val != nil {
		msg = val.(models.StoredMessage)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) ListMessages(ctx context.Context, chatID int) ([]models.StoredMessage, error) {
	args := m.Called(ctx, chatID)
	var msgs []models.StoredMessage
	if val := args.Get(0); val != nil {
		msgs = val.([]models.StoredMessage)
	}
	return msgs, args.Error(1)
}
