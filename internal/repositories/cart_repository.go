package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"storechat/internal/models"
)

var ErrInsufficientStock = errors.New("product out of stock")

// CartRepository abstracts cart and purchase persistence.
type CartRepository interface {
	SetCartQuantity(ctx context.Context, userID int, productID string, quantity int) error
	RemoveFromCart(ctx context.Context, userID int, productID string) error
	ListCart(ctx context.Context, userID int) ([]models.CartProduct, error)
	Checkout(ctx context.Context, userID int) error
	ListPurchases(ctx context.Context, userID int) ([]models.PurchasedProduct, error)
}

// CartRepo is a sqlx implementation of CartRepository.
type CartRepo struct {
	db *sqlx.DB
}

// NewCartRepo constructs a CartRepo.
func NewCartRepo(db *sqlx.DB) *CartRepo {
	return &CartRepo{db: db}
}

// SetCartQuantity upserts the cart line; zero or negative removes it.
func (r *CartRepo) SetCartQuantity(ctx context.Context, userID int, productID string, quantity int) error {
	if quantity <= 0 {
		return r.RemoveFromCart(ctx, userID, productID)
	}

	var stock int
	if err := r.db.GetContext(ctx, &stock,
		`SELECT stock FROM products WHERE product_id=$1`, productID); err != nil {
		return ErrProductNotFound
	}
	if quantity > stock {
		return ErrInsufficientStock
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO cart_products (user_id, product_id, quantity) VALUES ($1, $2, $3)
         ON CONFLICT (user_id, product_id) DO UPDATE SET quantity = EXCLUDED.quantity`,
		userID, productID, quantity)
	return err
}

// RemoveFromCart deletes the cart line.
func (r *CartRepo) RemoveFromCart(ctx context.Context, userID int, productID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM cart_products WHERE user_id=$1 AND product_id=$2`, userID, productID)
	return err
}

// ListCart returns the cart contents with product details.
func (r *CartRepo) ListCart(ctx context.Context, userID int) ([]models.CartProduct, error) {
	var items []models.CartProduct
	err := r.db.SelectContext(ctx, &items,
		`SELECT p.product_id, p.seller_id, p.name, p.description, p.price, p.stock,
                COALESCE(p.category_id, 0) AS category_id, cp.quantity
         FROM cart_products cp JOIN products p ON p.product_id = cp.product_id
         WHERE cp.user_id=$1 ORDER BY p.name`, userID)
	return items, err
}

// Checkout converts the cart into purchase rows and decrements stock, all in
// one transaction.
func (r *CartRepo) Checkout(ctx context.Context, userID int) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var lines []struct {
		ProductID string `db:"product_id"`
		Quantity  int    `db:"quantity"`
	}
	if err := tx.SelectContext(ctx, &lines,
		`SELECT product_id, quantity FROM cart_products WHERE user_id=$1`, userID); err != nil {
		return err
	}

	for _, line := range lines {
		res, err := tx.ExecContext(ctx,
			`UPDATE products SET stock = stock - $1 WHERE product_id=$2 AND stock >= $1`,
			line.Quantity, line.ProductID)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("%w: %s", ErrInsufficientStock, line.ProductID)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO purchases (user_id, product_id, quantity) VALUES ($1, $2, $3)`,
			userID, line.ProductID, line.Quantity); err != nil {
			return err
		}
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM cart_products WHERE user_id=$1`, userID); err != nil {
		return err
	}
	return tx.Commit()
}

// ListPurchases returns the user's purchase history, most recent first.
func (r *CartRepo) ListPurchases(ctx context.Context, userID int) ([]models.PurchasedProduct, error) {
	var items []models.PurchasedProduct
	err := r.db.SelectContext(ctx, &items,
		`SELECT p.product_id, p.seller_id, p.name, p.description, p.price, p.stock,
                COALESCE(p.category_id, 0) AS category_id, pu.quantity, pu.purchased_at
         FROM purchases pu JOIN products p ON p.product_id = pu.product_id
         WHERE pu.user_id=$1 ORDER BY pu.purchased_at DESC`, userID)
	return items, err
}
