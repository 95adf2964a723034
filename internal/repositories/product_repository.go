package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"storechat/internal/models"
)

var ErrProductNotFound = errors.New("product not found")

// ProductRepository abstracts listing persistence.
type ProductRepository interface {
	CreateProduct(ctx context.Context, p models.Product) (models.Product, error)
	UpdateProduct(ctx context.Context, p models.Product) error
	DeleteProduct(ctx context.Context, productID string, sellerID int) error
	GetProduct(ctx context.Context, productID string) (models.Product, error)
	ListBySeller(ctx context.Context, sellerID int) ([]models.Product, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
}

// ProductRepo is a sqlx implementation of ProductRepository.
type ProductRepo struct {
	db *sqlx.DB
}

// NewProductRepo constructs a ProductRepo.
func NewProductRepo(db *sqlx.DB) *ProductRepo {
	return &ProductRepo{db: db}
}

// CreateProduct stores a listing and its image URLs, assigning the id.
func (r *ProductRepo) CreateProduct(ctx context.Context, p models.Product) (models.Product, error) {
	p.ProductID = uuid.NewString()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO products (product_id, seller_id, name, description, price, stock, category_id)
         VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		p.ProductID, p.SellerID, p.Name, p.Description, p.Price, p.Stock, p.CategoryID)
	if err != nil {
		return models.Product{}, err
	}
	if err := r.replaceImages(ctx, p.ProductID, p.ImageURLs); err != nil {
		return models.Product{}, err
	}
	return p, nil
}

// UpdateProduct edits a listing; only the owning seller's rows match.
func (r *ProductRepo) UpdateProduct(ctx context.Context, p models.Product) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE products SET name=$1, description=$2, price=$3, stock=$4, category_id=$5
         WHERE product_id=$6 AND seller_id=$7`,
		p.Name, p.Description, p.Price, p.Stock, p.CategoryID, p.ProductID, p.SellerID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrProductNotFound
	}
	return r.replaceImages(ctx, p.ProductID, p.ImageURLs)
}

// DeleteProduct removes a listing owned by sellerID.
func (r *ProductRepo) DeleteProduct(ctx context.Context, productID string, sellerID int) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM products WHERE product_id=$1 AND seller_id=$2`, productID, sellerID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrProductNotFound
	}
	return nil
}

// GetProduct fetches one listing with its images.
func (r *ProductRepo) GetProduct(ctx context.Context, productID string) (models.Product, error) {
	var p models.Product
	err := r.db.GetContext(ctx, &p,
		`SELECT product_id, seller_id, name, description, price, stock, COALESCE(category_id, 0) AS category_id
         FROM products WHERE product_id=$1`, productID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Product{}, ErrProductNotFound
	}
	if err != nil {
		return models.Product{}, err
	}
	if err := r.db.SelectContext(ctx, &p.ImageURLs,
		`SELECT url FROM product_images WHERE product_id=$1 ORDER BY position`, productID); err != nil {
		return models.Product{}, err
	}
	return p, nil
}

// ListBySeller returns the seller's listings.
func (r *ProductRepo) ListBySeller(ctx context.Context, sellerID int) ([]models.Product, error) {
	var products []models.Product
	err := r.db.SelectContext(ctx, &products,
		`SELECT product_id, seller_id, name, description, price, stock, COALESCE(category_id, 0) AS category_id
         FROM products WHERE seller_id=$1 ORDER BY created_at DESC`, sellerID)
	return products, err
}

// ListCategories returns all product categories.
func (r *ProductRepo) ListCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	err := r.db.SelectContext(ctx, &categories,
		`SELECT category_id, category FROM categories ORDER BY category_id`)
	return categories, err
}

func (r *ProductRepo) replaceImages(ctx context.Context, productID string, urls []string) error {
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM product_images WHERE product_id=$1`, productID); err != nil {
		return err
	}
	for i, url := range urls {
		if _, err := r.db.ExecContext(ctx,
			`INSERT INTO product_images (product_id, position, url) VALUES ($1, $2, $3)`,
			productID, i, url); err != nil {
			return err
		}
	}
	return nil
}
