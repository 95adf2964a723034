package storefront

import (
	"context"
	"net/http"

	"storechat/internal/models"
)

// Login authenticates and stores the session cookie in the jar.
func (c *Client) Login(ctx context.Context, email, password string) (models.User, error) {
	var resp struct {
		User models.User `json:"user"`
	}
	err := c.do(ctx, http.MethodPost, "/users/login", map[string]string{
		"email":    email,
		"password": password,
	}, &resp)
	return resp.User, err
}

// Verify confirms a signup code.
func (c *Client) Verify(ctx context.Context, email, code string) error {
	return c.do(ctx, http.MethodPost, "/users/verify", map[string]string{
		"email": email,
		"code":  code,
	}, nil)
}

// ShowCategories lists the product categories.
func (c *Client) ShowCategories(ctx context.Context) ([]models.Category, error) {
	var resp struct {
		Categories []models.Category `json:"categories"`
	}
	err := c.do(ctx, http.MethodGet, "/products/showCategories", nil, &resp)
	return resp.Categories, err
}

// ShowProduct fetches one listing.
func (c *Client) ShowProduct(ctx context.Context, productID string) (models.Product, error) {
	var resp struct {
		Product models.Product `json:"product"`
	}
	err := c.do(ctx, http.MethodPost, "/products/showProduct", map[string]string{
		"productid": productID,
	}, &resp)
	return resp.Product, err
}

// ShowUserListings lists the products the logged-in user sells.
func (c *Client) ShowUserListings(ctx context.Context) ([]models.Product, error) {
	var resp struct {
		Products []models.Product `json:"products"`
	}
	err := c.do(ctx, http.MethodGet, "/products/showUserProducts", nil, &resp)
	return resp.Products, err
}

// CreateProduct adds a listing and returns it with its assigned id.
func (c *Client) CreateProduct(ctx context.Context, p models.Product) (models.Product, error) {
	var resp struct {
		Product models.Product `json:"product"`
	}
	err := c.do(ctx, http.MethodPost, "/products/create", p, &resp)
	return resp.Product, err
}

// UpdateProduct edits a listing owned by the logged-in user.
func (c *Client) UpdateProduct(ctx context.Context, p models.Product) error {
	return c.do(ctx, http.MethodPost, "/products/update", p, nil)
}

// DeleteProduct removes a listing owned by the logged-in user.
func (c *Client) DeleteProduct(ctx context.Context, productID string) error {
	return c.do(ctx, http.MethodPost, "/products/delete", map[string]string{
		"productid": productID,
	}, nil)
}

// AlterProductToCart sets the cart quantity for a product; zero removes it.
func (c *Client) AlterProductToCart(ctx context.Context, productID string, quantity int) error {
	return c.do(ctx, http.MethodPost, "/products/alterProductToCart", map[string]any{
		"productid": productID,
		"quantity":  quantity,
	}, nil)
}

// ShowCart lists the cart contents.
func (c *Client) ShowCart(ctx context.Context) ([]models.CartProduct, error) {
	var resp struct {
		CartProducts []models.CartProduct `json:"cartProducts"`
	}
	err := c.do(ctx, http.MethodGet, "/cart/showUserProducts", nil, &resp)
	return resp.CartProducts, err
}

// DeleteCartProduct removes a product from the cart.
func (c *Client) DeleteCartProduct(ctx context.Context, productID string) error {
	return c.do(ctx, http.MethodPost, "/cart/deleteProduct", map[string]string{
		"productid": productID,
	}, nil)
}

// ShowPurchasedProducts lists completed purchases.
func (c *Client) ShowPurchasedProducts(ctx context.Context) ([]models.PurchasedProduct, error) {
	var resp struct {
		PurchasedProducts []models.PurchasedProduct `json:"purchasedProducts"`
	}
	err := c.do(ctx, http.MethodGet, "/purchases/showPurchasedProducts", nil, &resp)
	return resp.PurchasedProducts, err
}
