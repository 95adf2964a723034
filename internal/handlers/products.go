package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"storechat/internal/models"
	"storechat/internal/repositories"
)

// ProductHandler manages listing endpoints.
type ProductHandler struct {
	products repositories.ProductRepository
	cart     repositories.CartRepository
}

// NewProductHandler builds a ProductHandler.
func NewProductHandler(products repositories.ProductRepository, cart repositories.CartRepository) *ProductHandler {
	return &ProductHandler{products: products, cart: cart}
}

// ShowCategories lists the product categories. Public.
func (h *ProductHandler) ShowCategories(c *gin.Context) {
	categories, err := h.products.ListCategories(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load categories"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// ShowProduct returns one listing.
func (h *ProductHandler) ShowProduct(c *gin.Context) {
	var req struct {
		ProductID string `json:"productid" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	product, err := h.products.GetProduct(c.Request.Context(), req.ProductID)
	if err != nil {
		if errors.Is(err, repositories.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load product"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": product})
}

// ShowUserProducts lists the authenticated seller's listings.
func (h *ProductHandler) ShowUserProducts(c *gin.Context) {
	userID := c.GetInt("userID")
	products, err := h.products.ListBySeller(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load products"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

// Create adds a listing owned by the authenticated user.
func (h *ProductHandler) Create(c *gin.Context) {
	var req models.Product
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Name == "" || req.Price <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name and positive price are required"})
		return
	}

	req.SellerID = c.GetInt("userID")
	product, err := h.products.CreateProduct(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create product"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"product": product})
}

// Update edits a listing; only the owner's listings match.
func (h *ProductHandler) Update(c *gin.Context) {
	var req models.Product
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.ProductID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "productid is required"})
		return
	}

	req.SellerID = c.GetInt("userID")
	if err := h.products.UpdateProduct(c.Request.Context(), req); err != nil {
		if errors.Is(err, repositories.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update product"})
		return
	}
	c.Status(http.StatusNoContent)
}

// Delete removes a listing; only the owner's listings match.
func (h *ProductHandler) Delete(c *gin.Context) {
	var req struct {
		ProductID string `json:"productid" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.products.DeleteProduct(c.Request.Context(), req.ProductID, c.GetInt("userID")); err != nil {
		if errors.Is(err, repositories.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete product"})
		return
	}
	c.Status(http.StatusNoContent)
}

// AlterProductToCart sets the cart quantity for a product.
func (h *ProductHandler) AlterProductToCart(c *gin.Context) {
	var req struct {
		ProductID string `json:"productid" binding:"required"`
		Quantity  int    `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.cart.SetCartQuantity(c.Request.Context(), c.GetInt("userID"), req.ProductID, req.Quantity)
	switch {
	case errors.Is(err, repositories.ErrProductNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
	case errors.Is(err, repositories.ErrInsufficientStock):
		c.JSON(http.StatusConflict, gin.H{"error": "product out of stock"})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update cart"})
	default:
		c.Status(http.StatusNoContent)
	}
}
