package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"storechat/internal/repositories"
)

// CartHandler manages cart and purchase endpoints.
type CartHandler struct {
	cart repositories.CartRepository
}

// NewCartHandler builds a CartHandler.
func NewCartHandler(cart repositories.CartRepository) *CartHandler {
	return &CartHandler{cart: cart}
}

// ShowUserProducts lists the cart contents.
func (h *CartHandler) ShowUserProducts(c *gin.Context) {
	items, err := h.cart.ListCart(c.Request.Context(), c.GetInt("userID"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load cart"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"cartProducts": items})
}

// DeleteProduct removes a product from the cart.
func (h *CartHandler) DeleteProduct(c *gin.Context) {
	var req struct {
		ProductID string `json:"productid" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.cart.RemoveFromCart(c.Request.Context(), c.GetInt("userID"), req.ProductID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not remove product"})
		return
	}
	c.Status(http.StatusNoContent)
}

// Checkout converts the cart into purchases.
func (h *CartHandler) Checkout(c *gin.Context) {
	err := h.cart.Checkout(c.Request.Context(), c.GetInt("userID"))
	if errors.Is(err, repositories.ErrInsufficientStock) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "checkout failed"})
		return
	}
	c.Status(http.StatusNoContent)
}

// ShowPurchasedProducts lists the purchase history.
func (h *CartHandler) ShowPurchasedProducts(c *gin.Context) {
	items, err := h.cart.ListPurchases(c.Request.Context(), c.GetInt("userID"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load purchases"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"purchasedProducts": items})
}
