package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"storechat/internal/mocks"
	"storechat/internal/models"
	"storechat/internal/repositories"
)

func setupProductRouter(handler *ProductHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", 1)
		c.Next()
	})
	r.GET("/products/showCategories", handler.ShowCategories)
	r.POST("/products/showProduct", handler.ShowProduct)
	r.GET("/products/showUserProducts", handler.ShowUserProducts)
	r.POST("/products/create", handler.Create)
	r.POST("/products/update", handler.Update)
	r.POST("/products/delete", handler.Delete)
	r.POST("/products/alterProductToCart", handler.AlterProductToCart)
	return r
}

func TestShowCategoriesSuccess(t *testing.T) {
	productRepo := new(mocks.ProductRepositoryMock)
	handler := NewProductHandler(productRepo, nil)
	router := setupProductRouter(handler)

	productRepo.On("ListCategories", mock.Anything).Return([]models.Category{{CategoryID: 1, Category: "Books"}}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/products/showCategories", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string][]models.Category
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp["categories"], 1)
	productRepo.AssertExpectations(t)
}

func TestShowProductSuccess(t *testing.T) {
	productRepo := new(mocks.ProductRepositoryMock)
	handler := NewProductHandler(productRepo, nil)
	router := setupProductRouter(handler)

	productRepo.On("GetProduct", mock.Anything, "p-1").Return(models.Product{ProductID: "p-1", Name: "lamp"}, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/products/showProduct", bytes.NewBufferString(`{"productid":"p-1"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	productRepo.AssertExpectations(t)
}

func TestShowProductNotFound(t *testing.T) {
	productRepo := new(mocks.ProductRepositoryMock)
	handler := NewProductHandler(productRepo, nil)
	router := setupProductRouter(handler)

	productRepo.On("GetProduct", mock.Anything, "missing").Return(models.Product{}, repositories.ErrProductNotFound).Once()

	req := httptest.NewRequest(http.MethodPost, "/products/showProduct", bytes.NewBufferString(`{"productid":"missing"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	productRepo.AssertExpectations(t)
}

func TestShowUserProductsRepoError(t *testing.T) {
	productRepo := new(mocks.ProductRepositoryMock)
	handler := NewProductHandler(productRepo, nil)
	router := setupProductRouter(handler)

	productRepo.On("ListBySeller", mock.Anything, 1).Return(([]models.Product)(nil), assert.AnError).Once()

	req := httptest.NewRequest(http.MethodGet, "/products/showUserProducts", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	productRepo.AssertExpectations(t)
}

func TestCreateProductSetsSeller(t *testing.T) {
	productRepo := new(mocks.ProductRepositoryMock)
	handler := NewProductHandler(productRepo, nil)
	router := setupProductRouter(handler)

	productRepo.On("CreateProduct", mock.Anything, mock.MatchedBy(func(p models.Product) bool {
		return p.SellerID == 1 && p.Name == "lamp"
	})).Return(models.Product{ProductID: "p-9", SellerID: 1, Name: "lamp", Price: 12}, nil).Once()

	body := bytes.NewBufferString(`{"name":"lamp","price":12,"categoryid":1}`)
	req := httptest.NewRequest(http.MethodPost, "/products/create", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	productRepo.AssertExpectations(t)
}

func TestCreateProductRejectsZeroPrice(t *testing.T) {
	handler := NewProductHandler(new(mocks.ProductRepositoryMock), nil)
	router := setupProductRouter(handler)

	req := httptest.NewRequest(http.MethodPost, "/products/create", bytes.NewBufferString(`{"name":"lamp","price":0}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateProductNotOwned(t *testing.T) {
	productRepo := new(mocks.ProductRepositoryMock)
	handler := NewProductHandler(productRepo, nil)
	router := setupProductRouter(handler)

	productRepo.On("UpdateProduct", mock.Anything, mock.MatchedBy(func(p models.Product) bool {
		return p.ProductID == "p-2" && p.SellerID == 1
	})).Return(repositories.ErrProductNotFound).Once()

	req := httptest.NewRequest(http.MethodPost, "/products/update", bytes.NewBufferString(`{"productid":"p-2","name":"lamp","price":5}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	productRepo.AssertExpectations(t)
}

func TestDeleteProductSuccess(t *testing.T) {
	productRepo := new(mocks.ProductRepositoryMock)
	handler := NewProductHandler(productRepo, nil)
	router := setupProductRouter(handler)

	productRepo.On("DeleteProduct", mock.Anything, "p-3", 1).Return(nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/products/delete", bytes.NewBufferString(`{"productid":"p-3"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	productRepo.AssertExpectations(t)
}

func TestAlterProductToCartOutOfStock(t *testing.T) {
	cartRepo := new(mocks.CartRepositoryMock)
	handler := NewProductHandler(new(mocks.ProductRepositoryMock), cartRepo)
	router := setupProductRouter(handler)

	cartRepo.On("SetCartQuantity", mock.Anything, 1, "p-4", 3).Return(repositories.ErrInsufficientStock).Once()

	req := httptest.NewRequest(http.MethodPost, "/products/alterProductToCart", bytes.NewBufferString(`{"productid":"p-4","quantity":3}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)
	cartRepo.AssertExpectations(t)
}

func TestAlterProductToCartSuccess(t *testing.T) {
	cartRepo := new(mocks.CartRepositoryMock)
	handler := NewProductHandler(new(mocks.ProductRepositoryMock), cartRepo)
	router := setupProductRouter(handler)

	cartRepo.On("SetCartQuantity", mock.Anything, 1, "p-4", 2).Return(nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/products/alterProductToCart", bytes.NewBufferString(`{"productid":"p-4","quantity":2}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	cartRepo.AssertExpectations(t)
}
