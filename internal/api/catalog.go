package api

import (
	"context"
	"net/http"

	"storefront-service/internal/models"
	"storefront-service/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// popularCategory is the category served by /popularindc
const popularCategory = "dc"

type removeProductRequest struct {
	ID *int64 `json:"id" binding:"required"`
}

func (h *Handler) addProduct(c *gin.Context) {
	var req service.AddProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	product, err := h.svc.Catalog.AddProduct(c.Request.Context(), &req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"name":    product.Name,
		"id":      product.ID,
	})
}

func (h *Handler) removeProduct(c *gin.Context) {
	var req removeProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	product, err := h.svc.Catalog.RemoveProduct(c.Request.Context(), *req.ID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"name":    product.Name,
	})
}

func (h *Handler) allProducts(c *gin.Context) {
	h.listing(c, h.svc.Catalog.ListProducts)
}

func (h *Handler) newCollections(c *gin.Context) {
	h.listing(c, h.svc.Catalog.NewCollections)
}

func (h *Handler) relatedProducts(c *gin.Context) {
	h.listing(c, h.svc.Catalog.RelatedProducts)
}

func (h *Handler) popularInDC(c *gin.Context) {
	products, err := h.svc.Catalog.PopularInCategory(c.Request.Context(), popularCategory)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *Handler) listing(c *gin.Context, list func(ctx context.Context) ([]models.Product, error)) {
	products, err := list(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	if products == nil {
		products = []models.Product{}
	}
	c.JSON(http.StatusOK, products)
}

func (h *Handler) uploadImage(c *gin.Context) {
	file, err := c.FormFile("product")
	if err != nil {
		h.badRequest(c, err)
		return
	}

	src, err := file.Open()
	if err != nil {
		h.writeError(c, err)
		return
	}
	defer src.Close()

	url, err := h.images.StoreImage(c.Request.Context(), file.Filename, src)
	if err != nil {
		h.writeError(c, err)
		return
	}

	h.logger.Debug("Image uploaded", zap.String("url", url))
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"image_url": url,
	})
}
