package api

import (
	"net/http"

	"storefront-service/internal/models"

	"github.com/gin-gonic/gin"
)

type cartItemRequest struct {
	ItemID *int `json:"itemId" binding:"required"`
}

type updateCartRequest struct {
	Cart models.Cart `json:"cart" binding:"required"`
}

func (h *Handler) addToCart(c *gin.Context) {
	var req cartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	if err := h.svc.Carts.Increment(c.Request.Context(), currentUser(c), *req.ItemID); err != nil {
		h.writeError(c, err)
		return
	}

	c.String(http.StatusOK, "Added")
}

func (h *Handler) removeFromCart(c *gin.Context) {
	var req cartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	if err := h.svc.Carts.Decrement(c.Request.Context(), currentUser(c), *req.ItemID); err != nil {
		h.writeError(c, err)
		return
	}

	c.String(http.StatusOK, "Removed")
}

func (h *Handler) getCart(c *gin.Context) {
	cart, err := h.svc.Carts.GetCart(c.Request.Context(), currentUser(c))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, cart)
}

func (h *Handler) updateCart(c *gin.Context) {
	var req updateCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	if err := h.svc.Carts.ReplaceCart(c.Request.Context(), currentUser(c), req.Cart); err != nil {
		h.writeError(c, err)
		return
	}

	c.String(http.StatusOK, "Cart Updated Successfully")
}
