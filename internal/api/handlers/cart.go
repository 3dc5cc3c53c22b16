package handlers

import (
	"log/slog"
	"net/http"

	"github.com/aaravmahajanofficial/storefront/internal/api/middleware"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	service "github.com/aaravmahajanofficial/storefront/internal/services"
	"github.com/aaravmahajanofficial/storefront/internal/utils"
	"github.com/aaravmahajanofficial/storefront/internal/utils/response"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type CartHandler struct {
	cartService service.CartService
	validator   *validator.Validate
}

func NewCartHandler(cartService service.CartService) *CartHandler {
	return &CartHandler{cartService: cartService, validator: validator.New()}
}

type cartMutation func(r *http.Request, userID uuid.UUID, itemID int64) (*models.CartView, string, error)

// itemMutation wraps the handlers that act on one cart line addressed by {id}.
func (h *CartHandler) itemMutation(action string, apply cartMutation) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		claims, ok := claimsOrUnauthorized(w, r)
		if !ok {
			return
		}

		logger = logger.With(slog.String("userID", claims.UserID.String()))

		itemID, err := utils.ParseInt64Param(r, "id")
		if err != nil {
			logger.Warn("Invalid cart item id", slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		cart, message, err := apply(r, claims.UserID, itemID)
		if err != nil {
			logger.Warn("Cart "+action+" rejected", slog.Int64("itemId", itemID), slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.SuccessWithMessage(w, http.StatusOK, message, cart)
	}
}

// GetCart godoc
//
//	@Summary		Get the current cart
//	@Description	Lines with current product prices and stock, plus derived totals.
//	@Tags			Cart
//	@Produce		json
//	@Success		200	{object}	models.CartView
//	@Failure		401	{object}	response.ErrorResponse	"Authentication required"
//	@Security		BearerAuth
//	@Router			/cart [get]
func (h *CartHandler) GetCart() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		claims, ok := claimsOrUnauthorized(w, r)
		if !ok {
			return
		}

		cart, err := h.cartService.GetCart(r.Context(), claims.UserID)
		if err != nil {
			middleware.LoggerFromContext(r.Context()).Error("Failed to load cart", slog.String("userID", claims.UserID.String()), slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, cart)
	}
}

// Count godoc
//
//	@Summary		Cart badge count
//	@Description	Number of lines in the cart.
//	@Tags			Cart
//	@Produce		json
//	@Success		200	{object}	models.CartCountResponse
//	@Security		BearerAuth
//	@Router			/cart/count [get]
func (h *CartHandler) Count() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		claims, ok := claimsOrUnauthorized(w, r)
		if !ok {
			return
		}

		count, err := h.cartService.Count(r.Context(), claims.UserID)
		if err != nil {
			middleware.LoggerFromContext(r.Context()).Error("Failed to count cart", slog.String("userID", claims.UserID.String()), slog.Any("error", err))
			response.Error(w, err)
			return
		}

		if err := response.WriteJson(w, http.StatusOK, models.CartCountResponse{Count: count}); err != nil {
			slog.Error("Failed to write response", slog.Any("error", err))
		}
	}
}

// AddItem godoc
//
//	@Summary		Add a product to the cart
//	@Description	Quantity defaults to 1. Adding an existing product increases its line.
//	@Tags			Cart
//	@Accept			json
//	@Produce		json
//	@Param			item	body		models.AddItemRequest	true	"Product and quantity"
//	@Success		200		{object}	models.CartView
//	@Failure		400		{object}	response.ErrorResponse	"Validation error"
//	@Failure		404		{object}	response.ErrorResponse	"Product not found"
//	@Failure		409		{object}	response.ErrorResponse	"Out of stock or insufficient stock"
//	@Security		BearerAuth
//	@Router			/cart/items [post]
func (h *CartHandler) AddItem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		claims, ok := claimsOrUnauthorized(w, r)
		if !ok {
			return
		}

		logger = logger.With(slog.String("userID", claims.UserID.String()))

		var req models.AddItemRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid add to cart input")
			return
		}

		cart, message, err := h.cartService.AddItem(r.Context(), claims.UserID, req.ProductID, req.Quantity)
		if err != nil {
			logger.Warn("Add to cart rejected", slog.Int64("productId", req.ProductID), slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.SuccessWithMessage(w, http.StatusOK, message, cart)
	}
}

// UpdateQuantity godoc
//
//	@Summary		Set a line's quantity
//	@Description	Zero or less removes the line.
//	@Tags			Cart
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int								true	"Cart item ID"
//	@Param			body	body		models.UpdateQuantityRequest	true	"New quantity"
//	@Success		200		{object}	models.CartView
//	@Failure		404		{object}	response.ErrorResponse	"Item not found in your cart"
//	@Failure		409		{object}	response.ErrorResponse	"Insufficient stock"
//	@Security		BearerAuth
//	@Router			/cart/items/{id} [put]
func (h *CartHandler) UpdateQuantity() http.HandlerFunc {
	return h.itemMutation("update", func(r *http.Request, userID uuid.UUID, itemID int64) (*models.CartView, string, error) {
		var req models.UpdateQuantityRequest
		if err := utils.DecodeJSONBody(r, &req); err != nil {
			return nil, "", invalidBody(err)
		}

		return h.cartService.SetQuantity(r.Context(), userID, itemID, req.Quantity)
	})
}

// Increment godoc
//
//	@Summary	Increase a line by one
//	@Tags		Cart
//	@Produce	json
//	@Param		id	path		int	true	"Cart item ID"
//	@Success	200	{object}	models.CartView
//	@Failure	409	{object}	response.ErrorResponse	"Stock limit reached"
//	@Security	BearerAuth
//	@Router		/cart/items/{id}/increment [post]
func (h *CartHandler) Increment() http.HandlerFunc {
	return h.itemMutation("increment", func(r *http.Request, userID uuid.UUID, itemID int64) (*models.CartView, string, error) {
		return h.cartService.Increment(r.Context(), userID, itemID)
	})
}

// Decrement godoc
//
//	@Summary	Decrease a line by one
//	@Tags		Cart
//	@Produce	json
//	@Param		id	path		int	true	"Cart item ID"
//	@Success	200	{object}	models.CartView
//	@Failure	400	{object}	response.ErrorResponse	"Minimum quantity is 1"
//	@Security	BearerAuth
//	@Router		/cart/items/{id}/decrement [post]
func (h *CartHandler) Decrement() http.HandlerFunc {
	return h.itemMutation("decrement", func(r *http.Request, userID uuid.UUID, itemID int64) (*models.CartView, string, error) {
		return h.cartService.Decrement(r.Context(), userID, itemID)
	})
}

// RemoveItem godoc
//
//	@Summary	Remove a line
//	@Tags		Cart
//	@Produce	json
//	@Param		id	path		int	true	"Cart item ID"
//	@Success	200	{object}	models.CartView
//	@Failure	404	{object}	response.ErrorResponse	"Item not found in your cart"
//	@Security	BearerAuth
//	@Router		/cart/items/{id} [delete]
func (h *CartHandler) RemoveItem() http.HandlerFunc {
	return h.itemMutation("remove", func(r *http.Request, userID uuid.UUID, itemID int64) (*models.CartView, string, error) {
		return h.cartService.RemoveItem(r.Context(), userID, itemID)
	})
}

// Clear godoc
//
//	@Summary	Empty the cart
//	@Tags		Cart
//	@Produce	json
//	@Success	200	{object}	models.CartView
//	@Security	BearerAuth
//	@Router		/cart [delete]
func (h *CartHandler) Clear() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		claims, ok := claimsOrUnauthorized(w, r)
		if !ok {
			return
		}

		cart, message, err := h.cartService.Clear(r.Context(), claims.UserID)
		if err != nil {
			middleware.LoggerFromContext(r.Context()).Error("Failed to clear cart", slog.String("userID", claims.UserID.String()), slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.SuccessWithMessage(w, http.StatusOK, message, cart)
	}
}
