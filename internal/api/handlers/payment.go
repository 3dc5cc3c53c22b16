package handlers

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/aaravmahajanofficial/storefront/internal/api/middleware"
	"github.com/aaravmahajanofficial/storefront/internal/errors"
	service "github.com/aaravmahajanofficial/storefront/internal/services"
	"github.com/aaravmahajanofficial/storefront/internal/utils"
	"github.com/aaravmahajanofficial/storefront/internal/utils/response"
)

// Stripe rejects webhook payloads above this size.
const maxWebhookBytes = 65536

type PaymentHandler struct {
	paymentService service.PaymentService
}

func NewPaymentHandler(paymentService service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// CreatePaymentIntent godoc
//
//	@Summary		Start card payment for an order
//	@Description	Creates a Stripe PaymentIntent for the order's frozen total and returns its client secret.
//	@Tags			Payments
//	@Produce		json
//	@Param			id	path		string	true	"Order ID (UUID)"	Format(uuid)
//	@Success		200	{object}	models.PaymentIntentResponse
//	@Failure		400	{object}	response.ErrorResponse	"Order is not payable"
//	@Failure		403	{object}	response.ErrorResponse	"Forbidden - User does not own this order"
//	@Failure		404	{object}	response.ErrorResponse	"Order not found"
//	@Security		BearerAuth
//	@Router			/orders/{id}/payment-intent [post]
func (h *PaymentHandler) CreatePaymentIntent() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		claims, ok := claimsOrUnauthorized(w, r)
		if !ok {
			return
		}

		logger = logger.With(slog.String("userID", claims.UserID.String()))

		orderID, err := utils.ParseUUIDParam(r, "id")
		if err != nil {
			response.Error(w, err)
			return
		}

		intent, err := h.paymentService.CreatePaymentIntent(r.Context(), claims.UserID, orderID)
		if err != nil {
			logger.Error("Failed to initiate payment", slog.String("orderId", orderID.String()), slog.Any("error", err))
			response.Error(w, err)
			return
		}

		logger.Info("Payment initiated", slog.String("orderId", orderID.String()), slog.String("paymentIntentId", intent.PaymentIntentID))
		response.Success(w, http.StatusOK, intent)
	}
}

// HandleStripeWebhook godoc
//
//	@Summary	Stripe webhook
//	@Tags		Payments
//	@Accept		json
//	@Produce	json
//	@Param		Stripe-Signature	header	string	true	"Stripe signature"
//	@Success	200
//	@Failure	400	{object}	response.ErrorResponse	"Invalid payload or signature"
//	@Router		/payments/webhook [post]
func (h *PaymentHandler) HandleStripeWebhook() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBytes))
		if err != nil {
			logger.Error("Error reading webhook body", slog.String("error", err.Error()))
			response.Error(w, errors.BadRequestError("Failed to read request body").WithError(err))
			return
		}

		signature := r.Header.Get("Stripe-Signature")
		if signature == "" {
			logger.Warn("Missing Stripe signature")
			response.Error(w, errors.BadRequestError("Stripe Signature is required"))
			return
		}

		if err := h.paymentService.HandleWebhook(r.Context(), payload, signature); err != nil {
			logger.Error("Failed to process payment webhook", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, map[string]bool{"received": true})
	}
}
