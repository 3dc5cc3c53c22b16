package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"

	"github.com/aaravmahajanofficial/storefront/internal/api/middleware"
	"github.com/aaravmahajanofficial/storefront/internal/config"
	appErrors "github.com/aaravmahajanofficial/storefront/internal/errors"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	repository "github.com/aaravmahajanofficial/storefront/internal/repositories"
	"github.com/aaravmahajanofficial/storefront/pkg/stripe"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const eventPaymentIntentSucceeded = "payment_intent.succeeded"

type PaymentService interface {
	CreatePaymentIntent(ctx context.Context, userID uuid.UUID, orderID uuid.UUID) (*models.PaymentIntentResponse, error)
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
}

type paymentService struct {
	orders   repository.OrderRepository
	stripe   stripe.Client
	currency string
}

func NewPaymentService(orders repository.OrderRepository, client stripe.Client, cfg config.Stripe) PaymentService {
	currency := strings.ToLower(cfg.Currency)
	if currency == "" {
		currency = "usd"
	}

	return &paymentService{orders: orders, stripe: client, currency: currency}
}

// MinorUnits converts a two-decimal amount to cents.
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}

func (s *paymentService) CreatePaymentIntent(ctx context.Context, userID uuid.UUID, orderID uuid.UUID) (*models.PaymentIntentResponse, error) {
	order, err := s.orders.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, orderLookupError(err)
	}

	if order.UserID != userID {
		return nil, appErrors.ForbiddenError("You do not have access to this order")
	}

	if order.Status != models.OrderStatusPending {
		return nil, appErrors.BadRequestError("Only pending orders can be paid")
	}

	if order.PaymentMethod == models.PaymentMethodCash {
		return nil, appErrors.BadRequestError("Cash orders are paid on delivery")
	}

	intent, err := s.stripe.CreatePaymentIntent(ctx, stripe.PaymentIntentRequest{
		Amount:       MinorUnits(order.Total),
		Currency:     s.currency,
		Description:  "Order " + order.OrderNumber,
		ReceiptEmail: order.Email,
		Metadata: map[string]string{
			"order_id":     order.ID.String(),
			"order_number": order.OrderNumber,
		},
		IdempotencyKey: "order-" + order.ID.String(),
	})
	if err != nil {
		return nil, appErrors.ThirdPartyError("Failed to create payment").WithError(err)
	}

	if err := s.orders.SetPaymentIntent(ctx, order.ID, intent.ID); err != nil {
		return nil, appErrors.DatabaseError("Failed to record payment").WithError(err)
	}

	return &models.PaymentIntentResponse{
		OrderID:         order.ID,
		PaymentIntentID: intent.ID,
		ClientSecret:    intent.ClientSecret,
		Amount:          order.Total,
		Currency:        s.currency,
	}, nil
}

func (s *paymentService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	logger := middleware.LoggerFromContext(ctx)

	event, err := s.stripe.VerifyWebhookSignature(payload, signature)
	if err != nil {
		return appErrors.BadRequestError("Invalid webhook signature").WithError(err)
	}

	if string(event.Type) != eventPaymentIntentSucceeded {
		logger.Debug("Ignoring webhook event", slog.String("type", string(event.Type)))
		return nil
	}

	if event.Data == nil {
		return appErrors.BadRequestError("Malformed webhook payload")
	}

	var intent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		return appErrors.BadRequestError("Malformed webhook payload").WithError(err)
	}

	order, err := s.orders.TransitionByPaymentIntent(ctx, intent.ID, models.OrderStatusPending, models.OrderStatusProcessing)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// already moved on, or not ours
			logger.Info("No pending order for payment intent", slog.String("paymentIntentId", intent.ID))
			return nil
		}
		return appErrors.DatabaseError("Failed to update order").WithError(err)
	}

	logger.Info("Order paid", slog.String("orderId", order.ID.String()), slog.String("paymentIntentId", intent.ID))

	return nil
}
