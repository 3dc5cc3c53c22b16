package service

import (
	"context"
	"crypto/rand"
	"errors"
	"log/slog"
	"math/big"

	"github.com/aaravmahajanofficial/storefront/internal/api/middleware"
	appErrors "github.com/aaravmahajanofficial/storefront/internal/errors"
	"github.com/aaravmahajanofficial/storefront/internal/metrics"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/aaravmahajanofficial/storefront/internal/pricing"
	repository "github.com/aaravmahajanofficial/storefront/internal/repositories"
	"github.com/aaravmahajanofficial/storefront/internal/utils"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	orderNumberLength   = 10
	orderNumberAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	orderNumberAttempts = 3
)

var tracer = otel.Tracer("github.com/aaravmahajanofficial/storefront/internal/services")

type OrderService interface {
	Checkout(ctx context.Context, userID uuid.UUID, req *models.CheckoutRequest) (*models.Order, error)
	GetOrder(ctx context.Context, userID uuid.UUID, id uuid.UUID) (*models.Order, error)
	GetOrderByNumber(ctx context.Context, userID uuid.UUID, orderNumber string) (*models.Order, error)
	ListOrders(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]*models.Order, int, error)
	UpdateOrderStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) (*models.Order, error)
}

type orderService struct {
	orders        repository.OrderRepository
	calculator    pricing.Calculator
	notifications NotificationService
	newNumber     func() (string, error)
}

func NewOrderService(orders repository.OrderRepository, calculator pricing.Calculator, notifications NotificationService) OrderService {
	return &orderService{
		orders:        orders,
		calculator:    calculator,
		notifications: notifications,
		newNumber:     NewOrderNumber,
	}
}

// NewOrderNumber returns 10 characters drawn uniformly from [A-Z0-9].
func NewOrderNumber() (string, error) {
	alphabetSize := big.NewInt(int64(len(orderNumberAlphabet)))
	buf := make([]byte, orderNumberLength)

	for i := range buf {
		n, err := rand.Int(rand.Reader, alphabetSize)
		if err != nil {
			return "", err
		}
		buf[i] = orderNumberAlphabet[n.Int64()]
	}

	return string(buf), nil
}

func sanitizeShipping(d models.ShippingDetails) models.ShippingDetails {
	return models.ShippingDetails{
		FullName:   utils.SanitizeText(d.FullName),
		Email:      utils.SanitizeText(d.Email),
		Phone:      utils.SanitizeText(d.Phone),
		Address:    utils.SanitizeText(d.Address),
		City:       utils.SanitizeText(d.City),
		PostalCode: utils.SanitizeText(d.PostalCode),
		Country:    utils.SanitizeText(d.Country),
	}
}

// builder turns the locked cart lines into the order to insert. It runs inside the checkout transaction.
func (s *orderService) builder(orderNumber string, shipping models.ShippingDetails, method models.PaymentMethod) repository.OrderBuilder {
	return func(lines []*models.CartItem) (*models.Order, error) {
		if len(lines) == 0 {
			return nil, appErrors.EmptyCartError()
		}

		items := make([]models.OrderItem, 0, len(lines))

		for _, line := range lines {
			if line.Quantity > line.Product.Stock {
				return nil, appErrors.StockConflictError(line.Product.Name, line.Product.Stock)
			}

			productID := line.ProductID
			items = append(items, models.OrderItem{
				ProductID:    &productID,
				ProductName:  line.Product.Name,
				ProductPrice: line.Product.Price,
				Quantity:     line.Quantity,
			})
		}

		return &models.Order{
			OrderNumber:     orderNumber,
			Status:          models.OrderStatusPending,
			ShippingDetails: shipping,
			PaymentMethod:   method,
			Totals:          s.calculator.ForCart(lines),
			Items:           items,
		}, nil
	}
}

func (s *orderService) Checkout(ctx context.Context, userID uuid.UUID, req *models.CheckoutRequest) (*models.Order, error) {
	ctx, span := tracer.Start(ctx, "OrderService.Checkout")
	defer span.End()

	span.SetAttributes(attribute.String("user.id", userID.String()))

	logger := middleware.LoggerFromContext(ctx).With(slog.String("userID", userID.String()))

	order, err := s.checkout(ctx, userID, req)
	if err != nil {
		reason := "error"
		if appErr, ok := appErrors.IsAppError(err); ok {
			reason = appErr.Code
		}

		metrics.RecordCheckoutFailure(reason)
		span.RecordError(err)
		span.SetStatus(codes.Error, reason)
		logger.Warn("Checkout failed", slog.String("reason", reason), slog.Any("error", err))

		return nil, err
	}

	metrics.RecordOrderPlaced()
	span.SetAttributes(attribute.String("order.number", order.OrderNumber), attribute.Int("order.items", len(order.Items)))
	logger.Info("Order placed", slog.String("orderId", order.ID.String()), slog.String("orderNumber", order.OrderNumber))

	// the order is committed, a failed email only gets logged
	if err := s.notifications.SendOrderConfirmation(ctx, order); err != nil {
		logger.Warn("Failed to send order confirmation", slog.String("orderId", order.ID.String()), slog.Any("error", err))
	}

	return order, nil
}

func (s *orderService) checkout(ctx context.Context, userID uuid.UUID, req *models.CheckoutRequest) (*models.Order, error) {
	shipping := sanitizeShipping(req.ShippingDetails)

	method := req.PaymentMethod
	if method == "" {
		method = models.PaymentMethodCreditCard
	}

	for attempt := 1; ; attempt++ {
		orderNumber, err := s.newNumber()
		if err != nil {
			return nil, appErrors.InternalError("Failed to generate order number").WithError(err)
		}

		order, err := s.orders.CreateFromCart(ctx, userID, s.builder(orderNumber, shipping, method))
		if err == nil {
			return order, nil
		}

		if errors.Is(err, repository.ErrDuplicateOrderNumber) && attempt < orderNumberAttempts {
			middleware.LoggerFromContext(ctx).Debug("Order number taken, retrying", slog.Int("attempt", attempt))
			continue
		}

		return nil, checkoutError(err)
	}
}

func checkoutError(err error) error {
	if _, ok := appErrors.IsAppError(err); ok {
		return err
	}

	var shortage *repository.StockShortage
	if errors.As(err, &shortage) {
		return appErrors.StockConflictError(shortage.ProductName, shortage.Available).WithError(err)
	}

	if errors.Is(err, repository.ErrStockConflict) {
		return appErrors.StockConflictError("an item", 0).WithError(err)
	}

	return appErrors.StorageFailureError("Failed to place order. Please try again.").WithError(err)
}

func (s *orderService) GetOrder(ctx context.Context, userID uuid.UUID, id uuid.UUID) (*models.Order, error) {
	order, err := s.orders.GetOrderByID(ctx, id)
	if err != nil {
		return nil, orderLookupError(err)
	}

	if order.UserID != userID {
		return nil, appErrors.ForbiddenError("You do not have access to this order")
	}

	return order, nil
}

func (s *orderService) GetOrderByNumber(ctx context.Context, userID uuid.UUID, orderNumber string) (*models.Order, error) {
	order, err := s.orders.GetOrderByNumber(ctx, orderNumber)
	if err != nil {
		return nil, orderLookupError(err)
	}

	// another user's order number reads as unknown
	if order.UserID != userID {
		return nil, appErrors.NotFoundError("Order not found")
	}

	return order, nil
}

func (s *orderService) ListOrders(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]*models.Order, int, error) {
	page, pageSize = NormalizePage(page, pageSize)

	orders, total, err := s.orders.ListOrdersByUser(ctx, userID, page, pageSize)
	if err != nil {
		return nil, 0, appErrors.DatabaseError("Failed to fetch orders").WithError(err)
	}

	return orders, total, nil
}

func (s *orderService) UpdateOrderStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) (*models.Order, error) {
	if !status.Valid() {
		return nil, appErrors.ValidationError("Invalid order status")
	}

	if err := s.orders.UpdateOrderStatus(ctx, id, status); err != nil {
		return nil, orderLookupError(err)
	}

	order, err := s.orders.GetOrderByID(ctx, id)
	if err != nil {
		return nil, orderLookupError(err)
	}

	return order, nil
}

func orderLookupError(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return appErrors.NotFoundError("Order not found").WithError(err)
	}

	return appErrors.DatabaseError("Failed to fetch order").WithError(err)
}
