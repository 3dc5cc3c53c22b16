package service

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/aaravmahajanofficial/storefront/internal/config"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/aaravmahajanofficial/storefront/pkg/sendgrid"
)

type NotificationService interface {
	SendOrderConfirmation(ctx context.Context, order *models.Order) error
}

type notificationService struct {
	emailService sendgrid.EmailService
	enabled      bool
}

func NewNotificationService(emailService sendgrid.EmailService, cfg config.SendGrid) NotificationService {
	return &notificationService{emailService: emailService, enabled: cfg.Enabled && emailService != nil}
}

func (n *notificationService) SendOrderConfirmation(ctx context.Context, order *models.Order) error {
	if !n.enabled {
		return nil
	}

	msg := &models.EmailMessage{
		ToEmail:   order.Email,
		ToName:    order.FullName,
		Subject:   fmt.Sprintf("Order %s confirmed", order.OrderNumber),
		PlainText: orderConfirmationText(order),
		HTML:      orderConfirmationHTML(order),
	}

	if err := n.emailService.Send(ctx, msg); err != nil {
		return fmt.Errorf("failed to send order confirmation: %w", err)
	}

	return nil
}

func orderConfirmationText(order *models.Order) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Hi %s,\n\nThank you for your order %s.\n\n", order.FullName, order.OrderNumber)

	for _, item := range order.Items {
		fmt.Fprintf(&b, "%d x %s @ %s = %s\n", item.Quantity, item.ProductName, item.ProductPrice.StringFixed(2), item.LineTotal().StringFixed(2))
	}

	fmt.Fprintf(&b, "\nSubtotal: %s\nTax: %s\nShipping: %s\nTotal: %s\n",
		order.Subtotal.StringFixed(2), order.Tax.StringFixed(2), order.Shipping.StringFixed(2), order.Total.StringFixed(2))

	fmt.Fprintf(&b, "\nShipping to:\n%s\n%s\n%s %s\n%s\n", order.FullName, order.Address, order.PostalCode, order.City, order.Country)

	return b.String()
}

func orderConfirmationHTML(order *models.Order) string {
	var b strings.Builder

	fmt.Fprintf(&b, "<h2>Thank you for your order %s</h2><table>", html.EscapeString(order.OrderNumber))

	for _, item := range order.Items {
		fmt.Fprintf(&b, "<tr><td>%d &times; %s</td><td>%s</td></tr>", item.Quantity, html.EscapeString(item.ProductName), item.LineTotal().StringFixed(2))
	}

	fmt.Fprintf(&b, "</table><p>Subtotal: %s<br>Tax: %s<br>Shipping: %s<br><strong>Total: %s</strong></p>",
		order.Subtotal.StringFixed(2), order.Tax.StringFixed(2), order.Shipping.StringFixed(2), order.Total.StringFixed(2))

	return b.String()
}
