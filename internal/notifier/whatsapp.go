package notifier

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"storefront-service/internal/models"
	"storefront-service/internal/util"
)

// Result is the outcome of handing an order summary to the external channel.
// Delivery is fire-and-forget; callers may log the result but must not roll
// an order back on failure.
type Result string

const (
	ResultSent   Result = "sent"
	ResultFailed Result = "failed"
)

// OrderNotifier hands a committed order's summary to an outbound channel.
type OrderNotifier interface {
	NotifyOrder(ctx context.Context, order *models.Order, items []models.OrderItem, settings map[string]string) Result
}

// WhatsAppNotifier formats a plain-text order summary and opens the
// messaging deep link keyed by the shop's configured contact number.
type WhatsAppNotifier struct {
	client *http.Client
	logger *zap.Logger
}

// NewWhatsAppNotifier creates a notifier with a short request timeout.
func NewWhatsAppNotifier() *WhatsAppNotifier {
	return &WhatsAppNotifier{
		client: &http.Client{Timeout: 10 * time.Second},
		logger: util.GetLogger(),
	}
}

// NotifyOrder builds the summary and opens the deep link. A missing store
// phone or a failed request yields ResultFailed; nothing is retried.
func (n *WhatsAppNotifier) NotifyOrder(ctx context.Context, order *models.Order, items []models.OrderItem, settings map[string]string) Result {
	phone := settings[models.SettingStorePhone]
	if PhoneDigits(phone) == "" {
		n.logger.Error("No store phone configured for order notifications")
		return ResultFailed
	}

	message := BuildOrderMessage(order, items, settings[models.SettingOrderMessage])
	link := DeepLink(phone, message)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		n.logger.Error("Failed to build notification request", zap.Error(err))
		return ResultFailed
	}

	resp, err := n.client.Do(req)
	if err != nil {
		n.logger.Error("Failed to open order deep link",
			zap.String("order_number", order.OrderNumber),
			zap.Error(err))
		return ResultFailed
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		n.logger.Error("Order deep link rejected",
			zap.String("order_number", order.OrderNumber),
			zap.Int("status", resp.StatusCode))
		return ResultFailed
	}

	n.logger.Info("Order summary sent",
		zap.String("order_number", order.OrderNumber))
	return ResultSent
}

// BuildOrderMessage renders the human-readable order summary: itemized
// lines, totals, customer contact fields and payment method.
func BuildOrderMessage(order *models.Order, items []models.OrderItem, template string) string {
	var b strings.Builder

	if template == "" {
		template = "Hello, I would like to order the following products:"
	}
	b.WriteString(template)
	b.WriteString("\n\n")

	for _, item := range items {
		fmt.Fprintf(&b, "• %s x%d - $%.2f\n", item.Name, item.Quantity, item.LineTotal)
	}

	fmt.Fprintf(&b, "\nSubtotal: $%.2f", order.Subtotal)
	fmt.Fprintf(&b, "\nShipping: $%.2f", order.ShippingCost)
	fmt.Fprintf(&b, "\nTotal: $%.2f", order.Total)

	b.WriteString("\n\nCustomer information:")
	fmt.Fprintf(&b, "\nName: %s", order.CustomerName)
	fmt.Fprintf(&b, "\nPhone: %s", order.CustomerPhone)
	fmt.Fprintf(&b, "\nAddress: %s", order.CustomerAddress)
	fmt.Fprintf(&b, "\nProvince: %s", order.CustomerProvince)
	fmt.Fprintf(&b, "\nPayment method: %s", paymentMethodLabel(order.PaymentMethod))

	if order.Notes != "" {
		fmt.Fprintf(&b, "\nNotes: %s", order.Notes)
	}

	fmt.Fprintf(&b, "\nOrder number: %s", order.OrderNumber)

	return b.String()
}

// DeepLink builds the wa.me URL for a phone number and message text.
func DeepLink(phone, message string) string {
	return fmt.Sprintf("https://wa.me/%s?text=%s",
		PhoneDigits(phone), url.QueryEscape(message))
}

// PhoneDigits strips every non-digit character from a phone number.
func PhoneDigits(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func paymentMethodLabel(method string) string {
	switch method {
	case "cash":
		return "Cash"
	case "card":
		return "Card"
	default:
		return method
	}
}
