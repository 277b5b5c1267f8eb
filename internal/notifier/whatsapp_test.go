package notifier

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-service/internal/models"
)

func TestBuildOrderMessage(t *testing.T) {
	order := &models.Order{
		OrderNumber:      "ORD-260901-ABC123",
		CustomerName:     "Jane Doe",
		CustomerPhone:    "555-0101",
		CustomerAddress:  "1 Main St",
		CustomerProvince: "Jakarta",
		PaymentMethod:    "cash",
		Subtotal:         25.50,
		ShippingCost:     4.00,
		Total:            29.50,
		Notes:            "Leave at the door",
	}
	items := []models.OrderItem{
		{Name: "Silk Robe", Quantity: 2, LineTotal: 20.00},
		{Name: "Candle", Quantity: 1, LineTotal: 5.50},
	}

	message := BuildOrderMessage(order, items, "")

	assert.True(t, strings.HasPrefix(message, "Hello, I would like to order the following products:"))
	assert.Contains(t, message, "• Silk Robe x2 - $20.00")
	assert.Contains(t, message, "• Candle x1 - $5.50")
	assert.Contains(t, message, "Subtotal: $25.50")
	assert.Contains(t, message, "Shipping: $4.00")
	assert.Contains(t, message, "Total: $29.50")
	assert.Contains(t, message, "Name: Jane Doe")
	assert.Contains(t, message, "Payment method: Cash")
	assert.Contains(t, message, "Notes: Leave at the door")
	assert.Contains(t, message, "Order number: ORD-260901-ABC123")
}

func TestBuildOrderMessageCustomTemplate(t *testing.T) {
	order := &models.Order{OrderNumber: "ORD-260901-ABC123"}

	message := BuildOrderMessage(order, nil, "New order incoming:")

	assert.True(t, strings.HasPrefix(message, "New order incoming:"))
}

func TestBuildOrderMessageOmitsEmptyNotes(t *testing.T) {
	order := &models.Order{OrderNumber: "ORD-260901-ABC123"}

	message := BuildOrderMessage(order, nil, "")

	assert.NotContains(t, message, "Notes:")
}

func TestDeepLink(t *testing.T) {
	link := DeepLink("+1 (234) 567-890", "Hello world & more")

	parsed, err := url.Parse(link)
	require.NoError(t, err)

	assert.Equal(t, "https", parsed.Scheme)
	assert.Equal(t, "wa.me", parsed.Host)
	assert.Equal(t, "/1234567890", parsed.Path)
	assert.Equal(t, "Hello world & more", parsed.Query().Get("text"))
}

func TestPhoneDigits(t *testing.T) {
	assert.Equal(t, "1234567890", PhoneDigits("+1 (234) 567-890"))
	assert.Equal(t, "628123456789", PhoneDigits("62 812-3456-789"))
	assert.Equal(t, "", PhoneDigits("no digits"))
}

func TestPaymentMethodLabel(t *testing.T) {
	assert.Equal(t, "Cash", paymentMethodLabel("cash"))
	assert.Equal(t, "Card", paymentMethodLabel("card"))
	assert.Equal(t, "transfer", paymentMethodLabel("transfer"))
}
