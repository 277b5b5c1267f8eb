package service

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"storefront-service/internal/models"
)

func TestGenerateOrderNumber(t *testing.T) {
	now := time.Date(2026, 9, 1, 15, 30, 0, 0, time.UTC)

	number := GenerateOrderNumber(now)

	assert.Regexp(t, regexp.MustCompile(`^ORD-260901-[0-9A-F]{6}$`), number)
}

func TestGenerateOrderNumberRandomSuffix(t *testing.T) {
	now := time.Now()

	a := GenerateOrderNumber(now)
	b := GenerateOrderNumber(now)

	assert.NotEqual(t, a, b)
}

func TestValidTransition(t *testing.T) {
	tests := []struct {
		from, to string
		valid    bool
	}{
		{models.OrderStatusPending, models.OrderStatusProcessing, true},
		{models.OrderStatusProcessing, models.OrderStatusShipped, true},
		{models.OrderStatusShipped, models.OrderStatusDelivered, true},

		{models.OrderStatusPending, models.OrderStatusShipped, false},
		{models.OrderStatusPending, models.OrderStatusDelivered, false},
		{models.OrderStatusShipped, models.OrderStatusProcessing, false},

		// Cancellation is allowed from any non-terminal state.
		{models.OrderStatusPending, models.OrderStatusCancelled, true},
		{models.OrderStatusProcessing, models.OrderStatusCancelled, true},
		{models.OrderStatusShipped, models.OrderStatusCancelled, true},

		// Terminal states accept nothing.
		{models.OrderStatusDelivered, models.OrderStatusCancelled, false},
		{models.OrderStatusCancelled, models.OrderStatusPending, false},
		{models.OrderStatusDelivered, models.OrderStatusPending, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.valid, validTransition(tt.from, tt.to),
			"%s -> %s", tt.from, tt.to)
	}
}
