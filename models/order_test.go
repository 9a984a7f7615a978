package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderTotal(t *testing.T) {
	items := []OrderItem{
		{Quantity: 2, Price: 5.00, TotalAmount: 10.00},
		{Quantity: 1, Price: 3.00, TotalAmount: 3.00},
	}

	assert.Equal(t, 15.00, OrderTotal(items, 2.00))
	assert.Equal(t, 13.00, OrderTotal(items, 0))
}

func TestOrderTotalEmptyItems(t *testing.T) {
	// An order with no remaining items still owes the delivery fee.
	assert.Equal(t, 2.50, OrderTotal(nil, 2.50))
	assert.Equal(t, 0.0, OrderTotal(nil, 0))
}

func TestOrderTotalAfterItemRemoval(t *testing.T) {
	items := []OrderItem{
		{Quantity: 2, Price: 5.00, TotalAmount: 10.00},
		{Quantity: 1, Price: 3.00, TotalAmount: 3.00},
	}
	before := OrderTotal(items, 2.00)
	assert.Equal(t, 15.00, before)

	after := OrderTotal(items[:1], 2.00)
	assert.Equal(t, 12.00, after)
}
