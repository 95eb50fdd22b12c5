package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTotalOf(t *testing.T) {
	lines := []CartLine{
		{ProductID: "p1", Quantity: 3, UnitPrice: 100_000},
		{ProductID: "p2", Quantity: 1, UnitPrice: 45_000},
	}

	assert.Equal(t, int64(345_000), TotalOf(lines))
	assert.Equal(t, int64(0), TotalOf(nil))
}

func TestCart_ItemCount(t *testing.T) {
	c := Cart{Lines: []CartLine{
		{ProductID: "p1", Quantity: 2},
		{ProductID: "p2", Quantity: 5},
	}}

	assert.Equal(t, 7, c.ItemCount())
	assert.Equal(t, 0, Cart{}.ItemCount())
}

func TestCart_FindLine(t *testing.T) {
	c := Cart{Lines: []CartLine{
		{ProductID: "p1"},
		{ProductID: "p2"},
	}}

	assert.Equal(t, 0, c.FindLine("p1"))
	assert.Equal(t, 1, c.FindLine("p2"))
	assert.Equal(t, -1, c.FindLine("p3"))
}

func TestCartLine_Subtotal(t *testing.T) {
	l := CartLine{Quantity: 4, UnitPrice: 25_000}
	assert.Equal(t, int64(100_000), l.Subtotal())
}
