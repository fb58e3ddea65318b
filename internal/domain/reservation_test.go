package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestReservation_IsExpired(t *testing.T) {
	now := time.Now().UTC()

	res := Reservation{ExpiresAt: now.Add(time.Hour)}
	assert.False(t, res.IsExpired(now))

	res.ExpiresAt = now.Add(-time.Minute)
	assert.True(t, res.IsExpired(now))

	// Exactly at the boundary is not yet expired.
	res.ExpiresAt = now
	assert.False(t, res.IsExpired(now))
}

func TestReservation_IsTerminal(t *testing.T) {
	res := Reservation{Status: ReservationStatusPending}
	assert.False(t, res.IsTerminal())

	for _, status := range []string{
		ReservationStatusPickedUp,
		ReservationStatusCancelled,
		ReservationStatusExpired,
	} {
		res.Status = status
		assert.True(t, res.IsTerminal(), "status %s should be terminal", status)
	}
}

func TestReservation_LineTotalsMatchTotalAmount(t *testing.T) {
	res := Reservation{
		TotalAmount: 155.5,
		Lines: []ReservationLine{
			{MedicineName: "Dolo 650", Quantity: 2, UnitPrice: 32.0, LineTotal: 64.0},
			{MedicineName: "Omez 20", Quantity: 1, UnitPrice: 65.0, LineTotal: 65.0},
			{MedicineName: "Cetrizine", Quantity: 2, UnitPrice: 13.25, LineTotal: 26.5},
		},
	}

	sum := 0.0
	for _, line := range res.Lines {
		assert.InDelta(t, float64(line.Quantity)*line.UnitPrice, line.LineTotal, 0.005)
		sum += line.LineTotal
	}
	assert.InDelta(t, res.TotalAmount, sum, 0.005)
}

func TestInventoryItem_InStock(t *testing.T) {
	item := InventoryItem{StockCount: 3}
	assert.True(t, item.InStock())

	item.StockCount = 0
	assert.False(t, item.InStock())
}
