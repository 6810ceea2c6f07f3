package orders

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyLineUpdates(t *testing.T) {
	lines := []Line{
		{ItemCode: "A1", ItemName: "Basundi", Quantity: 5, Price: 40, AcceptedQuantity: 5, Status: LineStatusAccepted, TotalPrice: 200},
		{ItemCode: "B2", ItemName: "Lassi", Quantity: 2, Price: 15, AcceptedQuantity: 2, Status: LineStatusAccepted, TotalPrice: 30},
	}

	updated, total := ApplyLineUpdates(lines, []LineUpdate{
		{ItemCode: "A1", AcceptedQuantity: 3, Price: 40, Status: LineStatusModified},
	})

	assert.Equal(t, 3, updated[0].AcceptedQuantity)
	assert.Equal(t, LineStatusModified, updated[0].Status)
	assert.Equal(t, 120.0, updated[0].TotalPrice)
	// untouched line keeps its values but still counts toward the total
	assert.Equal(t, lines[1], updated[1])
	assert.Equal(t, 150.0, total)
}

func TestApplyLineUpdatesUnknownCodeIgnored(t *testing.T) {
	lines := []Line{{ItemCode: "A1", Quantity: 1, Price: 10, AcceptedQuantity: 1, TotalPrice: 10}}
	updated, total := ApplyLineUpdates(lines, []LineUpdate{{ItemCode: "ZZ", AcceptedQuantity: 9, Price: 9}})
	assert.Equal(t, lines, updated)
	assert.Equal(t, 10.0, total)
}

func TestApplyLineUpdatesEmpty(t *testing.T) {
	updated, total := ApplyLineUpdates(nil, nil)
	assert.Empty(t, updated)
	assert.Equal(t, 0.0, total)
}

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(StatusPending, StatusAccepted))
	assert.True(t, CanTransition(StatusPending, StatusRejected))
	assert.True(t, CanTransition(StatusModified, StatusAccepted))
	assert.True(t, CanTransition(StatusAccepted, StatusApproved))

	assert.False(t, CanTransition(StatusRejected, StatusAccepted))
	assert.False(t, CanTransition(StatusApproved, StatusPending))
	assert.False(t, CanTransition(StatusAccepted, StatusPending))
}
