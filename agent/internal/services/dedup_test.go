package services

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeliveryHistory_SeenAfterRecord(t *testing.T) {
	h := NewDeliveryHistory()

	assert.False(t, h.Seen(1, "sig1"))
	h.Record(1, "sig1")
	assert.True(t, h.Seen(1, "sig1"))
}

func TestDeliveryHistory_UsersAreIndependent(t *testing.T) {
	h := NewDeliveryHistory()
	h.Record(1, "sig1")

	assert.True(t, h.Seen(1, "sig1"))
	assert.False(t, h.Seen(2, "sig1"))
}

func TestDeliveryHistory_RecordIsIdempotent(t *testing.T) {
	h := NewDeliveryHistory()
	h.Record(1, "sig1")
	h.Record(1, "sig1")
	assert.Equal(t, 1, h.Size(1))
}

func TestDeliveryHistory_EvictsOldestHalf(t *testing.T) {
	h := NewDeliveryHistory()
	for i := 0; i < historyCapacity+1; i++ {
		h.Record(1, fmt.Sprintf("sig%d", i))
	}

	assert.Equal(t, historyCapacity+1-historyEvict, h.Size(1))
	assert.False(t, h.Seen(1, "sig0"), "oldest entries must be evicted")
	assert.True(t, h.Seen(1, fmt.Sprintf("sig%d", historyCapacity)), "newest entry must survive")
}
