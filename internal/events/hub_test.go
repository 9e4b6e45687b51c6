package events

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubFanOut(t *testing.T) {
	h := NewHub()
	a := h.Subscribe()
	b := h.Subscribe()
	assert.Equal(t, 2, h.Subscribers())

	h.Publish("x")
	assert.Equal(t, "x", <-a)
	assert.Equal(t, "x", <-b)

	h.Unsubscribe(a)
	h.Unsubscribe(a)
	assert.Equal(t, 1, h.Subscribers())
	_, open := <-a
	assert.False(t, open)
}

func TestHubDropsWhenFull(t *testing.T) {
	h := NewHub()
	ch := h.Subscribe()
	for i := 0; i < 100; i++ {
		h.Publish("e")
	}
	assert.Len(t, ch, cap(ch))
}

func TestMakeEvent(t *testing.T) {
	raw := MakeEvent("req-1", SearchFinished, map[string]int{"saved": 3})

	var e Event
	require.NoError(t, json.Unmarshal([]byte(raw), &e))
	assert.Equal(t, SearchFinished, e.Type)
	assert.Equal(t, 1, e.Version)
	assert.Equal(t, "req-1", e.RequestID)
	assert.JSONEq(t, `{"saved":3}`, string(e.Data))
	assert.False(t, e.At.IsZero())
}
