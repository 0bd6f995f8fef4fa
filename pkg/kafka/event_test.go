package kafka

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type productPayload struct {
	ID   string `json:"id"`
	Shop string `json:"shop"`
}

func TestNewEvent(t *testing.T) {
	before := time.Now().UTC()
	event, err := NewEvent("storefront.product.created", "prod-1", "product", "product-service", productPayload{
		ID:   "prod-1",
		Shop: "demo.myshopify.com",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, event.EventID)
	assert.Equal(t, "storefront.product.created", event.EventType)
	assert.Equal(t, "prod-1", event.AggregateID)
	assert.Equal(t, "product", event.AggregateType)
	assert.Equal(t, "product-service", event.Source)
	assert.Equal(t, 1, event.Version)
	assert.False(t, event.Timestamp.Before(before.Add(-time.Second)))
}

func TestNewEvent_UnmarshalableData(t *testing.T) {
	_, err := NewEvent("x", "1", "y", "z", make(chan int))
	assert.Error(t, err)
}

func TestEvent_RoundTrip(t *testing.T) {
	event, err := NewEvent("storefront.filterconfig.updated", "cfg-1", "filter_config", "filter-service", productPayload{ID: "cfg-1"})
	require.NoError(t, err)
	event.WithCorrelationID("corr-9")

	data, err := event.Marshal()
	require.NoError(t, err)

	decoded, err := UnmarshalEvent(data)
	require.NoError(t, err)
	assert.Equal(t, event.EventID, decoded.EventID)
	assert.Equal(t, "corr-9", decoded.CorrelationID)

	var payload productPayload
	require.NoError(t, decoded.UnmarshalData(&payload))
	assert.Equal(t, "cfg-1", payload.ID)
}

func TestUnmarshalEvent_Invalid(t *testing.T) {
	_, err := UnmarshalEvent([]byte("{not json"))
	assert.Error(t, err)
}

func TestTopic(t *testing.T) {
	assert.Equal(t, "storefront.product.created", Topic("product", "created"))
	assert.Equal(t, "storefront.filterconfig.activated", Topic("filterconfig", "activated"))
}
