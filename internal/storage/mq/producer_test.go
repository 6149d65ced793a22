package mq

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/digital-store/pkg/ptr"
)

func TestBuildProduceRecord(t *testing.T) {
	t.Run("Should key the record by partition key with sorted headers", func(t *testing.T) {
		r := buildProduceRecord(ProduceMsg{
			Topic:        "product.updated",
			Headers:      map[string]string{"traceparent": "00-abc", "correlation_id": "c-1"},
			Payload:      []byte(`{"product_id":7}`),
			PartitionKey: ptr.New("7"),
		})

		assert.Equal(t, "product.updated", r.Topic)
		assert.Equal(t, []byte("7"), r.Key)
		assert.JSONEq(t, `{"product_id":7}`, string(r.Value))
		require.Len(t, r.Headers, 2)
		assert.Equal(t, "correlation_id", r.Headers[0].Key)
		assert.Equal(t, "traceparent", r.Headers[1].Key)
		assert.Equal(t, []byte("00-abc"), r.Headers[1].Value)
	})

	t.Run("Should leave the key empty without partition key", func(t *testing.T) {
		r := buildProduceRecord(ProduceMsg{Topic: "product.deleted"})

		assert.Nil(t, r.Key)
		assert.Empty(t, r.Headers)
	})
}
