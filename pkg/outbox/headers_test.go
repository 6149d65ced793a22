package outbox_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/tuanvumaihuynh/digital-store/pkg/correlationid"
	"github.com/tuanvumaihuynh/digital-store/pkg/outbox"
)

func TestHeaders(t *testing.T) {
	t.Run("Should carry correlation id through record headers", func(t *testing.T) {
		ctx := correlationid.NewContext(context.Background(), "abc-123")
		headers := outbox.BuildHeaders(ctx)
		assert.Equal(t, "abc-123", headers[correlationid.Header])

		rec := &kgo.Record{}
		for k, v := range headers {
			rec.Headers = append(rec.Headers, kgo.RecordHeader{Key: k, Value: []byte(v)})
		}

		got, ok := correlationid.FromContext(outbox.ContextFromRecord(context.Background(), rec))
		assert.True(t, ok)
		assert.Equal(t, "abc-123", got)
	})

	t.Run("Should leave context untouched without headers", func(t *testing.T) {
		_, ok := correlationid.FromContext(outbox.ContextFromRecord(context.Background(), &kgo.Record{}))
		assert.False(t, ok)
	})
}
