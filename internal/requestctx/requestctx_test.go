package requestctx

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMetaRoundTrip(t *testing.T) {
	ctx := With(context.Background(), Meta{RequestID: "req-7", ClientIP: "10.0.0.1"})
	assert.Equal(t, "req-7", GetRequestID(ctx))
	assert.Equal(t, "10.0.0.1", From(ctx).ClientIP)
	assert.Equal(t, Meta{}, From(context.Background()))
}
