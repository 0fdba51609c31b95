package requestctx

import "context"

type ctxKey struct{}

// Meta is the per-request data handlers and the audit trail need without access to the
// *http.Request.
type Meta struct {
	RequestID string
	ClientIP  string
}

func With(ctx context.Context, meta Meta) context.Context {
	return context.WithValue(ctx, ctxKey{}, meta)
}

func From(ctx context.Context) Meta {
	meta, _ := ctx.Value(ctxKey{}).(Meta)
	return meta
}

func GetRequestID(ctx context.Context) string {
	return From(ctx).RequestID
}
