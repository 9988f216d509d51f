package handlers

import "context"

// RequestMeta describes who issued a request. It is stamped onto change events.
type RequestMeta struct {
	RequestID string
	ClientIP  string
	UserAgent string
}

type requestMetaKey struct{}

// ContextWithRequestMeta returns a copy of ctx carrying meta.
func ContextWithRequestMeta(ctx context.Context, meta RequestMeta) context.Context {
	return context.WithValue(ctx, requestMetaKey{}, meta)
}

// RequestMetaFromContext returns the metadata stored in ctx, or the zero value.
func RequestMetaFromContext(ctx context.Context) RequestMeta {
	meta, _ := ctx.Value(requestMetaKey{}).(RequestMeta)

	return meta
}
