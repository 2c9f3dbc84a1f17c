// Package reqctx provides centralized request context management.
//
// Request metadata, the authenticated caller and trace ids live here behind
// private context keys. Middleware sets them; handlers and services read them.
//
//	ctx = reqctx.WithRequestMeta(ctx, &reqctx.RequestMeta{RequestID: "abc-123"})
//	ctx = reqctx.WithCaller(ctx, &reqctx.Caller{UserID: id, Role: "patient"})
//
//	if userID, ok := reqctx.UserIDFromContext(ctx); ok { ... }
//
// RequestMeta is set for every HTTP request. Caller is set only after the
// bearer token has been verified.
package reqctx
