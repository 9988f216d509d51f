package middleware

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/shortlink/internal/ratelimit"
	"go.uber.org/zap"
)

// RateLimit rejects requests over the limits configured for their operation.
//
// Limits come from the operation's ratelimit metadata, falling back to the
// limiter policy for the request's class.
func RateLimit(api huma.API, limiter *ratelimit.Limiter, logger *zap.Logger) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		ep := ratelimit.ResolveEndpoint(ctx.Operation(), ctx.Method())

		exceeded, err := limiter.Check(ctx.Context(), clientKey(ctx), ep)
		if err != nil {
			logger.Error("rate limit check failed", zap.String("path", ep.Path), zap.Error(err))
			_ = huma.WriteErr(api, ctx, http.StatusInternalServerError, "internal server error", err)

			return
		}

		if exceeded != nil {
			logger.Warn("rate limit exceeded",
				zap.String("path", ep.Path),
				zap.String("method", ctx.Method()),
				zap.String("bucket", exceeded.Bucket),
				zap.Int64("count", exceeded.Count),
				zap.Int64("max", exceeded.Rule.Max),
				zap.Duration("window", exceeded.Rule.Window),
				zap.String("client_ip", clientIP(ctx)),
			)

			ctx.SetHeader("Retry-After", strconv.Itoa(int(exceeded.Rule.Window.Seconds())))
			_ = huma.WriteErr(api, ctx, http.StatusTooManyRequests, fmt.Sprintf(
				"rate limit exceeded: %d/%d requests in %s", exceeded.Count, exceeded.Rule.Max, exceeded.Rule.Window))

			return
		}

		next(ctx)
	}
}
