// Package requestctx carries request-scoped values (origin address) across
// layers that only see a context.Context.
package requestctx

import "context"

type ctxKey string

const keyClientIP ctxKey = "client_ip"

func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, keyClientIP, ip)
}

func ClientIPFrom(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(keyClientIP).(string)

	return v, ok && v != ""
}
