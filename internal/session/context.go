// ABOUTME: Carries the session service through a context.Context
// ABOUTME: Used where the service is provisioned once for a whole command

package session

import "context"

type contextKey struct{}

// NewContext returns ctx carrying svc
func NewContext(ctx context.Context, svc *Service) context.Context {
	return context.WithValue(ctx, contextKey{}, svc)
}

// FromContext returns the service stored by NewContext. Reaching for the
// session outside a context that carries one is a programming error.
func FromContext(ctx context.Context) *Service {
	svc, ok := ctx.Value(contextKey{}).(*Service)
	if !ok || svc == nil {
		panic("session: no session service in context")
	}
	return svc
}
