package chatstore

import (
	"context"

	"agentchat/internal/domain"
)

type scopeKey struct{}

// WithStore returns a context that carries store. The top-level composition
// creates one scope and hands it to the views it starts.
func WithStore(ctx context.Context, store *Store) context.Context {
	return context.WithValue(ctx, scopeKey{}, store)
}

// FromContext returns the store attached by WithStore, or ErrMissingProvider
// when ctx was not derived from a scope.
func FromContext(ctx context.Context) (*Store, error) {
	if ctx != nil {
		if s, ok := ctx.Value(scopeKey{}).(*Store); ok && s != nil {
			return s, nil
		}
	}
	return nil, domain.NewDomainError("chatstore.FromContext", domain.ErrMissingProvider, "")
}

// MustFromContext is FromContext for startup wiring. It panics on a missing scope.
func MustFromContext(ctx context.Context) *Store {
	s, err := FromContext(ctx)
	if err != nil {
		panic(err)
	}
	return s
}
