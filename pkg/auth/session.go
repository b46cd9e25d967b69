package auth

import (
	"context"
	"sync"
)

// Session resolves the caller of one inbound request at most once, however
// many times the handler chain asks for it.
type Session struct {
	once      sync.Once
	resolve   func() *Principal
	principal *Principal
}

func NewSession(ctx context.Context, resolver *Resolver, header string) *Session {
	return &Session{
		resolve: func() *Principal {
			return resolver.Resolve(ctx, header)
		},
	}
}

// NewResolvedSession wraps an already known principal (nil for anonymous).
func NewResolvedSession(principal *Principal) *Session {
	return &Session{
		resolve: func() *Principal { return principal },
	}
}

func (s *Session) Principal() *Principal {
	if s == nil {
		return nil
	}
	s.once.Do(func() {
		s.principal = s.resolve()
	})
	return s.principal
}

type sessionKey struct{}

func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

func SessionFromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(sessionKey{}).(*Session)
	return s
}

// PrincipalFromContext is a shortcut for SessionFromContext(ctx).Principal().
func PrincipalFromContext(ctx context.Context) *Principal {
	return SessionFromContext(ctx).Principal()
}
