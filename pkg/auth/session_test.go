package auth

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_ResolvesOnce(t *testing.T) {
	resolver, tokens, store := setupResolver(t, Principal{ID: "u1", Role: RoleUser})
	session := NewSession(context.Background(), resolver, bearer(t, tokens, "u1", RoleUser))

	first := session.Principal()
	require.NotNil(t, first)

	require.NoError(t, store.UpdateBanState(context.Background(), "u1", true, "spam"))

	second := session.Principal()
	assert.Same(t, first, second)
	assert.Equal(t, 1, store.lookupCount())
}

func TestSession_ConcurrentCallers(t *testing.T) {
	resolver, tokens, store := setupResolver(t, Principal{ID: "u1", Role: RoleUser})
	session := NewSession(context.Background(), resolver, bearer(t, tokens, "u1", RoleUser))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NotNil(t, session.Principal())
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, store.lookupCount())
}

func TestSession_AnonymousIsMemoizedToo(t *testing.T) {
	resolver, _, store := setupResolver(t)
	session := NewSession(context.Background(), resolver, "Bearer garbage")

	assert.Nil(t, session.Principal())
	assert.Nil(t, session.Principal())
	assert.Zero(t, store.lookupCount())
}

func TestSessionFromContext(t *testing.T) {
	principal := &Principal{ID: "u1", Role: RoleAdmin}
	ctx := WithSession(context.Background(), NewResolvedSession(principal))

	assert.Same(t, principal, PrincipalFromContext(ctx))
	assert.Nil(t, PrincipalFromContext(context.Background()))
}
