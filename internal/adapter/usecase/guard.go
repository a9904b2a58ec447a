package usecase

import (
	"context"
	"sync"

	"mesa-vesting/internal/core/domain"
)

type guardKey struct{}

// guard serialises engine operations and rejects re-entry. The context
// handed to external collaborators carries a marker; any engine call made
// with a context derived from it fails fast instead of deadlocking on mu.
type guard struct {
	mu sync.Mutex
}

// enter acquires the guard. release must be called on every exit path.
func (g *guard) enter(ctx context.Context) (context.Context, func(), error) {
	if held(ctx) {
		return ctx, func() {}, domain.ErrReentrantCall
	}
	g.mu.Lock()
	return context.WithValue(ctx, guardKey{}, struct{}{}), g.mu.Unlock, nil
}

func held(ctx context.Context) bool {
	return ctx.Value(guardKey{}) != nil
}
