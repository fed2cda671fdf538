package usecase

import (
	"context"
	"time"
)

// logWriteTimeout bounds a session or attempt write made once the caller's
// context may already be done.
const logWriteTimeout = 5 * time.Second

// detached keeps ctx's values but drops its deadline and cancellation, so
// progress made before a request timeout still reaches the store.
func detached(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), logWriteTimeout)
}
