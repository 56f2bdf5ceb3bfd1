package mapbuilder

import (
	"context"

	goutils "go.viam.com/utils"
)

// Run consumes update events one at a time until the context is done or the
// channel closes. Events are never processed concurrently.
func (b *Builder) Run(ctx context.Context, updates <-chan SubmapList) {
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.HandleSubmapList(ctx, update)
		}
	}
}

// RunBackground starts Run on its own goroutine, calling onComplete (if
// non-nil) once the loop exits.
func (b *Builder) RunBackground(ctx context.Context, updates <-chan SubmapList, onComplete func()) {
	goutils.ManagedGo(func() {
		b.Run(ctx, updates)
	}, onComplete)
}
