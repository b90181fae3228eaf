package bootstrap

import (
	"context"
	"fmt"
)

// Hook is a lifecycle callback that runs after the sequence or during
// shutdown.
type Hook func(ctx context.Context) error

// OnCompleted registers hooks that run after every step succeeded and the
// modules are loaded, before the summary is printed. A failing hook fails Run
// and leaves State not completed.
func (b *Bootstrapper) OnCompleted(hooks ...Hook) {
	b.onCompleted = append(b.onCompleted, hooks...)
}

// OnShutdown registers hooks that run at the start of Shutdown, before
// components are stopped.
func (b *Bootstrapper) OnShutdown(hooks ...Hook) {
	b.onShutdown = append(b.onShutdown, hooks...)
}

// runHooks executes hooks sequentially, returning the first error.
func runHooks(ctx context.Context, hooks []Hook) error {
	for i, h := range hooks {
		if err := h(ctx); err != nil {
			return fmt.Errorf("hook %d failed: %w", i, err)
		}
	}
	return nil
}
