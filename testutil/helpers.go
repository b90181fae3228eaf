package testutil

import (
	"context"
	"testing"

	"github.com/kbukum/composekit/component"
)

// THelper provides testing.T integration for easier test setup.
type THelper struct {
	t   *testing.T
	ctx context.Context
}

// T wraps a testing.T to provide helper methods.
//
//	func TestOrders(t *testing.T) {
//	    testutil.T(t).Setup(ordersComponent)
//	    // stopped automatically when the test ends
//	}
func T(t *testing.T) *THelper {
	return &THelper{t: t, ctx: context.Background()}
}

// WithContext sets a custom context for the helper.
func (h *THelper) WithContext(ctx context.Context) *THelper {
	h.ctx = ctx
	return h
}

// Setup starts a component and registers its Stop with t.Cleanup.
func (h *THelper) Setup(c component.Component) {
	h.t.Helper()
	if err := c.Start(h.ctx); err != nil {
		h.t.Fatalf("failed to start component %s: %v", c.Name(), err)
	}
	h.t.Cleanup(func() {
		if err := c.Stop(h.ctx); err != nil {
			h.t.Errorf("failed to stop component %s: %v", c.Name(), err)
		}
	})
}

// NoError fails the test immediately when err is not nil.
func (h *THelper) NoError(err error, what string) {
	h.t.Helper()
	if err != nil {
		h.t.Fatalf("%s: unexpected error: %v", what, err)
	}
}

// EqualStrings fails the test when got and want differ.
func (h *THelper) EqualStrings(got, want []string, what string) {
	h.t.Helper()
	if len(got) != len(want) {
		h.t.Fatalf("%s: got %v, want %v", what, got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			h.t.Fatalf("%s: got %v, want %v", what, got, want)
		}
	}
}
