package bootstrap

import (
	"io"

	apperrors "github.com/kbukum/composekit/errors"
	"github.com/kbukum/composekit/locator"
)

// Option configures the Bootstrapper during creation.
type Option func(*Bootstrapper)

// WithConfig supplies the application configuration. Without it the global
// logger is used and the catalog starts empty.
func WithConfig(cfg *Config) Option {
	return func(b *Bootstrapper) {
		b.cfg = cfg
	}
}

// WithLocatorSlot sets the slot ConfigureServiceLocator installs its
// provider in. Defaults to locator.Default.
func WithLocatorSlot(slot *locator.Slot) Option {
	return func(b *Bootstrapper) {
		b.slot = slot
	}
}

// WithClassifier sets the classifier framework error types are registered
// with. Defaults to errors.Framework.
func WithClassifier(c *apperrors.Classifier) Option {
	return func(b *Bootstrapper) {
		b.classifier = c
	}
}

// WithDefaultConfiguration controls whether ConfigureContainer registers the
// default services. Enabled unless the config says otherwise.
func WithDefaultConfiguration(enabled bool) Option {
	return func(b *Bootstrapper) {
		b.useDefaults = &enabled
	}
}

// WithOverrides replaces individual steps.
func WithOverrides(o Overrides) Option {
	return func(b *Bootstrapper) {
		b.overrides = o
	}
}

// WithShell makes CreateShell return shell unless CreateShell is overridden.
func WithShell(shell interface{}) Option {
	return func(b *Bootstrapper) {
		b.shell = shell
	}
}

// WithSummaryWriter sets where the startup summary is printed.
func WithSummaryWriter(w io.Writer) Option {
	return func(b *Bootstrapper) {
		b.summaryOut = w
	}
}
