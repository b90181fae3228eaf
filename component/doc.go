// Package component defines lifecycle-managed parts of a composed
// application and the registry that starts and stops them.
//
// Modules whose instances implement Component are registered and started
// when the module initializer runs them, and stopped in reverse order when
// the bootstrapper shuts down.
package component
