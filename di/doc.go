// Package di provides the reflection-keyed dependency injection container
// behind composekit's service locator.
//
// Bindings are keyed by service type plus an optional name. Constructors are
// plain functions; their parameters are resolved from the container by type.
// Transient bindings build a new instance per resolve; singletons build once.
//
// # Registration
//
//	di.Register[Greeter](c, NewEnglishGreeter, di.Singleton)
//	di.Register[Greeter](c, NewFrenchGreeter, di.Transient, di.WithName("fr"))
//
// # Resolution
//
//	g := di.MustResolve[Greeter](c)
//	fr, err := di.ResolveNamed[Greeter](c, "fr")
//	all, err := di.ResolveAll[Greeter](c)
package di
