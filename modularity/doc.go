// Package modularity loads application modules in dependency order.
//
// A Catalog lists modules by name, the key of their implementation, their
// dependencies and when to load them. The ModuleManager walks the catalog and
// hands each module to the ModuleInitializer, which resolves the
// implementation from the service locator and calls Initialize.
//
//	modularity.RegisterModuleType(container, "orders", NewOrdersModule)
//	catalog.AddModule(&modularity.ModuleInfo{Name: "Orders", Type: "orders"})
package modularity
