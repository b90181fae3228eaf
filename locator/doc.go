// Package locator exposes a DI container through a container-agnostic
// service locator, plus the process-wide slot that hands it out.
//
//	adapter := locator.NewContainerAdapter(container)
//	locator.SetProvider(func() (locator.ServiceLocator, error) {
//	    return adapter, nil
//	})
//
//	l, err := locator.Current()
//	mgr, err := locator.Get[regions.Manager](l, "")
package locator
