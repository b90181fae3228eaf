// Package regions hosts views inside named regions of a shell.
//
// A shell declares regions by implementing Host. When the bootstrapper
// attaches the shell, the RegionManager looks up an Adapter for each
// declared target through AdapterMappings, creates the region, gives it a
// navigation service and attaches the default behaviors from the
// BehaviorFactory.
//
//	mgr.RegisterViewWithRegion("MainRegion", func() (interface{}, error) {
//	    return NewDashboard(), nil
//	})
//	mgr.RequestNavigate(ctx, "MainRegion", "Orders", nil)
package regions
