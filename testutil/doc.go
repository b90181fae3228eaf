// Package testutil provides hand-written test doubles for composekit:
// a recording logging facade, a stub container resolver, fake lifecycle
// components, and small testing.T helpers.
//
//	facade := testutil.NewRecordingFacade()
//	b := bootstrap.New(bootstrap.WithOverrides(bootstrap.Overrides{
//	    CreateLogger: func(*bootstrap.Bootstrapper) (logger.Facade, error) { return facade, nil },
//	}))
//	testutil.T(t).NoError(b.Run(ctx), "run")
package testutil
