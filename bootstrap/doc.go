// Package bootstrap runs the startup sequence of a composed application.
//
// A Bootstrapper executes a fixed, ordered list of steps through one driver
// loop: create the logger, module catalog and container, register the
// default services, install the service locator provider, configure region
// adapters and behaviors, register framework error types, create and wire
// the shell, and finally initialize the modules. Any step can be replaced
// through Overrides; the default behavior stays reachable through the
// matching Default* method.
//
// # Quick Start
//
//	cfg, err := bootstrap.LoadConfig("orders-app")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	b := bootstrap.New(
//	    bootstrap.WithConfig(cfg),
//	    bootstrap.WithShell(mainWindow),
//	    bootstrap.WithOverrides(bootstrap.Overrides{
//	        ConfigureContainer: func(ctx context.Context, b *bootstrap.Bootstrapper) error {
//	            if err := b.DefaultConfigureContainer(ctx); err != nil {
//	                return err
//	            }
//	            return modularity.RegisterModuleType(b.Container, "orders", orders.NewModule)
//	        },
//	    }),
//	)
//	if err := b.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer b.Shutdown(context.Background())
//
// A failed run returns a *StepError naming the step; the sequence is never
// retried or rolled back.
package bootstrap
