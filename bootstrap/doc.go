// Package bootstrap runs a service's lifecycle: apply config defaults, set up
// the logger, start registered components, run configure callbacks and
// hooks, print a startup summary, then wait for a signal (Run) or a finite
// task (RunTask) and shut down in reverse order.
//
//	app, err := bootstrap.NewApp(&cfg)
//	app.RegisterComponent(asrComponent)
//	app.OnConfigure(func(ctx context.Context, a *bootstrap.App[*Config]) error {
//	    return wireRoutes(a)
//	})
//	err = app.Run(ctx)
package bootstrap
