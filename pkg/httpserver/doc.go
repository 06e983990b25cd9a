// Package httpserver runs a small net/http server for operational endpoints
// such as /metrics and health probes.
//
// Run blocks until the supplied context is done and then shuts the server
// down with a bounded deadline, so the server composes with errgroup next to
// the job engine:
//
//	srv := httpserver.NewFromConfig(cfg.HTTP, httpserver.WithLogger(log))
//	g.Go(func() error { return srv.Run(ctx, router) })
//
// HealthCheckHandler serves liveness (no checks) and readiness (one or more
// checks) probes. Start and shutdown failures wrap ErrStart and ErrShutdown.
package httpserver
