// Package server runs an http.Handler with production timeouts and
// graceful shutdown.
//
//	srv := server.New(":8080", server.WithLogger(log))
//	if err := srv.Run(ctx, handler); err != nil {
//		return err
//	}
//
// Run blocks until ctx is canceled, then shuts the server down, waiting at
// most the shutdown timeout for in-flight requests. Settings can also be
// read from the environment with Config and NewFromConfig.
package server
