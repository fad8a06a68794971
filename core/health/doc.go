// Package health provides liveness and readiness probes, as plain handlers
// and as a mountable blueprint:
//
//	a.RegisterBlueprint(health.Blueprint(log, db.Ping))
//
// The blueprint serves GET /health/live, /health/ready and /health/ping
// under the endpoints health.live, health.ready and health.ping, and adds
// a "health check" command running the readiness checks once.
package health
