// Package api serves live risk graphs over HTTP.
//
// Each graph lives in a [session.Session] and is addressed by the session
// ID. Mutations apply the engine's incremental updates immediately, so risk
// queries never rebuild the graph.
//
// # Routes
//
//	GET    /v1/health
//	POST   /v1/analyze                          one-shot pipeline run
//	GET    /v1/graphs                           list sessions
//	POST   /v1/graphs                           create (optionally from a model)
//	GET    /v1/graphs/{id}                      model snapshot
//	DELETE /v1/graphs/{id}
//	POST   /v1/graphs/{id}/vertices             register vertices
//	GET    /v1/graphs/{id}/vertices/{vertex}    risk breakdown
//	PATCH  /v1/graphs/{id}/vertices/{vertex}    update risk or metadata
//	DELETE /v1/graphs/{id}/vertices/{vertex}
//	PUT    /v1/graphs/{id}/edges                set edges
//	GET    /v1/graphs/{id}/edges/{from}/{to}    weight, collapsed value, paths
//	DELETE /v1/graphs/{id}/edges/{from}/{to}
//	GET    /v1/graphs/{id}/risk                 risk report
//	POST   /v1/graphs/{id}/analyze              render the current model
//	POST   /v1/graphs/{id}/snapshots            persist to the store
//	GET    /v1/snapshots
//	GET    /v1/snapshots/{sid}                  stored model
//	POST   /v1/snapshots/{sid}/load             start a session from a snapshot
//	DELETE /v1/snapshots/{sid}
//	GET    /metrics                             Prometheus exposition
//
// Errors are returned as {"code": ..., "message": ...} with the status from
// [errors.HTTPStatus].
package api
