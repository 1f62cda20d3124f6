// Package sync exposes reconciliation cycles over HTTP.
//
// Service wraps a reconcile.Coordinator and runs the cycles of one owner one at a time.
// A manual trigger arriving during another cycle waits for it and then makes its own
// decision. Background triggers that overlap share one cycle through singleflight. The
// service also remembers the last result and fires background triggers on a schedule.
//
// # Routes
//
//	POST /sync/:trigger   run a cycle (?wait=false to run it in the background)
//	GET  /sync/status     bookkeeping and last result
package sync
