// Package workflow coordinates queue dispatch: a single dispatcher claims
// queued jobs in FIFO order under a configurable concurrency limit and
// inter-start delay, handing each to a pipeline worker with a registered
// cancellation handle.
package workflow
