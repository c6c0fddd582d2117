// Package cancel holds the per-job cancellation registry. Stopping the queue
// or removing a single job signals the corresponding token; collaborator
// calls honor it cooperatively at their next suspension point.
package cancel
