// Package checkpoint stores per-job step artifacts so a retry can skip
// already-completed, expensive steps. Payloads live in the queue database
// and survive daemon restarts.
package checkpoint
