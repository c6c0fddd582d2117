// Package queue persists scenecast's job store: queue jobs, per-step
// checkpoint artifacts, and the global run configuration, all backed by a
// single SQLite database. Every mutation is a single-row statement, which
// gives the per-job atomicity the scheduler and pipeline rely on.
package queue
