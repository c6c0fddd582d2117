// Package daemon hosts the long-running scenecast process: it owns the
// single-instance lock, the queue store, and the workflow manager, and
// exposes the operations the IPC layer serves.
package daemon
