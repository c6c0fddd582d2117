// Package prodrecord talks to the remote production record service. Sync is
// best-effort; pipeline progress never blocks on it.
package prodrecord
