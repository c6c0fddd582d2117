// Package notifications delivers push notifications for queue and job
// lifecycle events via ntfy. A noop implementation is used when no topic is
// configured.
package notifications
