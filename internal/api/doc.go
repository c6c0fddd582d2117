// Package api defines the transport-facing data shapes shared by the IPC
// layer and the CLI, and the conversions from queue models into them.
package api
