// Package ipc implements daemon control over JSON-RPC on a Unix domain
// socket, with a matching client used by the CLI.
package ipc
