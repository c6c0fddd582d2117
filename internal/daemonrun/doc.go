// Package daemonrun bootstraps the daemon process: configuration, logging,
// queue store, pipeline collaborators, workflow manager, and the IPC server.
package daemonrun
