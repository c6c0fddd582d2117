// Package logs reads daemon log files for the CLI's show/follow commands.
package logs
