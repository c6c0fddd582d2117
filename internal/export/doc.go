// Package export packages finished job artifacts into a local directory.
package export
