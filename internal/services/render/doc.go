// Package render wraps the external reelforge renderer for per-scene video
// generation and final assembly.
package render
