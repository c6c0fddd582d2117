// Package logging wraps log/slog with scenecast's console and JSON handlers,
// standardized field names, and context-derived attribute helpers.
package logging
