// Package voice wraps the HTTP text-to-speech service used for narration.
package voice
