// Package media defines the domain types flowing between pipeline steps:
// scenes, narration clips, prompts, entities, and assembly results.
package media
