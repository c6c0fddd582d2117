// Package pipeline executes the script-to-video generation steps for one
// job: script rewrite, scene splitting, metadata, narration, prompt
// generation, footage assembly, SEO, and export. The runner resumes past
// completed steps using cached artifacts and persists a terminal status for
// every run attempt.
package pipeline
