// Package textgen implements the pipeline's text collaborators (script
// rewrite, scene split, prompt and metadata generation) over a shared
// chat-completion client.
package textgen
