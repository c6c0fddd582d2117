// Package services holds the shared error taxonomy and request context
// helpers used by the collaborator clients and the pipeline runner.
package services
