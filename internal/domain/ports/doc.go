// Package ports defines the interfaces the workflow engine depends on.
// Collaborators (definition store, assignment resolver, notification and
// document services) are consumed through these narrow contracts so the
// engine can be unit-tested with mocks and swapped implementations.
package ports
