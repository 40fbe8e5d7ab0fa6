// Package cli provides shared command-line utilities: progress reporting,
// typed command errors, signal handling, and output formatting.
package cli
