// Package validation provides input validation for walks.
// Bucket names and prefixes are validated before any client is opened.
package validation
