// Package api contains both halves of the metadata service boundary: the
// chi HTTP server conformd runs and the typed client the CLI calls it with.
package api
