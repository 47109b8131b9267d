// Package probe wraps ffprobe: one JSON invocation per file, converted into
// the inventory data model.
package probe
