// Package recovery repairs libraries after an interrupted replacement by
// restoring .old backups over zero-byte container files.
package recovery
