// Package workflow orchestrates transcode batches: candidate selection
// against the metadata service, sequential encoding, and concurrent
// replacement joined before the batch returns.
package workflow
