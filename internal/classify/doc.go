// Package classify decides which library files need re-encoding to the
// target codec profile. Decisions are pure functions of stream metadata.
package classify
