// Package services defines the shared error taxonomy for failures crossing
// external boundaries: the probing and encoding tools, the metadata service,
// and filesystem mutations performed on their behalf.
package services
