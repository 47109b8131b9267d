// Package media defines the file inventory data model shared by the CLI,
// the metadata service, and the transcode pipeline.
package media
