// Command conform is the CLI for keeping a media library on a single
// codec profile: scan registers files with the metadata service, transcode
// rewrites the non-compliant ones, rollback repairs interrupted runs.
package main
