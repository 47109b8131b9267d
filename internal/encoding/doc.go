// Package encoding runs ffmpeg against staged files to produce outputs
// that match the target codec profile.
package encoding
