// Package staging manages scratch copies of library files so the encoder
// never reads or writes the library directly.
package staging
