// Package replace swaps encoded outputs into the library and retires the
// corresponding metadata records. Originals are either deleted or kept
// next to the replacement with an .old suffix.
package replace
