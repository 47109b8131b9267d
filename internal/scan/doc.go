// Package scan walks library trees, probes media files, and registers the
// results with the metadata service.
package scan
