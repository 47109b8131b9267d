// Package config loads and validates the TOML configuration shared by the
// conform CLI and the conformd metadata service. The resulting Config struct
// is injected into every collaborator at construction.
package config
