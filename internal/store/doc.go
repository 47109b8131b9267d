// Package store is the SQLite persistence layer behind the conformd
// metadata service: file records plus their nested stream lists.
package store
