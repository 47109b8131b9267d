// Package testsupport holds fixtures shared by tests across the module.
package testsupport
