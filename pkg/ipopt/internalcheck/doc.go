// Package internalcheck holds repository policy tests.
//
// The tests load the module's packages with golang.org/x/tools/go/packages
// and fail on constructs the wrapper must not contain: cgo or unsafe outside
// internal/bindings, and direct printing from library code, which must go
// through the logging package instead.
//
// # Internal Use Only
//
// This package has no API. Applications should use pkg/ipopt and its
// subpackages.
package internalcheck
