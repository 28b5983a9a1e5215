// Package types holds the small set of interfaces shared across the
// generator's packages.
package types
