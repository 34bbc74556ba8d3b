// Package shell holds caller-side helpers that sit between the circulation library and the
// programs that drive it.
package shell
