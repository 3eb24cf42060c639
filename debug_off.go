//go:build !pincoldebug

package pincol

const debugAssertions = false
