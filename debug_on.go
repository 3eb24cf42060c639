//go:build pincoldebug

package pincol

const debugAssertions = true
