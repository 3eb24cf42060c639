// Package conv provides checked integer arithmetic for capacity and byte-size
// computations.
//
// Capacities are Go ints, but block sizes grow geometrically and are multiplied
// by element sizes when memory is accounted for. Those computations can overflow
// on 32-bit platforms or with large block schedules, so they go through the
// helpers in this package instead of raw operators.
//
// For values that are provably bounded (loop indices, block numbers below the
// directory length), use direct arithmetic instead.
package conv
