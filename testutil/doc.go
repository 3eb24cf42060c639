// Package testutil provides testing utilities for pincol.
//
// This package is intended for use in tests and benchmarks only.
//
// # Instrumented Storage
//
// Storage wraps a storage.Split and records how it is grown, so tests
// can assert that concurrent callers produced exactly one growth:
//
//	s := testutil.NewStorage[int](storage.NewDoubling(4), 32, 4)
//	col := pincol.New[int](s)
//	...
//	assert.Equal(t, int64(1), s.GrowCalls())
//
// Failures, panics, delays and a gate that holds the grower inside GrowTo
// can be injected.
//
// # Random Indices
//
//	rng := testutil.NewRNG(seed)
//	order := rng.Perm(1024)
package testutil
