// Package api defines the types shared by the vocabulary, codec and sampler packages:
// the error taxonomy and the random source used for stochastic sampling.
//
// It's a leaf package, so callers can classify errors without importing the implementations.
package api

// Source of uniformly distributed random numbers in [0.0, 1.0).
//
// *rand.Rand from math/rand and math/rand/v2 both implement it. Implementations don't need to be
// safe for concurrent use: sampler.Sampler serializes access to its Source.
type Source interface {
	Float64() float64
}

// SourceFunc adapts a plain function to a Source. Useful for tests that need to script the draws.
type SourceFunc func() float64

// Float64 implements Source.
func (f SourceFunc) Float64() float64 { return f() }
