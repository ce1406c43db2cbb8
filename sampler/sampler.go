// Package sampler picks the next symbol from a model's probability vector over a vocabulary, either
// greedily or by a temperature-reshaped categorical draw.
package sampler

import (
	"math/rand/v2"
	"sync"

	"github.com/gomlx/go-charseq/api"
	"github.com/gomlx/go-charseq/vocabulary"
	"k8s.io/klog/v2"
)

// Sampler picks symbols of a Vocabulary from probability vectors.
//
// It's safe for concurrent use: access to the random source is serialized.
type Sampler struct {
	vocab          *vocabulary.Vocabulary
	greedyShortcut bool

	mu     sync.Mutex
	source api.Source
}

// New creates a Sampler for vocab drawing from source.
//
// If source is nil, a PCG generator with a random seed is used. Pass a seeded generator (e.g.
// rand.New(rand.NewPCG(seed1, seed2))) for reproducible sampling.
func New(vocab *vocabulary.Vocabulary, source api.Source) *Sampler {
	if source == nil {
		source = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Sampler{
		vocab:  vocab,
		source: source,
	}
}

// WithGreedyShortcut makes greedy picks take the argmax of the probabilities directly, skipping
// the temperature reshape. Softmax is monotonic, so this selects the same index as the default path
// except when floating point rounding collapses a near-tie in the reshaped distribution.
//
// It returns the Sampler itself, so calls can be chained.
func (s *Sampler) WithGreedyShortcut(shortcut bool) *Sampler {
	s.greedyShortcut = shortcut
	return s
}

// Vocabulary used by the Sampler.
func (s *Sampler) Vocabulary() *vocabulary.Vocabulary {
	return s.vocab
}

// Reshape is like the package function Reshape, but also checks that probabilities has one entry
// per vocabulary symbol.
func (s *Sampler) Reshape(probabilities []float64, temperature float64) ([]float64, error) {
	if err := s.validate(probabilities, temperature); err != nil {
		return nil, err
	}
	return reshape(probabilities, temperature), nil
}

// Pick returns the next symbol given the model's probabilities, one per vocabulary symbol.
//
// The probabilities are first reshaped by temperature (see Reshape). If doSample is true, exactly
// one categorical draw is taken from the reshaped distribution using the Sampler's source.
// Otherwise the most likely symbol is returned (lowest index on ties) and the source is not used.
//
// Invalid inputs return an *api.DomainError: a length different from the vocabulary size,
// a non-positive or non-finite probability, or a non-positive temperature.
func (s *Sampler) Pick(probabilities []float64, temperature float64, doSample bool) (rune, error) {
	if err := s.validate(probabilities, temperature); err != nil {
		return 0, err
	}

	var index int
	switch {
	case doSample:
		reshaped := reshape(probabilities, temperature)
		s.mu.Lock()
		u := s.source.Float64()
		s.mu.Unlock()
		index = Categorical(reshaped, u)
		klog.V(2).Infof("sampler: u=%g selected index %d", u, index)
	case s.greedyShortcut:
		index = ArgMax(probabilities)
	default:
		index = ArgMax(reshape(probabilities, temperature))
	}

	if index < 0 || index >= s.vocab.Size() {
		return 0, api.NewInvariantError("selected index %d outside of vocabulary of size %d", index, s.vocab.Size())
	}
	symbol, err := s.vocab.SymbolOf(index)
	if err != nil {
		return 0, api.NewInvariantError("selected index %d has no symbol: %v", index, err)
	}
	return symbol, nil
}

func (s *Sampler) validate(probabilities []float64, temperature float64) error {
	if len(probabilities) != s.vocab.Size() {
		return api.NewDomainError(api.ErrLengthMismatch, float64(len(probabilities)), -1)
	}
	return validate(probabilities, temperature)
}
