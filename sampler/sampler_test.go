package sampler

import (
	"math"
	"math/rand/v2"
	"sync"
	"testing"

	"github.com/gomlx/go-charseq/api"
	"github.com/gomlx/go-charseq/vocabulary"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func abcVocab(t *testing.T) *vocabulary.Vocabulary {
	vocab, err := vocabulary.FromString("abc")
	require.NoError(t, err)
	return vocab
}

func seededSource(seed uint64) api.Source {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// noDrawSource fails the test if a draw is requested.
func noDrawSource(t *testing.T) api.Source {
	return api.SourceFunc(func() float64 {
		t.Fatal("greedy pick must not consume the random source")
		return 0
	})
}

func TestPickGreedyExample(t *testing.T) {
	s := New(abcVocab(t), noDrawSource(t))
	symbol, err := s.Pick([]float64{0.1, 0.7, 0.2}, 1.0, false)
	require.NoError(t, err)
	assert.Equal(t, 'b', symbol)
}

func TestPickGreedyIgnoresTemperature(t *testing.T) {
	probabilities := []float64{0.1, 0.2, 0.7}
	for _, shortcut := range []bool{false, true} {
		s := New(abcVocab(t), noDrawSource(t)).WithGreedyShortcut(shortcut)
		for _, temperature := range []float64{0.01, 0.5, 1, 2, 100, math.Inf(1)} {
			if math.IsInf(temperature, 1) && !shortcut {
				// Uniform distribution: every entry ties, the lowest index wins.
				symbol, err := s.Pick(probabilities, temperature, false)
				require.NoError(t, err)
				assert.Equal(t, 'a', symbol)
				continue
			}
			symbol, err := s.Pick(probabilities, temperature, false)
			require.NoError(t, err)
			assert.Equal(t, 'c', symbol, "temperature=%g, shortcut=%v", temperature, shortcut)
		}
	}
}

func TestPickGreedyTies(t *testing.T) {
	s := New(abcVocab(t), noDrawSource(t))
	for _, tc := range []struct {
		probabilities []float64
		want          rune
	}{
		{[]float64{0.3, 0.3, 0.3}, 'a'},
		{[]float64{0.2, 0.4, 0.4}, 'b'},
		{[]float64{0.4, 0.2, 0.4}, 'a'},
	} {
		for _, temperature := range []float64{0.5, 1, 3} {
			symbol, err := s.Pick(tc.probabilities, temperature, false)
			require.NoError(t, err)
			assert.Equal(t, tc.want, symbol, "probabilities=%v, temperature=%g", tc.probabilities, temperature)
		}
	}
}

func TestPickSampleScripted(t *testing.T) {
	var draws []float64
	next := 0
	source := api.SourceFunc(func() float64 {
		u := draws[next]
		next++
		return u
	})
	s := New(abcVocab(t), source)
	probabilities := []float64{0.1, 0.7, 0.2}

	draws = []float64{0.05, 0.5, 0.9, 0.9999999999, 0}
	var got []rune
	for range draws {
		symbol, err := s.Pick(probabilities, 1.0, true)
		require.NoError(t, err)
		got = append(got, symbol)
	}
	assert.Equal(t, []rune{'a', 'b', 'c', 'c', 'a'}, got)
	assert.Equal(t, len(draws), next, "exactly one draw per pick")
}

func TestPickSampleSkipsZeroMass(t *testing.T) {
	// At T=0.01 the last entry's reshaped mass underflows to 0, and the cumulative sum of the
	// others rounds to just below 1.
	probabilities := []float64{0.40921355051463976, 0.5907864494853603, 1e-300}
	reshaped, err := Reshape(probabilities, 0.01)
	require.NoError(t, err)
	require.Equal(t, 0.0, reshaped[2])

	s := New(abcVocab(t), api.SourceFunc(func() float64 { return math.Nextafter(1, 0) }))
	symbol, err := s.Pick(probabilities, 0.01, true)
	require.NoError(t, err)
	assert.Equal(t, 'b', symbol)
}

func TestPickSampleReproducible(t *testing.T) {
	vocab := vocabulary.Default()
	probabilities := make([]float64, vocab.Size())
	for ii := range probabilities {
		probabilities[ii] = float64(ii + 1)
	}
	run := func() []rune {
		s := New(vocab, seededSource(42))
		var symbols []rune
		for range 50 {
			symbol, err := s.Pick(probabilities, 0.8, true)
			require.NoError(t, err)
			symbols = append(symbols, symbol)
		}
		return symbols
	}
	assert.Equal(t, run(), run())
}

func frequencies(t *testing.T, s *Sampler, probabilities []float64, temperature float64, n int) map[rune]float64 {
	counts := make(map[rune]float64)
	for range n {
		symbol, err := s.Pick(probabilities, temperature, true)
		require.NoError(t, err)
		counts[symbol]++
	}
	for symbol := range counts {
		counts[symbol] /= float64(n)
	}
	return counts
}

func TestPickSampleTemperature(t *testing.T) {
	const n = 30000
	s := New(abcVocab(t), seededSource(7))
	probabilities := []float64{0.1, 0.7, 0.2}

	// Temperature 1 keeps the distribution.
	freq := frequencies(t, s, probabilities, 1.0, n)
	assert.InDelta(t, 0.1, freq['a'], 0.02)
	assert.InDelta(t, 0.7, freq['b'], 0.02)
	assert.InDelta(t, 0.2, freq['c'], 0.02)

	// Low temperature converges to the argmax.
	freq = frequencies(t, s, probabilities, 0.01, n)
	assert.Equal(t, 1.0, freq['b'])

	// High temperature converges to uniform.
	freq = frequencies(t, s, probabilities, 100, n)
	for _, symbol := range "abc" {
		assert.InDelta(t, 1.0/3.0, freq[symbol], 0.03, "symbol %q", symbol)
	}
}

func TestPickErrors(t *testing.T) {
	s := New(abcVocab(t), seededSource(1))
	for _, doSample := range []bool{false, true} {
		for _, tc := range []struct {
			name          string
			probabilities []float64
			temperature   float64
			reason        error
		}{
			{"zero probability", []float64{0.5, 0, 0.5}, 1, api.ErrNonPositiveProbability},
			{"negative probability", []float64{0.5, -0.1, 0.6}, 1, api.ErrNonPositiveProbability},
			{"NaN probability", []float64{0.5, math.NaN(), 0.5}, 1, api.ErrNonPositiveProbability},
			{"infinite probability", []float64{0.5, math.Inf(1), 0.5}, 1, api.ErrNonFiniteProbability},
			{"zero temperature", []float64{0.1, 0.7, 0.2}, 0, api.ErrNonPositiveTemperature},
			{"negative temperature", []float64{0.1, 0.7, 0.2}, -1, api.ErrNonPositiveTemperature},
			{"NaN temperature", []float64{0.1, 0.7, 0.2}, math.NaN(), api.ErrNonPositiveTemperature},
			{"short vector", []float64{0.1, 0.9}, 1, api.ErrLengthMismatch},
		} {
			_, err := s.Pick(tc.probabilities, tc.temperature, doSample)
			require.Error(t, err, "%s, doSample=%v", tc.name, doSample)
			assert.True(t, errors.Is(err, tc.reason), "%s: got %v", tc.name, err)
			var domainErr *api.DomainError
			assert.True(t, errors.As(err, &domainErr), tc.name)
		}
	}

	var domainErr *api.DomainError
	_, err := s.Pick([]float64{0.5, 0.5, -2}, 1, true)
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, 2, domainErr.Index)
	assert.Equal(t, -2.0, domainErr.Value)
}

func TestPickConcurrent(t *testing.T) {
	s := New(vocabulary.Default(), seededSource(3))
	probabilities := make([]float64, s.Vocabulary().Size())
	for ii := range probabilities {
		probabilities[ii] = 1
	}
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 200 {
				symbol, err := s.Pick(probabilities, 1.0, true)
				assert.NoError(t, err)
				assert.True(t, s.Vocabulary().Contains(symbol))
			}
		}()
	}
	wg.Wait()
}

func TestNewDefaultSource(t *testing.T) {
	s := New(abcVocab(t), nil)
	symbol, err := s.Pick([]float64{1, 1, 1}, 1, true)
	require.NoError(t, err)
	assert.Contains(t, []rune("abc"), symbol)
}
