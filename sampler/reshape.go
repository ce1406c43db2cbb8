package sampler

import (
	"math"

	"github.com/gomlx/go-charseq/api"
)

// Reshape applies temperature to a probability vector and renormalizes it:
//
//	reshaped[i] = exp(log(p[i]) / temperature) / sum_j(exp(log(p[j]) / temperature))
//
// Lower temperatures sharpen the distribution toward its mode, higher temperatures flatten it toward
// uniform. probabilities don't need to sum to 1, but every entry must be finite and > 0, and
// temperature must be > 0 (+Inf yields the uniform distribution). Violations return an
// *api.DomainError.
//
// The maximum logit is subtracted before exponentiation, which leaves the result unchanged but keeps
// exp from overflowing for small temperatures.
func Reshape(probabilities []float64, temperature float64) ([]float64, error) {
	if err := validate(probabilities, temperature); err != nil {
		return nil, err
	}
	return reshape(probabilities, temperature), nil
}

func validate(probabilities []float64, temperature float64) error {
	if !(temperature > 0) {
		return api.NewDomainError(api.ErrNonPositiveTemperature, temperature, -1)
	}
	for ii, p := range probabilities {
		if !(p > 0) {
			return api.NewDomainError(api.ErrNonPositiveProbability, p, ii)
		}
		if math.IsInf(p, 1) {
			return api.NewDomainError(api.ErrNonFiniteProbability, p, ii)
		}
	}
	return nil
}

// reshape assumes validated inputs.
func reshape(probabilities []float64, temperature float64) []float64 {
	reshaped := make([]float64, len(probabilities))
	maxLogit := math.Inf(-1)
	for ii, p := range probabilities {
		reshaped[ii] = math.Log(p) / temperature
		maxLogit = max(maxLogit, reshaped[ii])
	}

	if math.IsInf(maxLogit, 0) {
		// Logits overflowed (temperature is tiny): take the limit, splitting the mass evenly
		// among the most likely entries.
		maxP := probabilities[ArgMax(probabilities)]
		var count float64
		for ii, p := range probabilities {
			if p == maxP {
				reshaped[ii] = 1
				count++
			} else {
				reshaped[ii] = 0
			}
		}
		for ii := range reshaped {
			reshaped[ii] /= count
		}
		return reshaped
	}

	var sum float64
	for ii, logit := range reshaped {
		reshaped[ii] = math.Exp(logit - maxLogit)
		sum += reshaped[ii]
	}
	for ii := range reshaped {
		reshaped[ii] /= sum
	}
	return reshaped
}

// ArgMax returns the index of the largest value, the lowest index on ties. It returns -1 for an
// empty slice.
func ArgMax(values []float64) int {
	if len(values) == 0 {
		return -1
	}
	best := 0
	for ii, value := range values[1:] {
		if value > values[best] {
			best = ii + 1
		}
	}
	return best
}

// Categorical returns the index selected by a single draw from the distribution, given u uniformly
// distributed in [0, 1).
//
// It walks the cumulative distribution and returns the first index with u < cdf. If rounding leaves
// the cumulative sum short of u, the last entry with positive mass is returned: entries with zero
// mass are never selected. It returns -1 if no entry has positive mass.
func Categorical(distribution []float64, u float64) int {
	var cdf float64
	lastPositive := -1
	for ii, p := range distribution {
		if !(p > 0) {
			continue
		}
		lastPositive = ii
		cdf += p
		if u < cdf {
			return ii
		}
	}
	return lastPositive
}
