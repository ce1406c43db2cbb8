// Package generate implements the character-by-character generation loop: encode the current text,
// ask a model for the next-symbol probabilities, pick a symbol, append it and repeat.
package generate

import (
	"context"
	"strings"

	"github.com/gomlx/go-charseq/api"
	"github.com/gomlx/go-charseq/codec"
	"github.com/gomlx/go-charseq/sampler"
	"github.com/gomlx/gomlx/pkg/core/tensors"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Model predicts the next-symbol probabilities, one per vocabulary symbol, given the one-hot
// encoded text so far (a Float32 tensor shaped [numRunes, V]).
type Model interface {
	Predict(ctx context.Context, input *tensors.Tensor) ([]float64, error)
}

// ModelFunc adapts a function to the Model interface.
type ModelFunc func(ctx context.Context, input *tensors.Tensor) ([]float64, error)

// Predict implements Model.
func (f ModelFunc) Predict(ctx context.Context, input *tensors.Tensor) ([]float64, error) {
	return f(ctx, input)
}

// Config for Loop.Run.
type Config struct {
	// Steps is the number of symbols to generate.
	Steps int

	// Temperature used to reshape the model probabilities, see sampler.Reshape.
	Temperature float64

	// DoSample selects a random draw from the reshaped probabilities; if false the most likely
	// symbol is taken.
	DoSample bool

	// Window, if > 0, limits the text fed to the model to its last Window runes.
	Window int
}

// DefaultConfig generates 20 symbols sampling with temperature 1 over the full text.
func DefaultConfig() Config {
	return Config{
		Steps:       20,
		Temperature: 1.0,
		DoSample:    true,
	}
}

// Loop drives a Model with a Codec and a Sampler sharing the same vocabulary.
type Loop struct {
	codec   *codec.Codec
	sampler *sampler.Sampler
	model   Model
}

// New creates a generation Loop. codec and sampler must use the same vocabulary.
func New(c *codec.Codec, s *sampler.Sampler, model Model) (*Loop, error) {
	if c.Vocabulary() != s.Vocabulary() && c.Vocabulary().String() != s.Vocabulary().String() {
		return nil, errors.Errorf("codec vocabulary %q and sampler vocabulary %q differ",
			c.Vocabulary(), s.Vocabulary())
	}
	return &Loop{codec: c, sampler: s, model: model}, nil
}

// Run generates cfg.Steps symbols after seed, and returns seed followed by them.
//
// The model always gets at least one symbol: an empty seed with cfg.Steps > 0 fails at step 0
// (codec.EncodeTensor rejects empty text). With cfg.Steps == 0 any seed, empty included, is
// returned unchanged.
//
// The context is checked before every step. Errors from the codec, the model and the sampler are
// returned wrapped with the step where they happened.
func (l *Loop) Run(ctx context.Context, seed string, cfg Config) (string, error) {
	if cfg.Steps < 0 {
		return "", api.NewDomainError(api.ErrNegativeSteps, float64(cfg.Steps), -1)
	}
	text := []rune(seed)
	var generated strings.Builder
	for step := range cfg.Steps {
		if err := ctx.Err(); err != nil {
			return "", errors.Wrapf(err, "generation interrupted at step %d", step)
		}
		window := text
		if cfg.Window > 0 && len(window) > cfg.Window {
			window = window[len(window)-cfg.Window:]
		}
		input, err := l.codec.EncodeTensor(string(window))
		if err != nil {
			return "", errors.Wrapf(err, "failed to encode input at step %d", step)
		}
		probabilities, err := l.model.Predict(ctx, input)
		if err != nil {
			return "", errors.Wrapf(err, "model failed at step %d", step)
		}
		symbol, err := l.sampler.Pick(probabilities, cfg.Temperature, cfg.DoSample)
		if err != nil {
			return "", errors.Wrapf(err, "failed to pick symbol at step %d", step)
		}
		text = append(text, symbol)
		generated.WriteRune(symbol)
		klog.V(1).Infof("generate: step %d picked %q", step, symbol)
	}
	klog.V(1).Infof("generate: %q + %q", seed, generated.String())
	return string(text), nil
}
