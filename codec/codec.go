// Package codec converts text to one-hot matrices (and GoMLX tensors) over a fixed vocabulary,
// and back.
//
// Example:
//
//	c := codec.New(vocabulary.Default())
//	matrix, err := c.Encode("12 may 1999")
//	...
//	text, err := c.Decode(matrix)
package codec

import (
	"strings"

	"github.com/gomlx/go-charseq/api"
	"github.com/gomlx/go-charseq/vocabulary"
	"golang.org/x/text/unicode/norm"
)

// OneHotMatrix holds one row per symbol of a text. Each row has Vocabulary.Size() entries, exactly
// one of them 1 (at the symbol's index) and the others 0.
type OneHotMatrix [][]float64

// Codec encodes and decodes text with a Vocabulary. It's immutable after configuration and safe
// for concurrent use.
type Codec struct {
	vocab     *vocabulary.Vocabulary
	normalize bool
	form      norm.Form
}

// New creates a Codec for the given vocabulary.
func New(vocab *vocabulary.Vocabulary) *Codec {
	return &Codec{vocab: vocab}
}

// WithNormalization makes Encode apply the Unicode normalization form (e.g. norm.NFC) to the
// text before looking up its symbols. By default, text is looked up verbatim.
//
// It returns the Codec itself, so calls can be chained.
func (c *Codec) WithNormalization(form norm.Form) *Codec {
	c.normalize = true
	c.form = form
	return c
}

// Vocabulary used by the Codec.
func (c *Codec) Vocabulary() *vocabulary.Vocabulary {
	return c.vocab
}

// Indices returns the vocabulary index of each rune of text, in order.
//
// It fails on the first rune not in the vocabulary, with an *api.LookupError (api.ErrUnknownSymbol)
// holding the rune position.
func (c *Codec) Indices(text string) ([]int, error) {
	if c.normalize {
		text = c.form.String(text)
	}
	indices := make([]int, 0, len(text))
	for _, symbol := range text {
		index, err := c.vocab.IndexOf(symbol)
		if err != nil {
			return nil, api.NewLookupError(api.ErrUnknownSymbol, symbol, -1, len(indices))
		}
		indices = append(indices, index)
	}
	return indices, nil
}

// Encode text into a OneHotMatrix with one row per rune.
//
// Any rune not in the vocabulary fails the whole call with an *api.LookupError (api.ErrUnknownSymbol):
// symbols are never skipped or substituted.
func (c *Codec) Encode(text string) (OneHotMatrix, error) {
	indices, err := c.Indices(text)
	if err != nil {
		return nil, err
	}
	vocabSize := c.vocab.Size()
	matrix := make(OneHotMatrix, len(indices))
	for row, index := range indices {
		matrix[row] = make([]float64, vocabSize)
		matrix[row][index] = 1
	}
	return matrix, nil
}

// Decode a one-hot matrix back into text.
//
// For each row the symbol is given by the first entry exactly equal to 1. A row with no such entry
// fails with an *api.LookupError (api.ErrNoOneHotEntry): rows of probabilities must go through the
// sampler package instead. Rows whose width differs from the vocabulary size fail with
// api.ErrRowWidthMismatch.
func (c *Codec) Decode(matrix [][]float64) (string, error) {
	vocabSize := c.vocab.Size()
	var sb strings.Builder
	sb.Grow(len(matrix))
	for position, row := range matrix {
		if len(row) != vocabSize {
			return "", api.NewLookupError(api.ErrRowWidthMismatch, 0, len(row), position)
		}
		index := firstOne(row)
		if index < 0 {
			return "", api.NewLookupError(api.ErrNoOneHotEntry, 0, -1, position)
		}
		symbol, err := c.vocab.SymbolOf(index)
		if err != nil {
			return "", err
		}
		sb.WriteRune(symbol)
	}
	return sb.String(), nil
}

// firstOne returns the index of the first entry exactly equal to 1, or -1.
func firstOne(row []float64) int {
	for ii, value := range row {
		if value == 1 {
			return ii
		}
	}
	return -1
}
