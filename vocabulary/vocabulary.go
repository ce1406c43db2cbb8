// Package vocabulary implements an ordered, immutable, bijective mapping between symbols (runes)
// and dense indices in [0, Size()).
package vocabulary

import (
	"strings"
	"sync"

	"github.com/gomlx/go-charseq/api"
	"github.com/pkg/errors"
)

// DefaultSymbols is the reference vocabulary: digits, lowercase ASCII letters, period, space and
// apostrophe, in this order.
const DefaultSymbols = "0123456789abcdefghijklmnopqrstuvwxyz. '"

// Vocabulary maps symbols to indices and back. It is immutable and safe for concurrent use.
type Vocabulary struct {
	symbols       []rune
	symbolToIndex map[rune]int
}

// New creates a Vocabulary from the given ordered list of symbols: symbols[i] gets index i.
//
// It returns an error if symbols is empty or has duplicates.
func New(symbols []rune) (*Vocabulary, error) {
	if len(symbols) == 0 {
		return nil, errors.Errorf("vocabulary must have at least one symbol")
	}
	v := &Vocabulary{
		symbols:       make([]rune, len(symbols)),
		symbolToIndex: make(map[rune]int, len(symbols)),
	}
	copy(v.symbols, symbols)
	for ii, symbol := range v.symbols {
		if prev, found := v.symbolToIndex[symbol]; found {
			return nil, errors.Errorf("duplicate symbol %q in vocabulary at indices %d and %d", symbol, prev, ii)
		}
		v.symbolToIndex[symbol] = ii
	}
	return v, nil
}

// FromString creates a Vocabulary whose symbols are the runes of s, in order.
func FromString(s string) (*Vocabulary, error) {
	return New([]rune(s))
}

var (
	defaultOnce  sync.Once
	defaultVocab *Vocabulary
)

// Default returns the Vocabulary built from DefaultSymbols. It's built once and shared.
func Default() *Vocabulary {
	defaultOnce.Do(func() {
		var err error
		defaultVocab, err = FromString(DefaultSymbols)
		if err != nil {
			panic(errors.Wrapf(err, "invalid default vocabulary"))
		}
	})
	return defaultVocab
}

// Size returns the number of symbols, usually referred to as V.
func (v *Vocabulary) Size() int {
	return len(v.symbols)
}

// IndexOf returns the index of symbol, or an *api.LookupError (api.ErrUnknownSymbol) if it's not
// part of the vocabulary.
func (v *Vocabulary) IndexOf(symbol rune) (int, error) {
	index, found := v.symbolToIndex[symbol]
	if !found {
		return -1, api.NewLookupError(api.ErrUnknownSymbol, symbol, -1, -1)
	}
	return index, nil
}

// SymbolOf returns the symbol at index, or an *api.LookupError (api.ErrIndexOutOfRange) if index
// is not in [0, Size()).
func (v *Vocabulary) SymbolOf(index int) (rune, error) {
	if index < 0 || index >= len(v.symbols) {
		return 0, api.NewLookupError(api.ErrIndexOutOfRange, 0, index, -1)
	}
	return v.symbols[index], nil
}

// Contains reports whether symbol is part of the vocabulary.
func (v *Vocabulary) Contains(symbol rune) bool {
	_, found := v.symbolToIndex[symbol]
	return found
}

// Symbols returns a copy of the ordered symbols.
func (v *Vocabulary) Symbols() []rune {
	symbols := make([]rune, len(v.symbols))
	copy(symbols, v.symbols)
	return symbols
}

// String returns the symbols concatenated in index order.
func (v *Vocabulary) String() string {
	var sb strings.Builder
	sb.Grow(len(v.symbols))
	for _, symbol := range v.symbols {
		sb.WriteRune(symbol)
	}
	return sb.String()
}
