// charsample picks characters from a probability vector given on the command line, and shows how
// temperature reshapes the distribution.
//
// Example:
//
//	charsample -vocab=abc -probs=0.1,0.7,0.2 -temperature=0.5 -n=10
package main

import (
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/gomlx/go-charseq/api"
	"github.com/gomlx/go-charseq/sampler"
	"github.com/gomlx/go-charseq/vocabulary"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

var (
	flagProbs       = flag.String("probs", "", "Comma-separated probabilities, one per vocabulary symbol (required).")
	flagTemperature = flag.Float64("temperature", 1.0, "Temperature used to reshape the probabilities.")
	flagSample      = flag.Bool("sample", true, "Draw from the reshaped distribution. If false, picks the most likely symbol.")
	flagN           = flag.Int("n", 1, "Number of symbols to pick.")
	flagSeed        = flag.Uint64("seed", 0, "Random seed. 0 uses a random seed.")
	flagVocab       = flag.String("vocab", vocabulary.DefaultSymbols, "Vocabulary symbols, in index order.")
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	pickStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

func main() {
	klog.InitFlags(nil)
	flag.Parse()
	if err := run(); err != nil {
		klog.Errorf("charsample failed: %+v", err)
		klog.Flush()
		os.Exit(1)
	}
}

func run() error {
	if *flagN < 0 {
		return errors.Errorf("-n must be >= 0, got %d", *flagN)
	}
	vocab, err := vocabulary.FromString(*flagVocab)
	if err != nil {
		return err
	}
	probabilities, err := parseProbabilities(*flagProbs)
	if err != nil {
		return err
	}

	var source api.Source
	if *flagSeed != 0 {
		source = rand.New(rand.NewPCG(*flagSeed, *flagSeed))
	}
	s := sampler.New(vocab, source)
	reshaped, err := s.Reshape(probabilities, *flagTemperature)
	if err != nil {
		return err
	}
	fmt.Println(titleStyle.Render(fmt.Sprintf("Temperature %g", *flagTemperature)))
	fmt.Println(distributionTable(vocab, probabilities, reshaped))

	picks := make([]rune, 0, *flagN)
	for range *flagN {
		symbol, err := s.Pick(probabilities, *flagTemperature, *flagSample)
		if err != nil {
			return err
		}
		picks = append(picks, symbol)
	}
	fmt.Printf("Picked: %s\n", pickStyle.Render(strconv.Quote(string(picks))))
	return nil
}

func parseProbabilities(value string) ([]float64, error) {
	if value == "" {
		return nil, errors.Errorf("-probs is required")
	}
	parts := strings.Split(value, ",")
	probabilities := make([]float64, len(parts))
	for ii, part := range parts {
		p, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid probability #%d %q", ii, part)
		}
		probabilities[ii] = p
	}
	return probabilities, nil
}

func distributionTable(vocab *vocabulary.Vocabulary, probabilities, reshaped []float64) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers("Index", "Symbol", "p", "Reshaped")
	for ii, symbol := range vocab.Symbols() {
		t.Row(
			strconv.Itoa(ii),
			strconv.QuoteRune(symbol),
			strconv.FormatFloat(probabilities[ii], 'g', 6, 64),
			strconv.FormatFloat(reshaped[ii], 'g', 6, 64),
		)
	}
	return t.Render()
}
