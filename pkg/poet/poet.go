/*
Package poet scores sentences over the word graph.

The model is a best-path dynamic program: for every position reachable from
the start, keep the heaviest partial sentence ending there, where a sentence's
weight is the sum of its entries' log-probability-like weights. A sentence is
produced only when some path covers the whole interpreted range.
*/
package poet

import (
	"sort"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/cantoboard/rimekit/pkg/vocab"
)

// Sentence is a synthesized multi-word candidate.
type Sentence struct {
	Entries []*vocab.DictEntry
	Text    string
	Preedit string
	Weight  float64
	Start   int
	End     int
	Code    vocab.Code
}

// Poet builds the best-scoring sentence from a word graph.
type Poet struct{}

// New returns a poet.
func New() *Poet {
	return &Poet{}
}

type partial struct {
	weight  float64
	entries []*vocab.DictEntry
}

// MakeSentence returns the heaviest sentence covering [0, interpretedLength),
// or nil when no path does. precedingText is accepted for contextual models;
// this scorer ignores it.
func (p *Poet) MakeSentence(words vocab.WordGraph, interpretedLength int, precedingText string) *Sentence {
	if len(words) == 0 || interpretedLength == 0 {
		return nil
	}
	best := map[int]*partial{0: {}}
	for _, start := range words.Starts() {
		from, ok := best[start]
		if !ok {
			continue
		}
		row := words[start]
		ends := make([]int, 0, len(row))
		for end := range row {
			ends = append(ends, end)
		}
		sort.Ints(ends)
		for _, end := range ends {
			for _, entry := range row[end] {
				weight := from.weight + entry.Weight
				if cur, ok := best[end]; ok && cur.weight >= weight {
					continue
				}
				chain := make([]*vocab.DictEntry, len(from.entries)+1)
				copy(chain, from.entries)
				chain[len(chain)-1] = entry
				best[end] = &partial{weight: weight, entries: chain}
			}
		}
	}
	final, ok := best[interpretedLength]
	if !ok || len(final.entries) == 0 {
		log.Debugf("no sentence covers %d bytes", interpretedLength)
		return nil
	}
	return assemble(final, interpretedLength)
}

func assemble(final *partial, end int) *Sentence {
	var text strings.Builder
	var code vocab.Code
	for _, entry := range final.entries {
		text.WriteString(entry.Text)
		code = append(code, entry.Code...)
	}
	return &Sentence{
		Entries: final.entries,
		Text:    text.String(),
		Weight:  final.weight,
		Start:   0,
		End:     end,
		Code:    code,
	}
}
