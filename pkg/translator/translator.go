/*
Package translator turns raw typed input into ranked candidate phrases.

Query segments the input into a syllable graph, enumerates matching phrases
from the dictionary, and, when no phrase covers the whole input, synthesizes a
best-effort sentence over the word graph. Per-position lookup state is cached
across keystrokes: on each new input only the paths touching fresh graph
edges are re-queried, everything before the divergence point is reused.

A translator is owned by one session and driven from one goroutine; the
dictionary behind it is shared read-only.
*/
package translator

import (
	"github.com/charmbracelet/log"

	"github.com/cantoboard/rimekit/internal/utils"
	"github.com/cantoboard/rimekit/pkg/config"
	"github.com/cantoboard/rimekit/pkg/dictionary"
	"github.com/cantoboard/rimekit/pkg/poet"
	"github.com/cantoboard/rimekit/pkg/prism"
	"github.com/cantoboard/rimekit/pkg/syllabifier"
	"github.com/cantoboard/rimekit/pkg/syllable"
	"github.com/cantoboard/rimekit/pkg/vocab"
)

// Segment is the span of the composition the query covers.
type Segment struct {
	Start int
	End   int
}

// Translator answers queries against one dictionary with one set of options.
type Translator struct {
	dict      *dictionary.Dictionary
	opts      config.TranslatorConfig
	poet      *poet.Poet
	corrector *prism.Corrector
	ctx       *dictionary.SearchContext
}

// New returns a translator over dict with opts; a zero MaxHomophones or
// MaxCorrections and an empty Delimiters fall back to the defaults, every
// other option is taken as given.
func New(dict *dictionary.Dictionary, opts config.TranslatorConfig) *Translator {
	defaults := config.DefaultConfig().Translator
	if opts.MaxHomophones <= 0 {
		opts.MaxHomophones = defaults.MaxHomophones
	}
	if opts.MaxCorrections <= 0 {
		opts.MaxCorrections = defaults.MaxCorrections
	}
	if opts.Delimiters == "" {
		opts.Delimiters = defaults.Delimiters
	}
	ctx := dictionary.NewSearchContext()
	ctx.DisableIncrementalSearch = opts.DisableIncrementalSearch
	return &Translator{
		dict: dict,
		opts: opts,
		poet: poet.New(),
		ctx:  ctx,
	}
}

// Options returns the effective options.
func (t *Translator) Options() config.TranslatorConfig { return t.opts }

// Reset drops the cached search state, typically after a commit.
func (t *Translator) Reset() {
	t.ctx.Reset()
}

// Query returns a lazy iterator of candidates for input. Failures of any kind
// reduce to an empty translation.
func (t *Translator) Query(input string, seg Segment) Translation {
	if t.dict == nil || !t.dict.Loaded() {
		return Empty()
	}
	if !utils.IsValidInput(input, t.opts.Delimiters) {
		return Empty()
	}

	s := syllabifier.New(t.opts.Delimiters, t.opts.EnableCompletion, t.opts.StrictSpelling)
	// scanning the syllabary for typos of a held-down key is wasted work
	if t.opts.EnableCorrection && !utils.IsRepetitive(input) {
		s.EnableCorrection(t.correctorFor())
	}
	graph, consumed := s.BuildGraph(input, t.dict.Prism())
	if consumed == 0 {
		return Empty()
	}
	log.Debugf("query %q: interpreted %d of %d bytes", input, consumed, len(input))

	st := &scriptTranslation{
		tr:       t,
		input:    input,
		start:    seg.Start,
		graph:    graph,
		consumed: consumed,
	}
	if !st.evaluate() {
		return Empty()
	}
	return newDistinct(st)
}

func (t *Translator) correctorFor() *prism.Corrector {
	if t.corrector == nil {
		t.corrector = prism.NewCorrector(t.dict.Prism().Syllabary())
	}
	return t.corrector
}

// lookupWords is the incremental sentence-building hook: it refreshes the
// cached word graph for input, issuing one lookup per edge start position and
// merging the results. The returned graph is the context's cache itself.
func (t *Translator) lookupWords(g *syllable.Graph, input string) vocab.WordGraph {
	t.ctx.Update(input, t.opts.EnableCompletion)
	words := t.ctx.PrevWords
	pruneStale(words, g)
	for _, start := range g.SortedStarts() {
		row, cached := words[start]
		if row == nil {
			row = make(map[int]vocab.DictEntryList)
			words[start] = row
		}
		var collector dictionary.Collector
		if cached {
			collector = t.dict.LookupIncremental(g, start, t.ctx)
		} else {
			// cache miss: recompute the whole row
			collector = t.dict.Lookup(g, start)
		}
		enrollEntries(row, collector, t.opts.MaxHomophones)
	}
	t.ctx.Remember(input, g)
	return words
}

// enrollEntries merges a lookup result into one cache row, capping the
// homophones kept per end position.
func enrollEntries(row map[int]vocab.DictEntryList, collector dictionary.Collector, maxHomophones int) {
	for _, end := range collector.Ends() {
		it := collector[end]
		homophones := row[end]
		for len(homophones) < maxHomophones && !it.Exhausted() {
			homophones = append(homophones, it.Peek())
			if !it.Next() {
				break
			}
		}
		row[end] = homophones
	}
}

// pruneStale removes cached entries whose code no longer syllabifies between
// its positions in the new graph. Re-segmentation can disconnect a span even
// before the divergence point.
func pruneStale(words vocab.WordGraph, g *syllable.Graph) {
	for start, row := range words {
		for end, entries := range row {
			kept := entries[:0]
			for _, entry := range entries {
				if syllabifier.SyllabifyDFS(g, entry.Code, 0, start, end, nil, nil) {
					kept = append(kept, entry)
				}
			}
			if len(kept) == 0 {
				delete(row, end)
				continue
			}
			row[end] = kept
		}
	}
}
