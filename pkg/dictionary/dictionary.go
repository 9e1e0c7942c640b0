/*
Package dictionary exposes the loaded phrase table and prism behind a thin
façade.

A dictionary moves through Unloaded → Loading → Loaded → Closed and only
answers queries while Loaded; every failure path degrades to an empty result.
Lookup enumerates all entries reachable from a start position of the syllable
graph. LookupIncremental consults the caller's search context and re-explores
only paths that touch fresh edges, leaving everything else to the cached word
graph.
*/
package dictionary

import (
	"errors"

	"github.com/charmbracelet/log"

	"github.com/cantoboard/rimekit/pkg/prism"
	"github.com/cantoboard/rimekit/pkg/syllable"
	"github.com/cantoboard/rimekit/pkg/table"
	"github.com/cantoboard/rimekit/pkg/vocab"
)

// State tracks the dictionary lifecycle.
type State int

const (
	Unloaded State = iota
	Loading
	Loaded
	Closed
)

func (s State) String() string {
	switch s {
	case Unloaded:
		return "unloaded"
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Closed:
		return "closed"
	}
	return "unknown"
}

var errClosed = errors.New("dictionary is closed")

// Dictionary owns the loaded table and the prism built over its syllabary.
type Dictionary struct {
	name  string
	state State
	table *table.Table
	prism *prism.Prism
}

// New returns an unloaded dictionary.
func New(name string) *Dictionary {
	return &Dictionary{name: name}
}

// Name returns the dictionary name.
func (d *Dictionary) Name() string { return d.name }

// State returns the current lifecycle state.
func (d *Dictionary) State() State { return d.state }

// Loaded reports whether queries are accepted.
func (d *Dictionary) Loaded() bool { return d.state == Loaded }

// Load reads the table image at path and builds the prism.
func (d *Dictionary) Load(path string) error {
	if d.state == Closed {
		return errClosed
	}
	d.state = Loading
	t, err := table.Load(path)
	if err != nil {
		log.Errorf("loading dictionary %q: %v", d.name, err)
		d.state = Unloaded
		return err
	}
	d.attach(t)
	return nil
}

// Attach adopts an already-built table, e.g. one compiled in-process.
func (d *Dictionary) Attach(t *table.Table) error {
	if d.state == Closed {
		return errClosed
	}
	d.attach(t)
	return nil
}

func (d *Dictionary) attach(t *table.Table) {
	d.table = t
	d.prism = prism.New(t.Syllabary())
	d.state = Loaded
	log.Debugf("dictionary %q loaded: %d syllables", d.name, d.prism.Size())
}

// Close releases the table; the dictionary accepts no further loads.
func (d *Dictionary) Close() {
	d.table = nil
	d.prism = nil
	d.state = Closed
}

// Prism returns the syllable spelling trie, nil unless loaded.
func (d *Dictionary) Prism() *prism.Prism { return d.prism }

// Table returns the loaded phrase table, nil unless loaded.
func (d *Dictionary) Table() *table.Table { return d.table }

// SyllableByID resolves a syllable id to its spelling.
func (d *Dictionary) SyllableByID(id vocab.SyllableID) string {
	if !d.Loaded() {
		return ""
	}
	return d.table.SyllableByID(id)
}

// Decode renders a code as its syllable spellings.
func (d *Dictionary) Decode(code vocab.Code) []string {
	if !d.Loaded() || len(code) == 0 {
		return nil
	}
	syllables := make([]string, 0, len(code))
	for _, id := range code {
		s := d.table.SyllableByID(id)
		if s == "" {
			return nil
		}
		syllables = append(syllables, s)
	}
	return syllables
}

// Lookup enumerates all entries reachable from startPos of the graph.
func (d *Dictionary) Lookup(g *syllable.Graph, startPos int) Collector {
	if !d.Loaded() || g == nil {
		return nil
	}
	result, ok := d.table.Query(g, startPos)
	if !ok {
		return nil
	}
	return d.collect(g, nil, 0, result)
}

// LookupIncremental enumerates only entries on paths with at least one fresh
// edge, per the context's divergence point. It falls back to a full lookup
// when there is nothing to reuse.
func (d *Dictionary) LookupIncremental(g *syllable.Graph, startPos int, ctx *SearchContext) Collector {
	if !d.Loaded() || g == nil {
		return nil
	}
	if ctx == nil || ctx.FromPos == 0 || ctx.PrevGraph == nil || startPos > ctx.FromPos {
		return d.Lookup(g, startPos)
	}
	result, ok := d.table.QueryIncremental(g, ctx.PrevGraph, startPos, ctx.FromPos)
	if !ok {
		return nil
	}
	return d.collect(g, ctx.PrevGraph, ctx.FromPos, result)
}

// collect turns raw table accessors into per-end-position entry iterators.
// Tail accessors resolve each long entry's landing position by walking its
// extra code through the graph.
func (d *Dictionary) collect(g, prev *syllable.Graph, validLen int, result table.QueryResult) Collector {
	collector := make(Collector, len(result))
	for pos, accessors := range result {
		for _, a := range accessors {
			if a.IsTail() {
				needNew := a.NewExtraOnly()
				for ; !a.Exhausted(); a.Next() {
					end, usedNew, ok := table.MatchExtraCode(g, prev, validLen, a.ExtraCode(), pos, 0, false)
					if !ok || end == 0 {
						continue
					}
					if needNew && !usedNew {
						continue
					}
					collector.at(end).addChunk(&chunk{
						table:       d.table,
						code:        a.Code(),
						entries:     []table.Entry{*a.Entry()},
						credibility: a.Credibility(),
					})
				}
				continue
			}
			if a.Exhausted() {
				continue
			}
			collector.at(pos).addChunk(&chunk{
				table:       d.table,
				code:        a.IndexCode().Code(),
				entries:     a.Entries(),
				credibility: a.Credibility(),
			})
		}
	}
	for _, it := range collector {
		it.sortChunks()
	}
	return collector
}
