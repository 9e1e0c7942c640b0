/*
Package syllable models the segmentation graph built over raw input.

The graph is a DAG over byte positions of the input string. Each edge spans a
plausible syllable and carries spelling properties: the spelling type, a
credibility (additive log-confidence), and whether the edge came from typo
correction. A transposed view, built once per graph, lists the outgoing
spellings of every position with longer matches first, which is the order the
phrase table walker wants.
*/
package syllable

import (
	"sort"

	"github.com/cantoboard/rimekit/pkg/vocab"
)

// SpellingType classifies how an edge's spelling matched the input. Smaller
// values dominate: Normal over Fuzzy over Abbreviation over Completion.
type SpellingType int

const (
	Normal SpellingType = iota
	Fuzzy
	Abbreviation
	Completion
	Ambiguous
)

func (t SpellingType) String() string {
	switch t {
	case Normal:
		return "normal"
	case Fuzzy:
		return "fuzzy"
	case Abbreviation:
		return "abbreviation"
	case Completion:
		return "completion"
	case Ambiguous:
		return "ambiguous"
	}
	return "invalid"
}

// SpellingProps bundles the properties of a matched spelling.
type SpellingProps struct {
	Type        SpellingType
	EndPos      int
	Credibility float64
	Tips        string
}

// EdgeProps extends SpellingProps for a graph edge.
type EdgeProps struct {
	SpellingProps
	IsCorrection bool
}

// SpellingMap maps syllable id to the properties of the edge spelling it.
type SpellingMap map[vocab.SyllableID]*EdgeProps

// EndVertexMap maps an edge's end position to its spellings.
type EndVertexMap map[int]SpellingMap

// EdgeMap maps an edge's start position to its end vertices.
type EdgeMap map[int]EndVertexMap

// Posting lists the edges at one position spelling one syllable, ordered by
// descending end position so longer matches are explored first.
type Posting struct {
	ID    vocab.SyllableID
	Props []*EdgeProps
}

// SpellingIndex is the transposed view of one position's outgoing edges,
// ordered by ascending syllable id.
type SpellingIndex []Posting

// Graph is the DAG of plausible syllable segmentations of the raw input.
type Graph struct {
	Input             string
	InputLength       int
	InterpretedLength int
	Vertices          map[int]SpellingType
	Edges             EdgeMap
	Indices           []SpellingIndex
}

// NewGraph returns an empty graph over input.
func NewGraph(input string) *Graph {
	return &Graph{
		Input:       input,
		InputLength: len(input),
		Vertices:    make(map[int]SpellingType),
		Edges:       make(EdgeMap),
	}
}

// AddEdge records an edge start→end spelled by id. An existing edge for the
// same triple keeps the better (smaller) spelling type.
func (g *Graph) AddEdge(start, end int, id vocab.SyllableID, props *EdgeProps) {
	ends, ok := g.Edges[start]
	if !ok {
		ends = make(EndVertexMap)
		g.Edges[start] = ends
	}
	spellings, ok := ends[end]
	if !ok {
		spellings = make(SpellingMap)
		ends[end] = spellings
	}
	if existing, ok := spellings[id]; ok && existing.Type <= props.Type {
		return
	}
	spellings[id] = props
}

// HasEdge reports whether the triple (start, end, id) is an edge of g.
func (g *Graph) HasEdge(start, end int, id vocab.SyllableID) bool {
	if ends, ok := g.Edges[start]; ok {
		if spellings, ok := ends[end]; ok {
			_, ok := spellings[id]
			return ok
		}
	}
	return false
}

// EndsAscending returns the end positions of edges leaving start, ascending.
func (g *Graph) EndsAscending(start int) []int {
	ends := g.Edges[start]
	keys := make([]int, 0, len(ends))
	for end := range ends {
		keys = append(keys, end)
	}
	sort.Ints(keys)
	return keys
}

// SortedStarts returns the edge start positions in ascending order.
func (g *Graph) SortedStarts() []int {
	starts := make([]int, 0, len(g.Edges))
	for s := range g.Edges {
		starts = append(starts, s)
	}
	sort.Ints(starts)
	return starts
}

// SortedIDs returns the syllable ids of a spelling map in ascending order.
func SortedIDs(spellings SpellingMap) []vocab.SyllableID {
	ids := make([]vocab.SyllableID, 0, len(spellings))
	for id := range spellings {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Transpose rebuilds Indices from Edges. Ends are visited in descending order
// so that within each posting, longer matches precede shorter ones.
func (g *Graph) Transpose() {
	g.Indices = make([]SpellingIndex, g.InterpretedLength)
	for start, ends := range g.Edges {
		if start >= g.InterpretedLength {
			continue
		}
		byID := make(map[vocab.SyllableID][]*EdgeProps)
		keys := make([]int, 0, len(ends))
		for end := range ends {
			keys = append(keys, end)
		}
		sort.Sort(sort.Reverse(sort.IntSlice(keys)))
		for _, end := range keys {
			for id, props := range ends[end] {
				byID[id] = append(byID[id], props)
			}
		}
		index := make(SpellingIndex, 0, len(byID))
		for id, props := range byID {
			index = append(index, Posting{ID: id, Props: props})
		}
		sort.Slice(index, func(i, j int) bool { return index[i].ID < index[j].ID })
		g.Indices[start] = index
	}
}
