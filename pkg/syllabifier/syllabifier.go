/*
Package syllabifier builds the syllable graph over raw input.

A wavefront traversal from position 0 queries the prism for every syllable
spelling a prefix of the remaining input, laying down edges as it goes.
Delimiter characters advance the wavefront without creating an edge. After the
wavefront, dead-end edges are pruned against the deepest reachable position,
overlapping segmentations are penalized, and the transposed per-position index
is built for the table walker.

Building never fails: inputs with no parse yield a graph whose interpreted
length is zero.
*/
package syllabifier

import (
	"sort"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/cantoboard/rimekit/pkg/prism"
	"github.com/cantoboard/rimekit/pkg/syllable"
	"github.com/cantoboard/rimekit/pkg/vocab"
)

const (
	// completionPenalty discounts edges that guess the unfinished tail of a
	// syllable. log(0.5)
	completionPenalty = -0.6931471805599453
	// ambiguousJointPenalty discourages syllables starting at an ambiguous
	// joint between two overlapping segmentations. log(1e-10)
	ambiguousJointPenalty = -23.025850929940457
	// completionLimit caps how many trailing completions are added.
	completionLimit = 512
)

// Syllabifier segments raw input against a prism of known spellings.
type Syllabifier struct {
	delimiters       string
	enableCompletion bool
	strictSpelling   bool
	corrector        *prism.Corrector
}

// New returns a syllabifier with the given segmentation policy.
func New(delimiters string, enableCompletion, strictSpelling bool) *Syllabifier {
	return &Syllabifier{
		delimiters:       delimiters,
		enableCompletion: enableCompletion,
		strictSpelling:   strictSpelling,
	}
}

// EnableCorrection adds fuzzy matching of near-miss syllables.
func (s *Syllabifier) EnableCorrection(c *prism.Corrector) {
	s.corrector = c
}

// BuildGraph segments input against pr and returns the graph together with
// the number of interpreted bytes.
func (s *Syllabifier) BuildGraph(input string, pr *prism.Prism) (*syllable.Graph, int) {
	g := syllable.NewGraph(input)
	if len(input) == 0 || pr == nil {
		return g, 0
	}

	delimiterNext := make(map[int]bool)

	type vertex struct {
		pos int
		typ syllable.SpellingType
	}
	queue := []vertex{{0, syllable.Normal}}
	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		if existing, ok := g.Vertices[v.pos]; ok {
			// revisits only improve the best reachable type
			if v.typ < existing {
				g.Vertices[v.pos] = v.typ
			}
			continue
		}
		g.Vertices[v.pos] = v.typ
		if v.pos >= len(input) {
			continue
		}
		if strings.IndexByte(s.delimiters, input[v.pos]) >= 0 {
			delimiterNext[v.pos] = true
			queue = append(queue, vertex{v.pos + 1, v.typ})
			continue
		}
		for _, m := range pr.ExtendAll(input, v.pos) {
			end := s.absorbDelimiters(input, m.End)
			g.AddEdge(v.pos, end, m.ID, &syllable.EdgeProps{
				SpellingProps: syllable.SpellingProps{
					Type:   syllable.Normal,
					EndPos: end,
				},
			})
			queue = append(queue, vertex{end, syllable.Normal})
		}
		if s.corrector != nil && !s.strictSpelling {
			for _, c := range s.corrector.Suggest(input, v.pos) {
				end := s.absorbDelimiters(input, c.End)
				if g.HasEdge(v.pos, end, c.ID) {
					continue
				}
				g.AddEdge(v.pos, end, c.ID, &syllable.EdgeProps{
					SpellingProps: syllable.SpellingProps{
						Type:        syllable.Fuzzy,
						EndPos:      end,
						Credibility: c.Cost,
					},
					IsCorrection: true,
				})
				queue = append(queue, vertex{end, syllable.Fuzzy})
			}
		}
	}

	farthest := 0
	for pos := range g.Vertices {
		if pos > farthest {
			farthest = pos
		}
	}

	if s.enableCompletion && !s.strictSpelling && farthest < len(input) {
		if added := s.addCompletions(g, pr, farthest); added {
			farthest = len(input)
		}
	}

	g.InterpretedLength = farthest
	if farthest == 0 {
		log.Debugf("no syllable leaves position 0 of %q", input)
		return g, 0
	}

	s.prune(g, delimiterNext)
	s.checkOverlaps(g)
	g.Transpose()
	return g, g.InterpretedLength
}

// absorbDelimiters folds delimiters following a matched syllable into the
// edge's end, so the next syllable starts right after them.
func (s *Syllabifier) absorbDelimiters(input string, end int) int {
	for end < len(input) && strings.IndexByte(s.delimiters, input[end]) >= 0 {
		end++
	}
	return end
}

// addCompletions extends the unfinished trailing fragment at pos to the end
// of input for every syllable it could grow into.
func (s *Syllabifier) addCompletions(g *syllable.Graph, pr *prism.Prism, pos int) bool {
	ids := pr.CompleteAll(g.Input, pos, completionLimit)
	if len(ids) == 0 {
		return false
	}
	end := len(g.Input)
	for _, id := range ids {
		g.AddEdge(pos, end, id, &syllable.EdgeProps{
			SpellingProps: syllable.SpellingProps{
				Type:        syllable.Completion,
				EndPos:      end,
				Credibility: completionPenalty,
			},
		})
	}
	g.Vertices[end] = syllable.Completion
	return true
}

// prune removes edges that cannot take part in any parse reaching the
// interpreted length. Delimiter transitions connect positions without edges.
func (s *Syllabifier) prune(g *syllable.Graph, delimiterNext map[int]bool) {
	good := make(map[int]bool, len(g.Vertices))
	good[g.InterpretedLength] = true
	for pos := g.InterpretedLength - 1; pos >= 0; pos-- {
		if delimiterNext[pos] && good[pos+1] {
			good[pos] = true
		}
		ends, ok := g.Edges[pos]
		if !ok {
			continue
		}
		for end := range ends {
			if !good[end] {
				delete(ends, end)
			}
		}
		if len(ends) == 0 {
			delete(g.Edges, pos)
			continue
		}
		good[pos] = true
	}
	for pos := range g.Vertices {
		if pos != 0 && !good[pos] {
			delete(g.Vertices, pos)
		}
	}
}

// checkOverlaps walks every pair of crossing segmentations u→v and joint→w
// with u < joint < v < w, penalizing the syllables at the ambiguous joint
// unless one side's spelling type strictly dominates the other.
func (s *Syllabifier) checkOverlaps(g *syllable.Graph) {
	starts := g.SortedStarts()
	for _, u := range starts {
		ends := g.Edges[u]
		for v, spellings := range ends {
			long := bestType(spellings)
			for _, joint := range starts {
				if joint <= u {
					continue
				}
				if joint >= v {
					break
				}
				jointEnds, ok := g.Edges[joint]
				if !ok {
					continue
				}
				for w, crossing := range jointEnds {
					if w <= v {
						continue
					}
					if bestType(crossing) != long {
						continue
					}
					for _, props := range crossing {
						props.Credibility += ambiguousJointPenalty
					}
					g.Vertices[joint] = syllable.Ambiguous
				}
			}
		}
	}
}

func bestType(spellings syllable.SpellingMap) syllable.SpellingType {
	best := syllable.Ambiguous
	for _, props := range spellings {
		if props.Type < best {
			best = props.Type
		}
	}
	return best
}

// SyllabifyDFS walks the graph from start following code, invoking push and
// pop around each traversed edge, favoring longer spellings first. It returns
// true when the walk consumed the whole code ending exactly at target.
func SyllabifyDFS(g *syllable.Graph, code vocab.Code, depth, current, target int,
	push func(depth, current, next int), pop func(depth int)) bool {
	if depth == len(code) {
		return current == target
	}
	id := code[depth]
	ends, ok := g.Edges[current]
	if !ok {
		return false
	}
	keys := make([]int, 0, len(ends))
	for end := range ends {
		keys = append(keys, end)
	}
	// favor longer spellings
	sort.Sort(sort.Reverse(sort.IntSlice(keys)))
	for _, end := range keys {
		if end > target {
			continue
		}
		if _, ok := ends[end][id]; !ok {
			continue
		}
		if push != nil {
			push(depth, current, end)
		}
		if SyllabifyDFS(g, code, depth+1, end, target, push, pop) {
			return true
		}
		if pop != nil {
			pop(depth)
		}
	}
	return false
}
