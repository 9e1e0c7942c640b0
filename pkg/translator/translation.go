package translator

import (
	"math"
	"sort"
	"strings"

	"github.com/cantoboard/rimekit/pkg/dictionary"
	"github.com/cantoboard/rimekit/pkg/poet"
	"github.com/cantoboard/rimekit/pkg/syllabifier"
	"github.com/cantoboard/rimekit/pkg/syllable"
	"github.com/cantoboard/rimekit/pkg/vocab"
)

// Candidate is one ranked suggestion for a span of the composition.
type Candidate struct {
	Text         string
	Comment      string
	Preedit      string
	Quality      float64
	Start        int
	End          int
	IsCorrection bool
	IsSentence   bool
	Entry        *vocab.DictEntry
}

// Translation lazily yields candidates. Peek returns the current candidate
// without consuming it; Next moves past it.
type Translation interface {
	Peek() *Candidate
	Next() bool
	Exhausted() bool
}

type emptyTranslation struct{}

func (emptyTranslation) Peek() *Candidate { return nil }
func (emptyTranslation) Next() bool       { return false }
func (emptyTranslation) Exhausted() bool  { return true }

// Empty returns a translation with no candidates.
func Empty() Translation { return emptyTranslation{} }

// scriptTranslation yields the sentence candidate first, then dictionary
// phrases by descending covered length.
type scriptTranslation struct {
	tr       *Translator
	input    string
	start    int
	graph    *syllable.Graph
	consumed int

	phrase     dictionary.Collector
	phraseEnds []int
	endIdx     int
	sentence   *poet.Sentence

	candidate   *Candidate
	prepared    bool
	corrections int
	exhausted   bool
}

func (st *scriptTranslation) evaluate() bool {
	st.phrase = st.tr.dict.Lookup(st.graph, 0)
	translatedLen := st.phrase.MaxEnd()
	st.phraseEnds = st.phrase.Ends()
	sort.Sort(sort.Reverse(sort.IntSlice(st.phraseEnds)))

	firstIsCorrection := false
	if st.tr.opts.EnableCorrection {
		if cand := st.Peek(); cand != nil {
			firstIsCorrection = cand.IsCorrection
		}
	}

	// synthesize a sentence when no phrase spans the interpreted input;
	// at least two syllables required
	if (translatedLen < st.consumed || firstIsCorrection) && len(st.graph.Edges) > 1 {
		words := st.tr.lookupWords(st.graph, st.input)
		st.sentence = st.tr.poet.MakeSentence(words, st.graph.InterpretedLength, "")
		st.prepared = false
		st.candidate = nil
	}
	return !st.checkEmpty()
}

func (st *scriptTranslation) checkEmpty() bool {
	st.exhausted = st.sentence == nil && st.endIdx >= len(st.phraseEnds)
	return st.exhausted
}

func (st *scriptTranslation) isNormalSpelling() bool {
	last := -1
	for pos := range st.graph.Vertices {
		if pos > last {
			last = pos
		}
	}
	return last >= 0 && st.graph.Vertices[last] == syllable.Normal
}

func (st *scriptTranslation) Exhausted() bool { return st.exhausted }

func (st *scriptTranslation) Peek() *Candidate {
	st.prepare()
	if st.candidate == nil {
		return nil
	}
	if st.candidate.Preedit == "" {
		st.candidate.Preedit = st.preeditString(st.candidate)
	}
	if st.candidate.Comment == "" {
		if spelling := st.originalSpelling(st.candidate); spelling != "" &&
			(st.tr.opts.AlwaysShowComments || spelling != st.candidate.Preedit) {
			st.candidate.Comment = spelling
		}
	}
	return st.candidate
}

func (st *scriptTranslation) Next() bool {
	for {
		if st.exhausted {
			return false
		}
		if st.sentence != nil {
			st.sentence = nil
			st.candidate = nil
			st.prepared = false
			return !st.checkEmpty()
		}
		if st.endIdx < len(st.phraseEnds) {
			it := st.phrase[st.phraseEnds[st.endIdx]]
			if !it.Next() {
				st.endIdx++
			}
		}
		st.candidate = nil
		st.prepared = false
		if st.checkEmpty() {
			return false
		}
		if !st.tr.opts.EnableCorrection {
			return true
		}
		cand := st.Peek()
		if cand == nil {
			return false
		}
		// budget the number of correction candidates surfaced per query
		if !cand.IsCorrection || st.corrections < st.tr.opts.MaxCorrections {
			if cand.IsCorrection {
				st.corrections++
			}
			return true
		}
	}
}

func (st *scriptTranslation) prepare() {
	if st.prepared {
		return
	}
	st.prepared = true
	if st.exhausted {
		st.candidate = nil
		return
	}
	if st.sentence != nil {
		quality := math.Exp(st.sentence.Weight)
		if !st.isNormalSpelling() {
			quality -= 0.5
		}
		st.candidate = &Candidate{
			Text:       st.sentence.Text,
			Quality:    quality,
			Start:      st.start + st.sentence.Start,
			End:        st.start + st.sentence.End,
			IsSentence: true,
			Entry: &vocab.DictEntry{
				Text:   st.sentence.Text,
				Weight: st.sentence.Weight,
				Code:   st.sentence.Code,
			},
		}
		return
	}
	for st.endIdx < len(st.phraseEnds) && st.phrase[st.phraseEnds[st.endIdx]].Exhausted() {
		st.endIdx++
	}
	if st.checkEmpty() {
		st.candidate = nil
		return
	}
	end := st.phraseEnds[st.endIdx]
	entry := st.phrase[end].Peek()
	if entry == nil {
		st.candidate = nil
		st.exhausted = true
		return
	}
	quality := math.Exp(entry.Weight)
	if !st.isNormalSpelling() {
		quality--
	}
	st.candidate = &Candidate{
		Text:         entry.Text,
		Quality:      quality,
		Start:        st.start,
		End:          st.start + end,
		IsCorrection: st.isCandidateCorrection(entry.Code, end),
		Entry:        entry,
	}
}

// preeditString renders the typed bytes backing the candidate, with syllable
// boundaries marked by the first delimiter.
func (st *scriptTranslation) preeditString(cand *Candidate) string {
	delimiters := st.tr.opts.Delimiters
	var output []byte
	var lengths []int
	ok := syllabifier.SyllabifyDFS(st.graph, cand.Entry.Code, 0, 0, cand.End-st.start,
		func(depth, current, next int) {
			lengths = append(lengths, len(output))
			if depth > 0 && len(output) > 0 &&
				strings.IndexByte(delimiters, output[len(output)-1]) < 0 {
				output = append(output, delimiters[0])
			}
			output = append(output, st.input[current:next]...)
		},
		func(depth int) {
			output = output[:lengths[len(lengths)-1]]
			lengths = lengths[:len(lengths)-1]
		})
	if !ok {
		return ""
	}
	return string(output)
}

// originalSpelling spells out the candidate's code when it is short enough
// per the spelling_hints setting.
func (st *scriptTranslation) originalSpelling(cand *Candidate) string {
	if len(cand.Entry.Code) > st.tr.opts.SpellingHints {
		return ""
	}
	syllables := st.tr.dict.Decode(cand.Entry.Code)
	if len(syllables) == 0 {
		return ""
	}
	return strings.Join(syllables, string(st.tr.opts.Delimiters[0]))
}

// isCandidateCorrection walks the graph along the candidate's code and
// reports whether any traversed edge came from typo correction.
func (st *scriptTranslation) isCandidateCorrection(code vocab.Code, end int) bool {
	if !st.tr.opts.EnableCorrection {
		return false
	}
	var stack []bool
	corrected := false
	ok := syllabifier.SyllabifyDFS(st.graph, code, 0, 0, end,
		func(depth, current, next int) {
			props := st.graph.Edges[current][next][code[depth]]
			stack = append(stack, props != nil && props.IsCorrection)
		},
		func(depth int) {
			stack = stack[:len(stack)-1]
		})
	if !ok {
		return false
	}
	for _, c := range stack {
		if c {
			corrected = true
			break
		}
	}
	return corrected
}

// distinctTranslation drops candidates whose text already appeared.
type distinctTranslation struct {
	inner Translation
	seen  map[string]bool
}

func newDistinct(inner Translation) Translation {
	return &distinctTranslation{inner: inner, seen: make(map[string]bool)}
}

func (d *distinctTranslation) Peek() *Candidate { return d.inner.Peek() }

func (d *distinctTranslation) Next() bool {
	if c := d.inner.Peek(); c != nil {
		d.seen[c.Text] = true
	}
	for d.inner.Next() {
		c := d.inner.Peek()
		if c == nil || !d.seen[c.Text] {
			return true
		}
	}
	return false
}

func (d *distinctTranslation) Exhausted() bool { return d.inner.Exhausted() }
