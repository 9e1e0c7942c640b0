package prism

import (
	"github.com/cantoboard/rimekit/pkg/vocab"
)

// Correction is a fuzzy syllable match with its cost, a negative
// log-confidence added to the edge credibility.
type Correction struct {
	End  int
	ID   vocab.SyllableID
	Cost float64
}

// CorrectionCost is the credibility penalty of a single-typo match.
const CorrectionCost = -4.605170185988091 // log(0.01)

// Corrector suggests near-miss syllables for a stretch of input. It tolerates
// one substituted character or one transposition of adjacent characters, which
// keeps the match aligned with the typed bytes so edge endpoints stay exact.
type Corrector struct {
	syllabary vocab.Syllabary
}

// NewCorrector builds a corrector over the syllabary.
func NewCorrector(syllabary vocab.Syllabary) *Corrector {
	return &Corrector{syllabary: syllabary}
}

// Suggest returns fuzzy matches for input[from:]. Exact matches are excluded;
// those come from the prism. Results follow syllabary order.
func (c *Corrector) Suggest(input string, from int) []Correction {
	if from < 0 || from >= len(input) {
		return nil
	}
	rest := input[from:]
	var corrections []Correction
	for i, spelling := range c.syllabary {
		n := len(spelling)
		// single-character syllables are too short to correct
		if n < 2 || n > len(rest) {
			continue
		}
		typed := rest[:n]
		if typed == spelling {
			continue
		}
		if substituted(typed, spelling) || transposed(typed, spelling) {
			corrections = append(corrections, Correction{
				End:  from + n,
				ID:   vocab.SyllableID(i),
				Cost: CorrectionCost,
			})
		}
	}
	return corrections
}

// substituted reports whether a and b differ in exactly one position.
func substituted(a, b string) bool {
	diff := 0
	for i := 0; i < len(a); i++ {
		if a[i] != b[i] {
			diff++
			if diff > 1 {
				return false
			}
		}
	}
	return diff == 1
}

// transposed reports whether a equals b with one pair of adjacent characters
// swapped.
func transposed(a, b string) bool {
	i := 0
	for i < len(a) && a[i] == b[i] {
		i++
	}
	if i+1 >= len(a) || a[i] != b[i+1] || a[i+1] != b[i] {
		return false
	}
	return a[i+2:] == b[i+2:]
}
