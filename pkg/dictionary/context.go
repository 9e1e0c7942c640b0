package dictionary

import (
	"github.com/charmbracelet/log"

	"github.com/cantoboard/rimekit/internal/utils"
	"github.com/cantoboard/rimekit/pkg/syllable"
	"github.com/cantoboard/rimekit/pkg/vocab"
)

// SearchContext carries per-translator lookup state across keystrokes: the
// previous input, the word graph accumulated for it, and the graph it was
// segmented into. It is owned by one translator and touched only on the query
// path.
type SearchContext struct {
	Input     string
	PrevInput string
	// FromPos is the divergence point: cached state at or before it is valid.
	FromPos   int
	PrevWords vocab.WordGraph
	PrevGraph *syllable.Graph
	// DisableIncrementalSearch forces full recomputation on every keystroke;
	// the correctness oracle for testing.
	DisableIncrementalSearch bool
}

// NewSearchContext returns an empty context.
func NewSearchContext() *SearchContext {
	return &SearchContext{PrevWords: vocab.WordGraph{}}
}

// Update records the new input and invalidates cached state past the longest
// common prefix with the previous input. When nothing survives, the whole
// cache is dropped.
func (c *SearchContext) Update(input string, completionEnabled bool) {
	c.Input = input
	validLen := 0
	if !c.DisableIncrementalSearch {
		validLen = utils.LongestCommonPrefix(input, c.PrevInput)
	}
	if completionEnabled && validLen > 0 && validLen == len(c.PrevInput) {
		// the previous graph's completion edges ended at its end of input;
		// entries found through them are not valid for the longer input
		validLen--
	}
	c.FromPos = validLen
	if validLen == 0 {
		log.Debugf("search cache invalidated: input %q, prev %q", input, c.PrevInput)
		c.PrevWords = vocab.WordGraph{}
		c.PrevGraph = nil
		return
	}
	c.PrevWords.RemovePast(validLen)
}

// Remember stores the processed input and its graph for the next keystroke.
func (c *SearchContext) Remember(input string, g *syllable.Graph) {
	c.PrevInput = input
	c.PrevGraph = g
}

// Reset clears all cached state, typically on commit.
func (c *SearchContext) Reset() {
	c.Input = ""
	c.PrevInput = ""
	c.FromPos = 0
	c.PrevWords = vocab.WordGraph{}
	c.PrevGraph = nil
}
