package dictionary

import (
	"sort"

	"github.com/cantoboard/rimekit/pkg/table"
	"github.com/cantoboard/rimekit/pkg/vocab"
)

// chunk is a run of table entries sharing one code and path credibility.
type chunk struct {
	table       *table.Table
	code        vocab.Code
	entries     []table.Entry
	credibility float64
	cursor      int
}

func (c *chunk) exhausted() bool { return c.cursor >= len(c.entries) }

func (c *chunk) headWeight() float64 {
	if c.exhausted() {
		return 0
	}
	return c.entries[c.cursor].Weight + c.credibility
}

// EntryIterator lazily yields dictionary entries for one end position,
// heaviest chunk first. Materialized entries are shared; never mutate them.
type EntryIterator struct {
	chunks  []*chunk
	current *vocab.DictEntry
}

func (it *EntryIterator) addChunk(c *chunk) {
	if len(c.entries) > 0 {
		it.chunks = append(it.chunks, c)
	}
}

// sortChunks orders chunks by the weight of their first entry, heaviest
// first, credibility included.
func (it *EntryIterator) sortChunks() {
	sort.SliceStable(it.chunks, func(i, j int) bool {
		return it.chunks[i].headWeight() > it.chunks[j].headWeight()
	})
}

// Exhausted reports whether no entry is left.
func (it *EntryIterator) Exhausted() bool {
	if it == nil {
		return true
	}
	for _, c := range it.chunks {
		if !c.exhausted() {
			return false
		}
	}
	return true
}

// Peek materializes the current entry without advancing, or nil.
func (it *EntryIterator) Peek() *vocab.DictEntry {
	if it == nil {
		return nil
	}
	if it.current != nil {
		return it.current
	}
	for _, c := range it.chunks {
		if c.exhausted() {
			continue
		}
		e := &c.entries[c.cursor]
		code := make(vocab.Code, len(c.code))
		copy(code, c.code)
		it.current = &vocab.DictEntry{
			Text:   c.table.EntryText(e),
			Weight: e.Weight + c.credibility,
			Code:   code,
		}
		return it.current
	}
	return nil
}

// Next advances past the current entry; false when exhausted.
func (it *EntryIterator) Next() bool {
	if it == nil {
		return false
	}
	it.current = nil
	for _, c := range it.chunks {
		if !c.exhausted() {
			c.cursor++
			break
		}
	}
	return !it.Exhausted()
}

// Reset rewinds every chunk so the iterator can be replayed.
func (it *EntryIterator) Reset() {
	if it == nil {
		return
	}
	it.current = nil
	for _, c := range it.chunks {
		c.cursor = 0
	}
	it.sortChunks()
}

// Collector maps end positions to the entries terminating there.
type Collector map[int]*EntryIterator

func (c Collector) at(end int) *EntryIterator {
	it, ok := c[end]
	if !ok {
		it = &EntryIterator{}
		c[end] = it
	}
	return it
}

// Ends returns the collected end positions in ascending order.
func (c Collector) Ends() []int {
	ends := make([]int, 0, len(c))
	for end := range c {
		ends = append(ends, end)
	}
	sort.Ints(ends)
	return ends
}

// MaxEnd returns the farthest collected end position, 0 when empty.
func (c Collector) MaxEnd() int {
	maxEnd := 0
	for end := range c {
		if end > maxEnd {
			maxEnd = end
		}
	}
	return maxEnd
}
