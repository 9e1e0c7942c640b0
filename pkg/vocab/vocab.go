/*
Package vocab defines the shared vocabulary model for the lookup core.

A syllable is identified by its index into an ordered Syllabary. A dictionary
phrase carries a Code, the full sequence of syllable ids spelling it; the first
up to three ids form the IndexCode, the key path into the phrase table's fast
index. Entries for phrases longer than the index keep the remainder as extra
code next to the entry.

DictEntry values are shared by pointer between the incremental cache and any
candidate holding them, and must not be mutated once they enter the cache.
*/
package vocab

import (
	"sort"
	"strconv"
	"strings"
)

// SyllableID indexes a spelling in the Syllabary.
type SyllableID int32

// IndexCodeMaxLength is the number of syllables served by the indexed levels
// of the phrase table. Longer phrases spill into tail entries.
const IndexCodeMaxLength = 3

// TailKey is the sentinel syllable id addressing tail entries at the last
// indexed level.
const TailKey SyllableID = -1

// Syllabary is the ordered sequence of syllable spellings; a SyllableID is an
// index into it. Loaded once, immutable.
type Syllabary []string

// ByID returns the spelling for id, or "" when out of range.
func (s Syllabary) ByID(id SyllableID) string {
	if id < 0 || int(id) >= len(s) {
		return ""
	}
	return s[id]
}

// Code is the full syllable path of a phrase, possibly longer than IndexCode.
type Code []SyllableID

// Index returns the bounded key path of the code.
func (c Code) Index() IndexCode {
	var ic IndexCode
	for i := 0; i < len(c) && i < IndexCodeMaxLength; i++ {
		ic.Push(c[i])
	}
	return ic
}

// Equal reports value equality.
func (c Code) Equal(other Code) bool {
	if len(c) != len(other) {
		return false
	}
	for i := range c {
		if c[i] != other[i] {
			return false
		}
	}
	return true
}

// Compare orders codes lexicographically, shorter first on ties.
func (c Code) Compare(other Code) int {
	n := len(c)
	if len(other) < n {
		n = len(other)
	}
	for i := 0; i < n; i++ {
		if c[i] != other[i] {
			if c[i] < other[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(c) < len(other):
		return -1
	case len(c) > len(other):
		return 1
	}
	return 0
}

func (c Code) String() string {
	parts := make([]string, len(c))
	for i, id := range c {
		parts[i] = strconv.Itoa(int(id))
	}
	return strings.Join(parts, ",")
}

// IndexCode is a fixed-capacity sequence of syllable ids used as the key path
// into the phrase table index. It is a value type; copies are independent.
type IndexCode struct {
	ids  [IndexCodeMaxLength]SyllableID
	size int
}

// Push appends id. Pushing past capacity is a programming error.
func (ic *IndexCode) Push(id SyllableID) {
	ic.ids[ic.size] = id
	ic.size++
}

// Pop removes and returns the last id.
func (ic *IndexCode) Pop() SyllableID {
	ic.size--
	return ic.ids[ic.size]
}

// Clear resets the code to empty.
func (ic *IndexCode) Clear() {
	ic.ids = [IndexCodeMaxLength]SyllableID{}
	ic.size = 0
}

// Len returns the number of filled slots.
func (ic IndexCode) Len() int { return ic.size }

// At returns the id at position i of the filled prefix.
func (ic IndexCode) At(i int) SyllableID { return ic.ids[i] }

// Code copies the filled prefix into a variable-length Code.
func (ic IndexCode) Code() Code {
	c := make(Code, ic.size)
	copy(c, ic.ids[:ic.size])
	return c
}

// Key returns a hashable representation; equality is value-based over the
// filled prefix.
func (ic IndexCode) Key() string {
	var b strings.Builder
	for i := 0; i < ic.size; i++ {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(int(ic.ids[i])))
	}
	return b.String()
}

// DictEntry is a dictionary phrase with its ranking weight. Weight is
// log-probability-like; ordering is by descending weight, then text.
type DictEntry struct {
	Text                string
	Comment             string
	Preedit             string
	Weight              float64
	CommitCount         int
	Code                Code
	RemainingCodeLength int
}

// Less orders entries by descending weight, then text.
func (e *DictEntry) Less(other *DictEntry) bool {
	if e.Weight != other.Weight {
		return e.Weight > other.Weight
	}
	return e.Text < other.Text
}

// DictEntryList holds shared entries; the sentence builder's working unit.
type DictEntryList []*DictEntry

// Sort orders the list by descending weight, then text.
func (l DictEntryList) Sort() {
	sort.SliceStable(l, func(i, j int) bool { return l[i].Less(l[j]) })
}

// WordGraph maps start position to end position to the entries spanning them.
type WordGraph map[int]map[int]DictEntryList

// Starts returns the start positions in ascending order.
func (g WordGraph) Starts() []int {
	starts := make([]int, 0, len(g))
	for s := range g {
		starts = append(starts, s)
	}
	sort.Ints(starts)
	return starts
}

// RemovePast drops rows starting after validLen and, within remaining rows,
// entry lists ending after validLen.
func (g WordGraph) RemovePast(validLen int) {
	for start, row := range g {
		if start > validLen {
			delete(g, start)
			continue
		}
		for end := range row {
			if end > validLen {
				delete(row, end)
			}
		}
	}
}

// Vocabulary is the build-time nested index of entries by code, keyed by
// syllable id per level; entries beyond the indexed depth live under TailKey.
type Vocabulary map[SyllableID]*VocabularyPage

// VocabularyPage holds the entries terminating at a node and the next level.
type VocabularyPage struct {
	Entries   DictEntryList
	NextLevel Vocabulary
}

// LocateEntries finds or creates the entry list for code, descending at most
// IndexCodeMaxLength levels; longer codes collapse into the TailKey page.
func (v Vocabulary) LocateEntries(code Code) *DictEntryList {
	vocabulary := v
	var page *VocabularyPage
	for i, id := range code {
		if i >= IndexCodeMaxLength {
			id = TailKey
		}
		p, ok := vocabulary[id]
		if !ok {
			p = &VocabularyPage{}
			vocabulary[id] = p
		}
		page = p
		if i >= IndexCodeMaxLength {
			break
		}
		if i+1 < len(code) {
			if p.NextLevel == nil {
				p.NextLevel = Vocabulary{}
			}
			vocabulary = p.NextLevel
		}
	}
	if page == nil {
		return nil
	}
	return &page.Entries
}

// Add inserts an entry at the location addressed by its code.
func (v Vocabulary) Add(entry *DictEntry) {
	if list := v.LocateEntries(entry.Code); list != nil {
		*list = append(*list, entry)
	}
}

// SortHomophones orders every entry list in the tree by weight.
func (v Vocabulary) SortHomophones() {
	for _, page := range v {
		page.Entries.Sort()
		if page.NextLevel != nil {
			page.NextLevel.SortHomophones()
		}
	}
}
