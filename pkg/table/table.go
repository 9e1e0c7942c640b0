/*
Package table implements the immutable multi-level phrase index.

The index has four levels. Level one is a head array indexed directly by
syllable id. Levels two and three are trunk arrays sorted by syllable id and
probed by binary search. Phrases longer than three syllables hang off the
third level as tail entries carrying their extra code. Every level stores the
entries terminating there.

Nodes reference deeper levels by arena offset rather than pointer, so a
TableQuery carries plain integers and can never outlive the table it borrows.
Entry text lives in a deduplicated string table and is referenced by id.

A table is built once from a vocabulary, or loaded from its binary image, and
never mutated afterwards; it is freely shared by read-only reference.
*/
package table

import (
	"fmt"
	"sort"

	"github.com/charmbracelet/log"

	"github.com/cantoboard/rimekit/pkg/vocab"
)

// StringRef references a string in the table's string table.
type StringRef uint32

// Entry is one phrase occurrence stored in the index.
type Entry struct {
	Text   StringRef `msgpack:"t"`
	Weight float64   `msgpack:"w"`
}

// HeadNode is a level-one node, addressed directly by syllable id.
type HeadNode struct {
	Entries   []Entry `msgpack:"e"`
	NextLevel int32   `msgpack:"n"`
}

// TrunkNode is a level-two or level-three node in a sorted trunk array.
type TrunkNode struct {
	Key       vocab.SyllableID `msgpack:"k"`
	Entries   []Entry          `msgpack:"e"`
	NextLevel int32            `msgpack:"n"`
}

// LongEntry is a tail record for a phrase longer than the indexed levels.
type LongEntry struct {
	ExtraCode []vocab.SyllableID `msgpack:"x"`
	Entry     Entry              `msgpack:"e"`
}

// noNextLevel marks a node without a deeper level.
const noNextLevel = int32(-1)

// Table is the loaded phrase index.
type Table struct {
	syllabary vocab.Syllabary
	strings   []string
	head      []HeadNode
	trunks    [][]TrunkNode
	tails     [][]LongEntry

	numEntries   int
	dictChecksum uint32
}

type stringTableBuilder struct {
	strings []string
	ids     map[string]StringRef
}

func (b *stringTableBuilder) add(s string) StringRef {
	if id, ok := b.ids[s]; ok {
		return id
	}
	id := StringRef(len(b.strings))
	b.strings = append(b.strings, s)
	b.ids[s] = id
	return id
}

// Build constructs a table from a syllabary and a vocabulary tree. Entry
// lists should be pre-sorted with Vocabulary.SortHomophones.
func Build(syllabary vocab.Syllabary, vocabulary vocab.Vocabulary, numEntries int, dictChecksum uint32) (*Table, error) {
	log.Debugf("building table: %d syllables, %d entries", len(syllabary), numEntries)
	t := &Table{
		syllabary:    syllabary,
		numEntries:   numEntries,
		dictChecksum: dictChecksum,
	}
	b := &stringTableBuilder{ids: make(map[string]StringRef)}
	t.head = make([]HeadNode, len(syllabary))
	for i := range t.head {
		t.head[i].NextLevel = noNextLevel
	}
	for id, page := range vocabulary {
		if id < 0 || int(id) >= len(syllabary) {
			return nil, fmt.Errorf("syllable id %d out of syllabary range", id)
		}
		node := &t.head[id]
		node.Entries = t.buildEntries(b, page.Entries)
		node.NextLevel = noNextLevel
		if page.NextLevel != nil {
			next, err := t.buildTrunk(b, page.NextLevel, 2)
			if err != nil {
				return nil, err
			}
			node.NextLevel = next
		}
	}
	t.strings = b.strings
	return t, nil
}

// buildTrunk lays out one trunk level and returns its arena offset.
func (t *Table) buildTrunk(b *stringTableBuilder, vocabulary vocab.Vocabulary, level int) (int32, error) {
	ids := make([]vocab.SyllableID, 0, len(vocabulary))
	for id := range vocabulary {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	nodes := make([]TrunkNode, 0, len(ids))
	for _, id := range ids {
		page := vocabulary[id]
		node := TrunkNode{
			Key:       id,
			Entries:   t.buildEntries(b, page.Entries),
			NextLevel: noNextLevel,
		}
		if page.NextLevel != nil {
			if level < vocab.IndexCodeMaxLength {
				next, err := t.buildTrunk(b, page.NextLevel, level+1)
				if err != nil {
					return noNextLevel, err
				}
				node.NextLevel = next
			} else {
				next, err := t.buildTail(b, page.NextLevel)
				if err != nil {
					return noNextLevel, err
				}
				node.NextLevel = next
			}
		}
		nodes = append(nodes, node)
	}
	offset := int32(len(t.trunks))
	t.trunks = append(t.trunks, nodes)
	return offset, nil
}

// buildTail lays out the long-entry list hanging off a level-three node.
func (t *Table) buildTail(b *stringTableBuilder, vocabulary vocab.Vocabulary) (int32, error) {
	page, ok := vocabulary[vocab.TailKey]
	if !ok {
		return noNextLevel, fmt.Errorf("tail level has no %d page", vocab.TailKey)
	}
	longs := make([]LongEntry, 0, len(page.Entries))
	for _, src := range page.Entries {
		if len(src.Code) <= vocab.IndexCodeMaxLength {
			return noNextLevel, fmt.Errorf("tail entry %q has short code %v", src.Text, src.Code)
		}
		extra := make([]vocab.SyllableID, len(src.Code)-vocab.IndexCodeMaxLength)
		copy(extra, src.Code[vocab.IndexCodeMaxLength:])
		longs = append(longs, LongEntry{
			ExtraCode: extra,
			Entry:     Entry{Text: b.add(src.Text), Weight: src.Weight},
		})
	}
	offset := int32(len(t.tails))
	t.tails = append(t.tails, longs)
	return offset, nil
}

func (t *Table) buildEntries(b *stringTableBuilder, entries vocab.DictEntryList) []Entry {
	if len(entries) == 0 {
		return nil
	}
	out := make([]Entry, len(entries))
	for i, e := range entries {
		out[i] = Entry{Text: b.add(e.Text), Weight: e.Weight}
	}
	return out
}

// GetString resolves a string table reference.
func (t *Table) GetString(ref StringRef) string {
	if int(ref) >= len(t.strings) {
		return ""
	}
	return t.strings[ref]
}

// EntryText resolves the text of an entry.
func (t *Table) EntryText(e *Entry) string {
	return t.GetString(e.Text)
}

// SyllableByID returns the spelling for a syllable id, or "".
func (t *Table) SyllableByID(id vocab.SyllableID) string {
	return t.syllabary.ByID(id)
}

// Syllabary returns the table's syllabary.
func (t *Table) Syllabary() vocab.Syllabary { return t.syllabary }

// NumEntries returns the number of entries the table was built with.
func (t *Table) NumEntries() int { return t.numEntries }

// DictChecksum returns the checksum of the source dictionary.
func (t *Table) DictChecksum() uint32 { return t.dictChecksum }

// QueryWords returns an accessor over the single-syllable entries of id.
func (t *Table) QueryWords(id vocab.SyllableID) *Accessor {
	q := t.NewQuery()
	return q.Access(id, 0)
}

// QueryPhrases returns an accessor over the entries stored exactly at code.
// For codes longer than the indexed levels it returns every tail entry under
// the first three syllables; the remaining syllables are not matched.
func (t *Table) QueryPhrases(code vocab.Code) *Accessor {
	if len(code) == 0 {
		return &Accessor{}
	}
	q := t.NewQuery()
	for i := 0; i < vocab.IndexCodeMaxLength; i++ {
		if len(code) == i+1 {
			return q.Access(code[i], 0)
		}
		if !q.Advance(code[i], 0) {
			return &Accessor{}
		}
	}
	return q.Access(vocab.TailKey, 0)
}

func (t *Table) trunkAt(offset int32) []TrunkNode {
	if offset < 0 || int(offset) >= len(t.trunks) {
		return nil
	}
	return t.trunks[offset]
}

func (t *Table) tailAt(offset int32) []LongEntry {
	if offset < 0 || int(offset) >= len(t.tails) {
		return nil
	}
	return t.tails[offset]
}

// findNode binary-searches a trunk array for key.
func findNode(nodes []TrunkNode, key vocab.SyllableID) *TrunkNode {
	i := sort.Search(len(nodes), func(i int) bool { return nodes[i].Key >= key })
	if i < len(nodes) && nodes[i].Key == key {
		return &nodes[i]
	}
	return nil
}
