/*
Package prism implements the prefix trie of known syllable spellings that
fronts the syllable graph builder.

The trie is a go-patricia radix trie keyed by spelling, holding the syllable
id. ExtendAll answers "which syllables spell a prefix of the remaining input",
CompleteAll answers "which syllables could the trailing fragment grow into".
Both are read-only after construction and safe to share across sessions.
*/
package prism

import (
	"sort"

	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"

	"github.com/cantoboard/rimekit/pkg/vocab"
)

// Match is one spelling matched at some position of the input.
type Match struct {
	End int
	ID  vocab.SyllableID
}

// Prism is the syllable spelling trie.
type Prism struct {
	trie      *patricia.Trie
	syllabary vocab.Syllabary
}

// New builds a prism over the syllabary; the id of each spelling is its index.
func New(syllabary vocab.Syllabary) *Prism {
	p := &Prism{
		trie:      patricia.NewTrie(),
		syllabary: syllabary,
	}
	for i, spelling := range syllabary {
		if spelling == "" {
			log.Warnf("skipping empty spelling at syllable id %d", i)
			continue
		}
		p.trie.Insert(patricia.Prefix(spelling), vocab.SyllableID(i))
	}
	return p
}

// Syllabary returns the backing syllabary.
func (p *Prism) Syllabary() vocab.Syllabary { return p.syllabary }

// Size returns the number of spellings in the prism.
func (p *Prism) Size() int { return len(p.syllabary) }

// ExtendAll returns every syllable whose spelling is a prefix of input[from:].
// Matches are ordered by ascending end position.
func (p *Prism) ExtendAll(input string, from int) []Match {
	if from < 0 || from >= len(input) {
		return nil
	}
	var matches []Match
	err := p.trie.VisitPrefixes(patricia.Prefix(input[from:]), func(prefix patricia.Prefix, item patricia.Item) error {
		matches = append(matches, Match{
			End: from + len(prefix),
			ID:  item.(vocab.SyllableID),
		})
		return nil
	})
	if err != nil {
		log.Errorf("visiting prism prefixes: %v", err)
		return nil
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].End < matches[j].End })
	return matches
}

// CompleteAll returns the syllables whose spelling strictly extends
// input[from:], i.e. the typed fragment is an incomplete syllable. Results
// are ordered by ascending id. limit caps the result; 0 means no cap.
func (p *Prism) CompleteAll(input string, from int, limit int) []vocab.SyllableID {
	if from < 0 || from >= len(input) {
		return nil
	}
	fragment := input[from:]
	var ids []vocab.SyllableID
	err := p.trie.VisitSubtree(patricia.Prefix(fragment), func(prefix patricia.Prefix, item patricia.Item) error {
		if len(prefix) == len(fragment) {
			// the exact match belongs to ExtendAll
			return nil
		}
		ids = append(ids, item.(vocab.SyllableID))
		return nil
	})
	if err != nil {
		log.Errorf("visiting prism subtree: %v", err)
		return nil
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	return ids
}

// HasPrefix reports whether any spelling starts with s.
func (p *Prism) HasPrefix(s string) bool {
	return p.trie.MatchSubtree(patricia.Prefix(s))
}
