package prism

import (
	"testing"

	"github.com/cantoboard/rimekit/pkg/vocab"
)

func testSyllabary() vocab.Syllabary {
	return vocab.Syllabary{"diu", "hai", "lou", "m", "mou", "nei", "ngo", "si", "sing"}
}

func TestExtendAll(t *testing.T) {
	p := New(testSyllabary())

	testCases := []struct {
		input       string
		from        int
		wantEnds    []int
		description string
	}{
		{"diuneilou", 0, []int{3}, "single match at start"},
		{"diuneilou", 3, []int{6}, "match mid input"},
		{"mou", 0, []int{1, 3}, "nested spellings both match"},
		{"diuneilou", 8, nil, "no syllable starts with the tail"},
		{"diu", 3, nil, "from at end of input"},
	}
	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			matches := p.ExtendAll(tc.input, tc.from)
			if len(matches) != len(tc.wantEnds) {
				t.Fatalf("got %d matches, want %d: %v", len(matches), len(tc.wantEnds), matches)
			}
			for i, m := range matches {
				if m.End != tc.wantEnds[i] {
					t.Errorf("match %d ends at %d, want %d", i, m.End, tc.wantEnds[i])
				}
				spelled := testSyllabary().ByID(m.ID)
				if spelled != tc.input[tc.from:m.End] {
					t.Errorf("match %d spells %q over %q", i, spelled, tc.input[tc.from:m.End])
				}
			}
		})
	}
}

func TestCompleteAll(t *testing.T) {
	p := New(testSyllabary())

	// "s" can grow into si and sing
	ids := p.CompleteAll("s", 0, 0)
	if len(ids) != 2 {
		t.Fatalf("completions of s: %v", ids)
	}
	// "si" is itself a syllable; only the strict extension remains
	ids = p.CompleteAll("si", 0, 0)
	if len(ids) != 1 || testSyllabary().ByID(ids[0]) != "sing" {
		t.Fatalf("completions of si: %v", ids)
	}
	if got := p.CompleteAll("s", 0, 1); len(got) != 1 {
		t.Errorf("limit not applied: %v", got)
	}
	if got := p.CompleteAll("zz", 0, 0); got != nil {
		t.Errorf("impossible fragment completed: %v", got)
	}
}

func TestHasPrefix(t *testing.T) {
	p := New(testSyllabary())
	if !p.HasPrefix("ng") {
		t.Error("ng should prefix ngo")
	}
	if p.HasPrefix("x") {
		t.Error("x prefixes nothing")
	}
}
