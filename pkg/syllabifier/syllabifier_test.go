package syllabifier

import (
	"testing"

	"github.com/cantoboard/rimekit/pkg/prism"
	"github.com/cantoboard/rimekit/pkg/syllable"
	"github.com/cantoboard/rimekit/pkg/vocab"
)

var testSyllabary = vocab.Syllabary{"diu", "hai", "lou", "m", "mou", "nei", "ngo", "si", "sing"}

func buildGraph(t *testing.T, input string, enableCompletion, strictSpelling bool) (*syllable.Graph, int) {
	t.Helper()
	s := New(" '", enableCompletion, strictSpelling)
	return s.BuildGraph(input, prism.New(testSyllabary))
}

// checkInvariants verifies the structural guarantees every graph must hold.
func checkInvariants(t *testing.T, g *syllable.Graph) {
	t.Helper()
	if g.InterpretedLength > g.InputLength {
		t.Errorf("interpreted %d exceeds input %d", g.InterpretedLength, g.InputLength)
	}
	for start, ends := range g.Edges {
		for end := range ends {
			if start < 0 || start >= end || end > g.InputLength {
				t.Errorf("edge %d→%d out of bounds", start, end)
			}
			if _, ok := g.Vertices[end]; !ok {
				t.Errorf("edge end %d missing from vertices", end)
			}
		}
	}
}

func TestBuildGraphFullParse(t *testing.T) {
	g, consumed := buildGraph(t, "diuneilou", false, false)
	checkInvariants(t, g)
	if consumed != 9 || g.InterpretedLength != 9 {
		t.Fatalf("consumed %d, interpreted %d, want 9", consumed, g.InterpretedLength)
	}
	for _, span := range [][2]int{{0, 3}, {3, 6}, {6, 9}} {
		if _, ok := g.Edges[span[0]][span[1]]; !ok {
			t.Errorf("missing edge %d→%d", span[0], span[1])
		}
	}
}

func TestBuildGraphBoundaries(t *testing.T) {
	testCases := []struct {
		input            string
		enableCompletion bool
		wantInterpreted  int
		description      string
	}{
		{"", false, 0, "empty input"},
		{"zzz", false, 0, "no syllable from position 0"},
		{"diun", false, 3, "trailing fragment without completion"},
		{"diun", true, 4, "trailing fragment completed"},
		{" diu", false, 4, "leading delimiter skipped"},
		{"diu nei", false, 7, "delimiter between syllables"},
		{"diuzz", false, 3, "trailing junk"},
	}
	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			g, consumed := buildGraph(t, tc.input, tc.enableCompletion, false)
			checkInvariants(t, g)
			if consumed != tc.wantInterpreted {
				t.Errorf("consumed %d, want %d", consumed, tc.wantInterpreted)
			}
			if g.InterpretedLength != tc.wantInterpreted {
				t.Errorf("interpreted %d, want %d", g.InterpretedLength, tc.wantInterpreted)
			}
		})
	}
}

func TestLeadingDelimiterEdge(t *testing.T) {
	g, _ := buildGraph(t, " diu", false, false)
	if _, ok := g.Edges[0]; ok {
		t.Error("no edge should start at the delimiter")
	}
	if _, ok := g.Edges[1][4]; !ok {
		t.Error("first edge should start after the delimiter")
	}
}

func TestCompletionEdges(t *testing.T) {
	g, _ := buildGraph(t, "diun", true, false)
	spellings, ok := g.Edges[3][4]
	if !ok {
		t.Fatal("no completion edge 3→4")
	}
	// both nei and ngo begin with n
	if len(spellings) != 2 {
		t.Errorf("completion spellings: %d, want 2", len(spellings))
	}
	for id, props := range spellings {
		if props.Type != syllable.Completion {
			t.Errorf("syllable %d type %v, want completion", id, props.Type)
		}
		if props.Credibility >= 0 {
			t.Errorf("completion must be penalized, got %v", props.Credibility)
		}
	}
	if g.Vertices[4] != syllable.Completion {
		t.Errorf("end vertex type %v, want completion", g.Vertices[4])
	}
}

func TestStrictSpellingAdmitsOnlyNormal(t *testing.T) {
	s := New(" '", true, true)
	s.EnableCorrection(prism.NewCorrector(testSyllabary))
	g, consumed := s.BuildGraph("diun", prism.New(testSyllabary))
	if consumed != 3 {
		t.Errorf("strict spelling consumed %d, want 3", consumed)
	}
	for _, ends := range g.Edges {
		for _, spellings := range ends {
			for _, props := range spellings {
				if props.Type != syllable.Normal {
					t.Errorf("non-normal edge admitted under strict spelling: %v", props.Type)
				}
			}
		}
	}
}

func TestCorrectionEdges(t *testing.T) {
	s := New(" '", false, false)
	s.EnableCorrection(prism.NewCorrector(testSyllabary))
	g, consumed := s.BuildGraph("deunei", prism.New(testSyllabary))
	if consumed != 6 {
		t.Fatalf("consumed %d, want 6", consumed)
	}
	props := g.Edges[0][3]
	if len(props) == 0 {
		t.Fatal("no corrected edge 0→3")
	}
	for _, p := range props {
		if !p.IsCorrection || p.Type != syllable.Fuzzy {
			t.Errorf("correction edge flags: correction=%v type=%v", p.IsCorrection, p.Type)
		}
	}
}

func TestPruneDeadEnds(t *testing.T) {
	syllabary := vocab.Syllabary{"a", "ab", "ba"}
	s := New(" '", false, false)
	g, consumed := s.BuildGraph("ab", prism.New(syllabary))
	if consumed != 2 {
		t.Fatalf("consumed %d, want 2", consumed)
	}
	// "a" leads to position 1, where nothing spells "b": dead end
	if _, ok := g.Edges[0][1]; ok {
		t.Error("dead-end edge 0→1 not pruned")
	}
	if _, ok := g.Edges[0][2]; !ok {
		t.Error("edge 0→2 missing")
	}

	// with one more letter, position 1 parses again via "ba"
	g, consumed = s.BuildGraph("aba", prism.New(syllabary))
	if consumed != 3 {
		t.Fatalf("consumed %d, want 3", consumed)
	}
	if _, ok := g.Edges[0][1]; !ok {
		t.Error("edge 0→1 should be back once reachable")
	}
}

func TestOverlapMarksAmbiguous(t *testing.T) {
	syllabary := vocab.Syllabary{"ab", "abc", "cd", "d"}
	s := New(" '", false, false)
	g, _ := s.BuildGraph("abcd", prism.New(syllabary))
	// ab|cd crosses abc|d at the joint 2
	if g.Vertices[2] != syllable.Ambiguous {
		t.Errorf("joint vertex type %v, want ambiguous", g.Vertices[2])
	}
	for _, props := range g.Edges[2][4] {
		if props.Credibility >= 0 {
			t.Errorf("crossing edge not penalized: %v", props.Credibility)
		}
	}
}

func TestTransposeIndices(t *testing.T) {
	syllabary := vocab.Syllabary{"m", "mo", "ou", "u"}
	s := New(" '", false, false)
	g, consumed := s.BuildGraph("mou", prism.New(syllabary))
	if consumed != 3 {
		t.Fatalf("consumed %d, want 3", consumed)
	}
	if len(g.Indices) != 3 {
		t.Fatalf("indices sized %d, want 3", len(g.Indices))
	}
	// position 0 spells both m (id 0) and mo (id 1)
	index := g.Indices[0]
	if len(index) != 2 {
		t.Fatalf("postings at 0: %d, want 2", len(index))
	}
	for i := 1; i < len(index); i++ {
		if index[i-1].ID >= index[i].ID {
			t.Error("postings not in ascending id order")
		}
	}
	wantEnds := map[vocab.SyllableID]int{0: 1, 1: 2}
	for _, posting := range index {
		if len(posting.Props) != 1 || posting.Props[0].EndPos != wantEnds[posting.ID] {
			t.Errorf("posting %d props %v", posting.ID, posting.Props)
		}
	}
}

func TestSyllabifyDFS(t *testing.T) {
	g, _ := buildGraph(t, "diunei", false, false)
	diu := vocab.SyllableID(0)
	nei := vocab.SyllableID(5)

	var spans [][2]int
	ok := SyllabifyDFS(g, vocab.Code{diu, nei}, 0, 0, 6,
		func(depth, current, next int) { spans = append(spans, [2]int{current, next}) },
		func(depth int) { spans = spans[:len(spans)-1] })
	if !ok {
		t.Fatal("code should syllabify to the end")
	}
	if len(spans) != 2 || spans[0] != [2]int{0, 3} || spans[1] != [2]int{3, 6} {
		t.Errorf("spans = %v", spans)
	}

	if SyllabifyDFS(g, vocab.Code{nei, diu}, 0, 0, 6, nil, nil) {
		t.Error("reversed code must not syllabify")
	}
	if SyllabifyDFS(g, vocab.Code{diu}, 0, 0, 6, nil, nil) {
		t.Error("short code must not reach the target")
	}
}
