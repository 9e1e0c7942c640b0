package dictionary

import (
	"path/filepath"
	"testing"

	"github.com/cantoboard/rimekit/pkg/syllabifier"
	"github.com/cantoboard/rimekit/pkg/syllable"
	"github.com/cantoboard/rimekit/pkg/table"
	"github.com/cantoboard/rimekit/pkg/vocab"
)

// test syllabary: diu=0 hai=1 lou=2 m=3 mou=4 nei=5 ngo=6 si=7 sing=8
func testSyllabary() vocab.Syllabary {
	return vocab.Syllabary{"diu", "hai", "lou", "m", "mou", "nei", "ngo", "si", "sing"}
}

func buildTestDict(t testing.TB) *Dictionary {
	t.Helper()
	vocabulary := vocab.Vocabulary{}
	entries := []*vocab.DictEntry{
		{Text: "屌", Weight: -2, Code: vocab.Code{0}},
		{Text: "吊", Weight: -3, Code: vocab.Code{0}},
		{Text: "係", Weight: -2, Code: vocab.Code{1}},
		{Text: "老", Weight: -3, Code: vocab.Code{2}},
		{Text: "唔", Weight: -2, Code: vocab.Code{3}},
		{Text: "母", Weight: -3.5, Code: vocab.Code{4}},
		{Text: "你", Weight: -2, Code: vocab.Code{5}},
		{Text: "我", Weight: -2, Code: vocab.Code{6}},
		{Text: "屌你", Weight: -3.5, Code: vocab.Code{0, 5}},
		{Text: "唔係", Weight: -3.5, Code: vocab.Code{3, 1}},
		{Text: "老母", Weight: -4.5, Code: vocab.Code{2, 4}},
		{Text: "你老母", Weight: -5, Code: vocab.Code{5, 2, 4}},
		{Text: "屌你老", Weight: -6, Code: vocab.Code{0, 5, 2}},
		{Text: "屌你老母", Weight: -7, Code: vocab.Code{0, 5, 2, 4}},
		{Text: "屌你老母係", Weight: -9, Code: vocab.Code{0, 5, 2, 4, 1}},
	}
	for _, e := range entries {
		vocabulary.Add(e)
	}
	vocabulary.SortHomophones()
	tbl, err := table.Build(testSyllabary(), vocabulary, len(entries), 0)
	if err != nil {
		t.Fatalf("building table: %v", err)
	}
	d := New("test")
	if err := d.Attach(tbl); err != nil {
		t.Fatalf("attaching table: %v", err)
	}
	return d
}

func segment(t testing.TB, d *Dictionary, input string) *syllable.Graph {
	t.Helper()
	s := syllabifier.New(" '", false, false)
	g, _ := s.BuildGraph(input, d.Prism())
	return g
}

func collectorTexts(c Collector) map[int][]string {
	out := make(map[int][]string)
	for _, end := range c.Ends() {
		it := c[end]
		for !it.Exhausted() {
			out[end] = append(out[end], it.Peek().Text)
			if !it.Next() {
				break
			}
		}
	}
	return out
}

func TestStateMachine(t *testing.T) {
	d := New("states")
	if d.State() != Unloaded {
		t.Errorf("fresh dictionary state %v", d.State())
	}
	if c := d.Lookup(&syllable.Graph{}, 0); c != nil {
		t.Error("unloaded dictionary answered a lookup")
	}
	if err := d.Load(filepath.Join(t.TempDir(), "absent.bin")); err == nil {
		t.Error("loading a missing table should fail")
	}
	if d.State() != Unloaded {
		t.Errorf("state after failed load %v", d.State())
	}
	d.Close()
	if d.State() != Closed {
		t.Errorf("state after close %v", d.State())
	}
	if err := d.Load("anything"); err == nil {
		t.Error("closed dictionary accepted a load")
	}
}

func TestLoadFromFile(t *testing.T) {
	d := buildTestDict(t)
	path := filepath.Join(t.TempDir(), "table.bin")
	if err := d.Table().Save(path); err != nil {
		t.Fatal(err)
	}
	fresh := New("reload")
	if err := fresh.Load(path); err != nil {
		t.Fatalf("loading: %v", err)
	}
	if !fresh.Loaded() {
		t.Fatalf("state %v after load", fresh.State())
	}
	if got := fresh.SyllableByID(0); got != "diu" {
		t.Errorf("syllable 0 = %q", got)
	}
}

func TestLookup(t *testing.T) {
	d := buildTestDict(t)
	g := segment(t, d, "diuneiloumou")
	c := d.Lookup(g, 0)
	if c == nil {
		t.Fatal("lookup found nothing")
	}
	got := collectorTexts(c)

	want := map[int][]string{
		3:  {"屌", "吊"},
		6:  {"屌你"},
		9:  {"屌你老"},
		12: {"屌你老母"},
	}
	for end, texts := range want {
		if len(got[end]) != len(texts) {
			t.Fatalf("end %d: %v, want %v", end, got[end], texts)
		}
		for i := range texts {
			if got[end][i] != texts[i] {
				t.Errorf("end %d entry %d = %q, want %q", end, i, got[end][i], texts[i])
			}
		}
	}
	if c.MaxEnd() != 12 {
		t.Errorf("max end = %d", c.MaxEnd())
	}
}

func TestLookupHomophoneOrder(t *testing.T) {
	d := buildTestDict(t)
	g := segment(t, d, "diu")
	c := d.Lookup(g, 0)
	it := c[3]
	first := it.Peek()
	if first == nil || first.Text != "屌" {
		t.Fatalf("heaviest homophone first, got %v", first)
	}
	if !first.Code.Equal(vocab.Code{0}) {
		t.Errorf("entry code %v", first.Code)
	}
	it.Next()
	if second := it.Peek(); second == nil || second.Text != "吊" {
		t.Errorf("second homophone %v", second)
	}
}

func TestLookupFromMidGraph(t *testing.T) {
	d := buildTestDict(t)
	g := segment(t, d, "diuneiloumou")
	c := d.Lookup(g, 3)
	got := collectorTexts(c)
	if len(got[12]) != 1 || got[12][0] != "你老母" {
		t.Errorf("entries at 12 from start 3: %v", got[12])
	}
}

func TestLookupInvalidStart(t *testing.T) {
	d := buildTestDict(t)
	g := segment(t, d, "diu")
	if c := d.Lookup(g, 7); c != nil {
		t.Error("out-of-range start answered")
	}
}

func TestDecode(t *testing.T) {
	d := buildTestDict(t)
	got := d.Decode(vocab.Code{0, 5, 2})
	want := []string{"diu", "nei", "lou"}
	if len(got) != len(want) {
		t.Fatalf("decode = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("decode[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	if d.Decode(vocab.Code{99}) != nil {
		t.Error("unknown syllable decoded")
	}
	if d.Decode(nil) != nil {
		t.Error("empty code decoded")
	}
}

func TestEntryIteratorReset(t *testing.T) {
	d := buildTestDict(t)
	g := segment(t, d, "diu")
	c := d.Lookup(g, 0)
	it := c[3]
	first := it.Peek().Text
	it.Next()
	it.Next()
	if !it.Exhausted() {
		t.Fatal("iterator should be exhausted after two entries")
	}
	it.Reset()
	if it.Exhausted() || it.Peek().Text != first {
		t.Error("reset did not rewind the iterator")
	}
}

func TestLookupIncrementalAgainstFull(t *testing.T) {
	d := buildTestDict(t)

	prevGraph := segment(t, d, "diunei")
	g := segment(t, d, "diuneilou")

	ctx := NewSearchContext()
	ctx.PrevInput = "diunei"
	ctx.Update("diuneilou", false)
	ctx.PrevGraph = prevGraph
	if ctx.FromPos != 6 {
		t.Fatalf("divergence at %d, want 6", ctx.FromPos)
	}

	inc := d.LookupIncremental(g, 0, ctx)
	got := collectorTexts(inc)
	if len(got[9]) != 1 || got[9][0] != "屌你老" {
		t.Errorf("fresh entries at 9: %v", got[9])
	}
	for end := range got {
		if end <= 6 {
			t.Errorf("stale end %d in incremental result", end)
		}
	}

	// with no usable context the lookup degrades to a full one
	full := collectorTexts(d.Lookup(g, 0))
	cold := collectorTexts(d.LookupIncremental(g, 0, NewSearchContext()))
	if len(cold) != len(full) {
		t.Errorf("cold incremental %v differs from full %v", cold, full)
	}
}

func TestSearchContextUpdate(t *testing.T) {
	testCases := []struct {
		prev        string
		input       string
		completion  bool
		wantFromPos int
		description string
	}{
		{"", "diu", false, 0, "first input invalidates everything"},
		{"diu", "diunei", false, 3, "extension keeps the common prefix"},
		{"diu", "diunei", true, 2, "completion backs off the boundary"},
		{"diunei", "diuhai", false, 3, "divergence drops the tail"},
		{"diunei", "mou", false, 0, "no common prefix"},
	}
	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			ctx := NewSearchContext()
			ctx.PrevInput = tc.prev
			ctx.PrevGraph = &syllable.Graph{}
			ctx.PrevWords[0] = map[int]vocab.DictEntryList{3: {{Text: "x"}}}
			ctx.Update(tc.input, tc.completion)
			if ctx.FromPos != tc.wantFromPos {
				t.Errorf("FromPos = %d, want %d", ctx.FromPos, tc.wantFromPos)
			}
			if tc.wantFromPos == 0 {
				if len(ctx.PrevWords) != 0 || ctx.PrevGraph != nil {
					t.Error("full invalidation left state behind")
				}
			}
		})
	}
}

func TestSearchContextDisabled(t *testing.T) {
	ctx := NewSearchContext()
	ctx.DisableIncrementalSearch = true
	ctx.PrevInput = "diu"
	ctx.Update("diunei", false)
	if ctx.FromPos != 0 {
		t.Errorf("disabled context kept FromPos %d", ctx.FromPos)
	}
}

func TestPrismBuiltFromSyllabary(t *testing.T) {
	d := buildTestDict(t)
	matches := d.Prism().ExtendAll("diu", 0)
	if len(matches) != 1 || matches[0].ID != 0 {
		t.Errorf("prism matches: %v", matches)
	}
	if d.Prism().Size() != len(testSyllabary()) {
		t.Errorf("prism size %d", d.Prism().Size())
	}
}
