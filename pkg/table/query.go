package table

import (
	"strconv"
	"strings"

	"github.com/cantoboard/rimekit/pkg/syllable"
	"github.com/cantoboard/rimekit/pkg/vocab"
)

// Accessor yields the entries found at one node of the index. A tail accessor
// additionally exposes the extra code stored with each long entry.
type Accessor struct {
	table        *Table
	indexCode    vocab.IndexCode
	entries      []Entry
	longs        []LongEntry
	credibility  float64
	cursor       int
	newExtraOnly bool
}

// Exhausted reports whether the cursor ran past the last entry.
func (a *Accessor) Exhausted() bool {
	if a == nil {
		return true
	}
	if a.entries == nil && a.longs == nil {
		return true
	}
	return a.cursor >= a.size()
}

func (a *Accessor) size() int {
	if a.longs != nil {
		return len(a.longs)
	}
	return len(a.entries)
}

// Remaining returns how many entries are left, the current one included.
func (a *Accessor) Remaining() int {
	if a.Exhausted() {
		return 0
	}
	return a.size() - a.cursor
}

// Entry returns the current entry, or nil when exhausted.
func (a *Accessor) Entry() *Entry {
	if a.Exhausted() {
		return nil
	}
	if a.longs != nil {
		return &a.longs[a.cursor].Entry
	}
	return &a.entries[a.cursor]
}

// ExtraCode returns the extra code of the current tail entry, or nil.
func (a *Accessor) ExtraCode() []vocab.SyllableID {
	if a.longs == nil || a.cursor >= len(a.longs) {
		return nil
	}
	return a.longs[a.cursor].ExtraCode
}

// Code returns the full code of the current entry.
func (a *Accessor) Code() vocab.Code {
	code := a.indexCode.Code()
	return append(code, a.ExtraCode()...)
}

// IndexCode returns the key path that led to this accessor.
func (a *Accessor) IndexCode() vocab.IndexCode { return a.indexCode }

// Entries exposes the underlying entry list for snapshotting; callers must
// not modify it.
func (a *Accessor) Entries() []Entry { return a.entries }

// Credibility returns the accumulated credibility of the path.
func (a *Accessor) Credibility() float64 { return a.credibility }

// IsTail reports whether the accessor yields long entries with extra codes.
func (a *Accessor) IsTail() bool { return a.longs != nil }

// NewExtraOnly reports whether an incremental query requires long entries to
// traverse at least one fresh edge before being collected.
func (a *Accessor) NewExtraOnly() bool { return a.newExtraOnly }

// Next moves to the following entry; false when exhausted.
func (a *Accessor) Next() bool {
	if a.Exhausted() {
		return false
	}
	a.cursor++
	return !a.Exhausted()
}

// Reset rewinds the cursor.
func (a *Accessor) Reset() {
	if a != nil {
		a.cursor = 0
	}
}

// TableQuery walks the index level by level. It borrows the table for its
// lifetime and holds arena offsets only.
type TableQuery struct {
	table       *Table
	level       int
	indexCode   vocab.IndexCode
	credibility []float64
	lv2, lv3    int32
	lv4         int32
}

// NewQuery returns a query positioned at the index root.
func (t *Table) NewQuery() *TableQuery {
	q := &TableQuery{table: t}
	q.Reset()
	return q
}

// Reset returns the query to the root.
func (q *TableQuery) Reset() {
	q.level = 0
	q.indexCode.Clear()
	q.credibility = q.credibility[:0]
	q.credibility = append(q.credibility, 0)
	q.lv2, q.lv3, q.lv4 = noNextLevel, noNextLevel, noNextLevel
}

// Level returns the current depth, 0 at the root.
func (q *TableQuery) Level() int { return q.level }

// IndexCode returns the path walked so far.
func (q *TableQuery) IndexCode() vocab.IndexCode { return q.indexCode }

func (q *TableQuery) clone() *TableQuery {
	dup := &TableQuery{
		table:     q.table,
		level:     q.level,
		indexCode: q.indexCode,
		lv2:       q.lv2,
		lv3:       q.lv3,
		lv4:       q.lv4,
	}
	dup.credibility = append(dup.credibility, q.credibility...)
	return dup
}

// walk descends the arena offsets one level without touching the code.
func (q *TableQuery) walk(id vocab.SyllableID) bool {
	switch q.level {
	case 0:
		if id < 0 || int(id) >= len(q.table.head) {
			return false
		}
		node := &q.table.head[id]
		if node.NextLevel == noNextLevel {
			return false
		}
		q.lv2 = node.NextLevel
	case 1:
		node := findNode(q.table.trunkAt(q.lv2), id)
		if node == nil || node.NextLevel == noNextLevel {
			return false
		}
		q.lv3 = node.NextLevel
	case 2:
		node := findNode(q.table.trunkAt(q.lv3), id)
		if node == nil || node.NextLevel == noNextLevel {
			return false
		}
		q.lv4 = node.NextLevel
	default:
		return false
	}
	return true
}

// Advance descends one level along id; false when the index has no child.
func (q *TableQuery) Advance(id vocab.SyllableID, credibility float64) bool {
	if !q.walk(id) {
		return false
	}
	q.level++
	q.indexCode.Push(id)
	q.credibility = append(q.credibility, q.credibility[len(q.credibility)-1]+credibility)
	return true
}

// Backdate ascends one level; false at the root.
func (q *TableQuery) Backdate() bool {
	if q.level == 0 {
		return false
	}
	q.level--
	if q.indexCode.Len() > q.level {
		q.indexCode.Pop()
		q.credibility = q.credibility[:len(q.credibility)-1]
	}
	return true
}

// Access returns the entries at the child node for id without descending. At
// the deepest indexed level, id must be the TailKey sentinel and the stored
// extra codes take over.
func (q *TableQuery) Access(id vocab.SyllableID, credibility float64) *Accessor {
	credibility += q.credibility[len(q.credibility)-1]
	switch q.level {
	case 0:
		if id < 0 || int(id) >= len(q.table.head) {
			return &Accessor{}
		}
		node := &q.table.head[id]
		return &Accessor{
			table:       q.table,
			indexCode:   withSyllable(q.indexCode, id),
			entries:     node.Entries,
			credibility: credibility,
		}
	case 1, 2:
		offset := q.lv2
		if q.level == 2 {
			offset = q.lv3
		}
		node := findNode(q.table.trunkAt(offset), id)
		if node == nil {
			return &Accessor{}
		}
		return &Accessor{
			table:       q.table,
			indexCode:   withSyllable(q.indexCode, id),
			entries:     node.Entries,
			credibility: credibility,
		}
	case vocab.IndexCodeMaxLength:
		longs := q.table.tailAt(q.lv4)
		if longs == nil {
			return &Accessor{}
		}
		return &Accessor{
			table:       q.table,
			indexCode:   q.indexCode,
			longs:       longs,
			credibility: credibility,
		}
	}
	return &Accessor{}
}

func withSyllable(code vocab.IndexCode, id vocab.SyllableID) vocab.IndexCode {
	code.Push(id)
	return code
}

// QueryResult collects accessors by position. Trunk-level accessors are keyed
// by the end position of their last edge; tail accessors by the position the
// extra code starts matching from.
type QueryResult map[int][]*Accessor

type queryNode struct {
	pos     int
	query   *TableQuery
	newOnly bool
}

func stateKey(pos int, code vocab.IndexCode, newOnly bool) string {
	var b strings.Builder
	b.WriteString(strconv.Itoa(pos))
	b.WriteByte('|')
	b.WriteString(code.Key())
	if newOnly {
		b.WriteByte('!')
	}
	return b.String()
}

// Query enumerates all index entries reachable from startPos by traversing
// the syllable graph and the index in parallel.
func (t *Table) Query(g *syllable.Graph, startPos int) (QueryResult, bool) {
	if g == nil || len(t.head) == 0 || startPos >= g.InterpretedLength {
		return nil, false
	}
	result := make(QueryResult)
	t.run(g, []queryNode{{pos: startPos, query: t.NewQuery()}}, nil, 0, result)
	return result, len(result) > 0
}

// QueryIncremental enumerates only the entries lying on paths from startPos
// that traverse at least one edge absent from the previous graph or ending
// past validLen. Entries on all-stale paths are already in the caller's cache.
func (t *Table) QueryIncremental(g, prev *syllable.Graph, startPos, validLen int) (QueryResult, bool) {
	if g == nil || len(t.head) == 0 || startPos >= g.InterpretedLength {
		return nil, false
	}
	if prev == nil {
		return t.Query(g, startPos)
	}
	seeds := t.collectSeeds(g, prev, startPos, validLen)
	if len(seeds) == 0 {
		return nil, false
	}
	result := make(QueryResult)
	t.run(g, seeds, prev, validLen, result)
	return result, len(result) > 0
}

// edgeIsNew decides whether an edge must be re-explored: anything ending past
// the common prefix is fresh, and so is an edge the previous graph pruned
// away but the longer input resurrected.
func edgeIsNew(prev *syllable.Graph, validLen, start, end int, id vocab.SyllableID) bool {
	if prev == nil {
		return true
	}
	return end > validLen || !prev.HasEdge(start, end, id)
}

type dfsNode struct {
	pos  int
	code vocab.IndexCode
	cred []float64
	// tap pins the position the table walk restarts from; past the indexed
	// depth it stays at the three-syllable point so tail entries resolve.
	tap int
}

// collectSeeds walks the stale region of the graph depth-first and plants a
// query at every node from which a fresh edge departs.
func (t *Table) collectSeeds(g, prev *syllable.Graph, startPos, validLen int) []queryNode {
	var seeds []queryNode
	seen := make(map[string]bool)
	seeded := make(map[string]bool)

	stack := []dfsNode{{pos: startPos, code: vocab.IndexCode{}, tap: startPos}}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		key := stateKey(node.pos, node.code, false) + "@" + strconv.Itoa(node.tap)
		if seen[key] {
			continue
		}
		seen[key] = true

		ends, ok := g.Edges[node.pos]
		if !ok {
			continue
		}
		hasNewOut := false
		for end, spellings := range ends {
			for _, id := range syllable.SortedIDs(spellings) {
				if edgeIsNew(prev, validLen, node.pos, end, id) {
					// the seeded walk explores past fresh edges by itself
					hasNewOut = true
					continue
				}
				succ := node
				succ.pos = end
				if node.code.Len() < vocab.IndexCodeMaxLength {
					succ.code.Push(id)
					succ.cred = append(succ.cred[:len(succ.cred):len(succ.cred)], spellings[id].Credibility)
					succ.tap = end
				}
				stack = append(stack, succ)
			}
		}
		if !hasNewOut {
			continue
		}
		seedKey := stateKey(node.tap, node.code, true)
		if seeded[seedKey] {
			continue
		}
		q := t.NewQuery()
		reachable := true
		for i := 0; i < node.code.Len(); i++ {
			if !q.Advance(node.code.At(i), node.cred[i]) {
				reachable = false
				break
			}
		}
		if !reachable {
			continue
		}
		seeded[seedKey] = true
		seeds = append(seeds, queryNode{pos: node.tap, query: q, newOnly: true})
	}
	return seeds
}

// run is the breadth-first walk shared by full and incremental queries. A
// newOnly node expands along fresh edges only; everything downstream of a
// fresh edge is fresh by construction and expands normally.
func (t *Table) run(g *syllable.Graph, queue []queryNode, prev *syllable.Graph, validLen int, result QueryResult) {
	visited := make(map[string]bool, len(queue))
	for _, n := range queue {
		visited[stateKey(n.pos, n.query.indexCode, n.newOnly)] = true
	}
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		if node.pos >= len(g.Indices) {
			continue
		}
		query := node.query
		if query.Level() == vocab.IndexCodeMaxLength {
			accessor := query.Access(vocab.TailKey, 0)
			if !accessor.Exhausted() {
				accessor.newExtraOnly = node.newOnly
				result[node.pos] = append(result[node.pos], accessor)
			}
			continue
		}
		for _, posting := range g.Indices[node.pos] {
			for _, props := range posting.Props {
				if node.newOnly && !edgeIsNew(prev, validLen, node.pos, props.EndPos, posting.ID) {
					continue
				}
				accessor := query.Access(posting.ID, props.Credibility)
				if !accessor.Exhausted() {
					result[props.EndPos] = append(result[props.EndPos], accessor)
				}
				if props.EndPos < g.InterpretedLength && query.Advance(posting.ID, props.Credibility) {
					key := stateKey(props.EndPos, query.indexCode, false)
					if !visited[key] {
						visited[key] = true
						queue = append(queue, queryNode{pos: props.EndPos, query: query.clone()})
					}
					query.Backdate()
				}
			}
		}
	}
}

// MatchExtraCode resolves where a tail entry's extra code lands when walked
// through the graph from pos, preferring longer spellings. It reports the end
// position, whether the walk crossed a fresh edge, and success.
func MatchExtraCode(g, prev *syllable.Graph, validLen int, extra []vocab.SyllableID, pos, depth int, usedNew bool) (int, bool, bool) {
	if depth == len(extra) {
		return pos, usedNew, true
	}
	ends := g.EndsAscending(pos)
	for i := len(ends) - 1; i >= 0; i-- {
		end := ends[i]
		spellings := g.Edges[pos][end]
		if _, ok := spellings[extra[depth]]; !ok {
			continue
		}
		fresh := usedNew || edgeIsNew(prev, validLen, pos, end, extra[depth])
		if endPos, used, ok := MatchExtraCode(g, prev, validLen, extra, end, depth+1, fresh); ok {
			return endPos, used, true
		}
	}
	return 0, false, false
}
