package pipeline

import (
	"sort"

	"github.com/nmishr/recflow/pkg/record"
)

// completionKind says how an in-flight item finished.
type completionKind int

const (
	kindCreated completionKind = iota
	kindExisting
	kindDropped
)

// completion is the outcome of one in-flight item, tagged with the index
// its line had in the input sequence.
type completion struct {
	index int
	kind  completionKind
	rec   record.Record
	err   error
}

// collector reassembles out-of-order completions into input order. It is
// owned by a single goroutine; completion order never influences output
// order, only the input index does.
type collector struct {
	created map[int]record.Record
	counts  struct {
		created  int
		existing int
		dropped  int
	}
}

func newCollector() *collector {
	return &collector{created: make(map[int]record.Record)}
}

func (c *collector) put(cp completion) {
	switch cp.kind {
	case kindCreated:
		c.created[cp.index] = cp.rec
		c.counts.created++
	case kindExisting:
		c.counts.existing++
	case kindDropped:
		c.counts.dropped++
	}
}

// sequence returns the created records ordered by input index.
func (c *collector) sequence() []record.Record {
	indexes := make([]int, 0, len(c.created))
	for i := range c.created {
		indexes = append(indexes, i)
	}
	sort.Ints(indexes)

	out := make([]record.Record, 0, len(indexes))
	for _, i := range indexes {
		out = append(out, c.created[i])
	}
	return out
}
