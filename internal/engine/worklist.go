package engine

import (
	"slices"

	"github.com/vk/bootcfg/internal/resource"
)

// worklist is the deque of pending seeds. Children are pushed to the front,
// so traversal is depth-first: a child is fully resolved before the engine
// returns to siblings further back in the queue.
type worklist struct {
	items []resource.Seed
}

func newWorklist(seeds ...resource.Seed) *worklist {
	return &worklist{items: slices.Clone(seeds)}
}

func (w *worklist) pushFront(s resource.Seed) {
	w.items = slices.Insert(w.items, 0, s)
}

func (w *worklist) popFront() (resource.Seed, bool) {
	if len(w.items) == 0 {
		return nil, false
	}
	s := w.items[0]
	w.items = w.items[1:]
	return s, true
}

func (w *worklist) empty() bool {
	return len(w.items) == 0
}
