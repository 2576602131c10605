package uow

import "sort"

// DirtySet collects the ids of courses whose recipients need a fresh
// context pushed before the unit of work ends. Repeated marks collapse.
type DirtySet struct {
	ids map[int64]struct{}
}

func NewDirtySet() *DirtySet {
	return &DirtySet{ids: make(map[int64]struct{})}
}

// Mark records a course as dirty. Idempotent.
func (d *DirtySet) Mark(courseID int64) {
	d.ids[courseID] = struct{}{}
}

func (d *DirtySet) Len() int {
	return len(d.ids)
}

// Drain returns the dirty course ids in ascending order and clears the
// set, so each course is flushed at most once per unit of work.
func (d *DirtySet) Drain() []int64 {
	ids := make([]int64, 0, len(d.ids))
	for id := range d.ids {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	d.ids = make(map[int64]struct{})
	return ids
}
