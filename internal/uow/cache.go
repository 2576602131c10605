package uow

// Kind names one cached entity family.
type Kind string

const (
	KindUser       Kind = "user"
	KindCourse     Kind = "course"
	KindEntry      Kind = "entry"
	KindQuestion   Kind = "question"
	KindAnswer     Kind = "answer"
	KindAttachment Kind = "attachment"
)

// IdentityMap guarantees at most one in-memory instance per persisted
// row within a unit of work. Invalidate stores an explicit absent
// marker instead of deleting the key, so a later Get reports a miss and
// callers fall through to the database.
type IdentityMap struct {
	slots map[Kind]map[int64]any
}

func NewIdentityMap() *IdentityMap {
	return &IdentityMap{slots: make(map[Kind]map[int64]any)}
}

// Set stores an instance, unconditionally overwriting any previous one.
func (m *IdentityMap) Set(kind Kind, id int64, v any) {
	if m.slots[kind] == nil {
		m.slots[kind] = make(map[int64]any)
	}
	m.slots[kind][id] = v
}

// Get returns the cached instance, or false on a miss. An invalidated
// slot is a miss.
func (m *IdentityMap) Get(kind Kind, id int64) (any, bool) {
	v, ok := m.slots[kind][id]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// Invalidate clears the slot for a deleted row.
func (m *IdentityMap) Invalidate(kind Kind, id int64) {
	m.Set(kind, id, nil)
}
