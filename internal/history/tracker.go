// Package history keeps the recency-ordered log of visited task ids.
//
// The log never holds an id twice: visiting an id that is already present
// moves it to the most recent end. Insert, promote and removal are O(1)
// thanks to a doubly linked list indexed by id.
package history

type node struct {
	id   int
	prev *node
	next *node
}

// Tracker records visits. The zero value is not usable; call New.
// Tracker is not safe for concurrent use; the task manager guards it.
type Tracker struct {
	head     *node // least recent
	tail     *node // most recent
	index    map[int]*node
	capacity int
}

// New creates a Tracker. A capacity of zero or less means unbounded;
// otherwise the least recent entry is evicted once the capacity is exceeded.
func New(capacity int) *Tracker {
	if capacity < 0 {
		capacity = 0
	}
	return &Tracker{
		index:    make(map[int]*node),
		capacity: capacity,
	}
}

// Add records a visit of id, promoting it if it was already present.
func (t *Tracker) Add(id int) {
	t.Remove(id)

	n := &node{id: id, prev: t.tail}
	if t.tail != nil {
		t.tail.next = n
	} else {
		t.head = n
	}
	t.tail = n
	t.index[id] = n

	if t.capacity > 0 && len(t.index) > t.capacity {
		t.Remove(t.head.id)
	}
}

// Remove drops id from the log. Unknown ids are ignored.
func (t *Tracker) Remove(id int) {
	n, ok := t.index[id]
	if !ok {
		return
	}

	if n.prev != nil {
		n.prev.next = n.next
	} else {
		t.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		t.tail = n.prev
	}

	n.prev, n.next = nil, nil
	delete(t.index, id)
}

// IDs returns the visited ids, least recent first.
func (t *Tracker) IDs() []int {
	ids := make([]int, 0, len(t.index))
	for n := t.head; n != nil; n = n.next {
		ids = append(ids, n.id)
	}
	return ids
}

// Len returns the number of entries.
func (t *Tracker) Len() int {
	return len(t.index)
}

// Clear empties the log.
func (t *Tracker) Clear() {
	t.head = nil
	t.tail = nil
	t.index = make(map[int]*node)
}
