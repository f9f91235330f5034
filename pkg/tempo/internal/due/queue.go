// Package due keeps items ordered by the time they fall due. Items due at
// the same instant come out in the order they were pushed.
package due

import (
	"container/heap"
	"time"
)

// Item is anything with a due time.
type Item interface {
	DueAt() time.Time
}

type slot[T Item] struct {
	item T
	seq  uint64
}

type slots[T Item] []slot[T]

func (s slots[T]) Len() int { return len(s) }
func (s slots[T]) Less(i, j int) bool {
	a, b := s[i].item.DueAt(), s[j].item.DueAt()
	if a.Equal(b) {
		return s[i].seq < s[j].seq
	}
	return a.Before(b)
}
func (s slots[T]) Swap(i, j int) { s[i], s[j] = s[j], s[i] }

func (s *slots[T]) Push(x any) {
	*s = append(*s, x.(slot[T]))
}

func (s *slots[T]) Pop() any {
	old := *s
	n := len(old)
	x := old[n-1]
	*s = old[:n-1]
	return x
}

// Queue is a min-heap of items. It is not safe for concurrent use.
type Queue[T Item] struct {
	s   slots[T]
	seq uint64
}

func (q *Queue[T]) Len() int {
	return len(q.s)
}

func (q *Queue[T]) Push(item T) {
	q.seq++
	heap.Push(&q.s, slot[T]{item: item, seq: q.seq})
}

// Peek returns the earliest item without removing it.
func (q *Queue[T]) Peek() (T, bool) {
	if len(q.s) == 0 {
		var zero T
		return zero, false
	}
	return q.s[0].item, true
}

// Pop removes and returns the earliest item. Panics if the queue is empty.
func (q *Queue[T]) Pop() T {
	return heap.Pop(&q.s).(slot[T]).item
}

// PopDue removes and returns the earliest item if it is due at or before now.
func (q *Queue[T]) PopDue(now time.Time) (T, bool) {
	next, ok := q.Peek()
	if !ok || next.DueAt().After(now) {
		var zero T
		return zero, false
	}
	return q.Pop(), true
}

// RemoveFunc drops every item match reports true for and returns how many
// were dropped.
func (q *Queue[T]) RemoveFunc(match func(T) bool) int {
	removed := 0
	for i := 0; i < len(q.s); {
		if match(q.s[i].item) {
			heap.Remove(&q.s, i)
			removed++
			continue
		}
		i++
	}
	return removed
}
