package util

import (
	"container/heap"
)

// util/PriorityQueue.java

/*
A PriorityQueue maintains a partial ordering of its elements such
that the least element can always be found in constant time. Put()
and Pop() require log(size) time.
*/
type PriorityQueue[T any] struct {
	items []T
	less  func(a, b T) bool
}

func NewPriorityQueue[T any](capacity int, less func(a, b T) bool) *PriorityQueue[T] {
	return &PriorityQueue[T]{items: make([]T, 0, capacity), less: less}
}

type pqHeap[T any] struct{ *PriorityQueue[T] }

func (h pqHeap[T]) Len() int           { return len(h.items) }
func (h pqHeap[T]) Less(i, j int) bool { return h.less(h.items[i], h.items[j]) }
func (h pqHeap[T]) Swap(i, j int)      { h.items[i], h.items[j] = h.items[j], h.items[i] }
func (h pqHeap[T]) Push(x interface{}) { h.items = append(h.items, x.(T)) }
func (h pqHeap[T]) Pop() interface{} {
	n := len(h.items)
	ans := h.items[n-1]
	var zero T
	h.items[n-1] = zero
	h.items = h.items[0 : n-1]
	return ans
}

func (pq *PriorityQueue[T]) Len() int {
	return len(pq.items)
}

// Adds an element in log(size) time.
func (pq *PriorityQueue[T]) Put(item T) {
	heap.Push(pqHeap[T]{pq}, item)
}

// Returns the least element, or false if the queue is empty.
func (pq *PriorityQueue[T]) Top() (T, bool) {
	if len(pq.items) == 0 {
		var zero T
		return zero, false
	}
	return pq.items[0], true
}

// Removes and returns the least element, or false if the queue is empty.
func (pq *PriorityQueue[T]) Pop() (T, bool) {
	if len(pq.items) == 0 {
		var zero T
		return zero, false
	}
	return heap.Pop(pqHeap[T]{pq}).(T), true
}

// Should be called when the top element changed its ordering key.
func (pq *PriorityQueue[T]) UpdateTop() T {
	heap.Fix(pqHeap[T]{pq}, 0)
	return pq.items[0]
}

// Removes all entries from the queue.
func (pq *PriorityQueue[T]) Clear() {
	var zero T
	for i := range pq.items {
		pq.items[i] = zero
	}
	pq.items = pq.items[:0]
}
