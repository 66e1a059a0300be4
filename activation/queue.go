package activation

// queue holds commands produced while the controller waits on a
// notification. The controller is driven from one goroutine, so no locking.
type queue[T any] struct {
	items []T
}

func (q *queue[T]) Push(items ...T) {
	q.items = append(q.items, items...)
}

func (q *queue[T]) Len() int { return len(q.items) }

func (q *queue[T]) Clear() { q.items = q.items[:0] }

// Drain returns all items and empties the queue.
func (q *queue[T]) Drain() []T {
	out := q.items
	q.items = nil
	return out
}
