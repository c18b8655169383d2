// Package crawl — FIFO queue with deduplication.
// Maintains a visited set so the same file or directory is handled once,
// even when reached through different relative paths or symlinks.
package crawl

// Queue is a FIFO queue of paths with deduplication.
type Queue struct {
	items   []string
	visited map[string]bool
	idx     int // current read position
}

// NewQueue creates an empty Queue.
func NewQueue() *Queue {
	return &Queue{
		visited: make(map[string]bool),
	}
}

// Add enqueues path unless a path normalizing to the same location was
// already added. It reports whether path was enqueued.
func (q *Queue) Add(path string) bool {
	key := NormalizePath(path)
	if q.visited[key] {
		return false
	}
	q.visited[key] = true
	q.items = append(q.items, path)
	return true
}

// HasNext returns true if there are unprocessed paths.
func (q *Queue) HasNext() bool {
	return q.idx < len(q.items)
}

// Next returns the next unprocessed path and advances the pointer.
func (q *Queue) Next() string {
	path := q.items[q.idx]
	q.idx++
	return path
}

// Visited returns the total number of unique paths seen.
func (q *Queue) Visited() int {
	return len(q.visited)
}

// All returns all queued paths in insertion order.
func (q *Queue) All() []string {
	return q.items
}
