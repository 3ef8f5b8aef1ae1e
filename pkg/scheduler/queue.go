package scheduler

import (
	"container/heap"
	"fmt"
)

// Ordering selects how a pool dequeues its tasks.
type Ordering int

const (
	// OrderFIFO dequeues in submission order regardless of priority.
	OrderFIFO Ordering = iota
	// OrderPriority dequeues the highest priority first, FIFO among equals.
	OrderPriority
)

func (o Ordering) String() string {
	if o == OrderPriority {
		return "priority"
	}
	return "fifo"
}

// ParseOrdering accepts "fifo", "priority" and the empty string (fifo).
func ParseOrdering(s string) (Ordering, error) {
	switch s {
	case "", "fifo":
		return OrderFIFO, nil
	case "priority":
		return OrderPriority, nil
	}
	return OrderFIFO, fmt.Errorf("unknown ordering %q", s)
}

type taskQueue interface {
	Push(t *Task)
	Pop() *Task
	Len() int
	// Drain removes and returns every queued task in dequeue order.
	Drain() []*Task
}

func newTaskQueue(o Ordering) taskQueue {
	if o == OrderPriority {
		return &priorityQueue{}
	}
	return &fifoQueue{}
}

type fifoQueue []*Task

func (q *fifoQueue) Len() int { return len(*q) }

func (q *fifoQueue) Push(t *Task) {
	*q = append(*q, t)
}

func (q *fifoQueue) Pop() *Task {
	old := *q
	t := old[0]
	old[0] = nil
	*q = old[1:]
	if len(*q) == 0 {
		*q = nil
	}
	return t
}

func (q *fifoQueue) Drain() []*Task {
	tasks := *q
	*q = nil
	return tasks
}

type priorityQueue struct {
	h taskHeap
}

func (q *priorityQueue) Len() int { return q.h.Len() }

func (q *priorityQueue) Push(t *Task) {
	heap.Push(&q.h, t)
}

func (q *priorityQueue) Pop() *Task {
	return heap.Pop(&q.h).(*Task)
}

func (q *priorityQueue) Drain() []*Task {
	tasks := make([]*Task, 0, q.h.Len())
	for q.h.Len() > 0 {
		tasks = append(tasks, heap.Pop(&q.h).(*Task))
	}
	return tasks
}

// taskHeap orders by priority, then by submission sequence.
type taskHeap []*Task

func (h taskHeap) Len() int { return len(h) }

func (h taskHeap) Less(i, j int) bool {
	if h[i].Priority != h[j].Priority {
		return h[i].Priority > h[j].Priority
	}
	return h[i].seq < h[j].seq
}

func (h taskHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *taskHeap) Push(x any) {
	*h = append(*h, x.(*Task))
}

func (h *taskHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return t
}
