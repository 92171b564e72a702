// Package queue holds the FIFO of pending job ids feeding the worker.
package queue

// FIFO is a strict first-in-first-out sequence of job ids. It is not safe for
// concurrent use on its own; the job store guards it with its mutex so queue
// and job map mutate atomically.
type FIFO struct {
	ids []string
}

func NewFIFO() *FIFO {
	return &FIFO{}
}

func (q *FIFO) Push(id string) {
	q.ids = append(q.ids, id)
}

// Pop removes and returns the front id, or false when the queue is empty.
func (q *FIFO) Pop() (string, bool) {
	if len(q.ids) == 0 {
		return "", false
	}
	id := q.ids[0]
	q.ids = q.ids[1:]
	return id, true
}

// Remove drops the first occurrence of id, reporting whether it was present.
func (q *FIFO) Remove(id string) bool {
	for i, v := range q.ids {
		if v == id {
			q.ids = append(q.ids[:i], q.ids[i+1:]...)
			return true
		}
	}
	return false
}

func (q *FIFO) Len() int {
	return len(q.ids)
}
