package service

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

var ErrQueueFull = errors.New("search queue is full")

type QueuedSearch struct {
	Job      *Job
	QueuedAt time.Time
}

// Queue holds searches waiting for the worker, oldest first.
type Queue struct {
	searches []QueuedSearch
	capacity int
	mu       sync.Mutex
}

func NewQueue(capacity int) *Queue {
	return &Queue{
		searches: []QueuedSearch{},
		capacity: capacity,
	}
}

func (q *Queue) Add(job *Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.searches) >= q.capacity {
		return ErrQueueFull
	}
	for _, s := range q.searches {
		if s.Job.ID == job.ID {
			return fmt.Errorf("search %s already queued", job.ID)
		}
	}

	q.searches = append(q.searches, QueuedSearch{
		Job:      job,
		QueuedAt: time.Now(),
	})
	return nil
}

// Next pops the search that has been waiting longest.
func (q *Queue) Next() (QueuedSearch, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.searches) == 0 {
		return QueuedSearch{}, false
	}
	next := q.searches[0]
	q.searches[0] = QueuedSearch{}
	q.searches = q.searches[1:]
	return next, true
}

func (q *Queue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.searches)
}
