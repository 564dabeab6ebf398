package service

import (
	"context"
	"sync"
	"time"

	"github.com/benbeisheim/minechess-engine/internal/difficulty"
	"github.com/benbeisheim/minechess-engine/internal/engine"
)

type Status string

const (
	StatusQueued  Status = "queued"
	StatusRunning Status = "running"
	StatusDone    Status = "done"
	StatusFailed  Status = "failed"
)

type EventType string

const (
	EventProgress EventType = "progress"
	EventResult   EventType = "result"
	EventError    EventType = "error"
)

// Event is one notification about a search. The channel returned by
// Job.Events carries progress events and then exactly one result or error
// event before it is closed.
type Event struct {
	Type     EventType
	Progress engine.Progress
	Result   engine.Result
	Err      error
}

// Job is one submitted search.
type Job struct {
	ID       string
	ClientID string
	Request  engine.Request
	Created  time.Time

	mu       sync.Mutex
	status   Status
	progress *engine.Progress
	result   *engine.Result
	err      error
	started  time.Time
	finished time.Time
	stopped  bool
	cancel   context.CancelFunc
	events   chan Event
	done     chan struct{}
}

// Snapshot is a copy of a job's state safe to hand to other goroutines.
type Snapshot struct {
	ID       string
	Status   Status
	Progress *engine.Progress
	Result   *engine.Result
	Err      error
	Created  time.Time
}

func newJob(id, clientID string, req engine.Request) *Job {
	return &Job{
		ID:       id,
		ClientID: clientID,
		Request:  req,
		Created:  time.Now(),
		status:   StatusQueued,
		// One slot per possible depth plus the final event, so the search
		// never blocks on a slow reader.
		events: make(chan Event, difficulty.MaxSearchDepth+1),
		done:   make(chan struct{}),
	}
}

func (j *Job) Events() <-chan Event {
	return j.events
}

func (j *Job) Done() <-chan struct{} {
	return j.done
}

func (j *Job) Snapshot() Snapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	return Snapshot{
		ID:       j.ID,
		Status:   j.status,
		Progress: j.progress,
		Result:   j.result,
		Err:      j.err,
		Created:  j.Created,
	}
}

// Outcome returns the final result once the job is done.
func (j *Job) Outcome() (engine.Result, error) {
	<-j.done
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.err != nil {
		return engine.Result{}, j.err
	}
	return *j.result, nil
}

// start moves the job to running and returns its search context. A job
// stopped while queued starts with a cancelled context and so answers at
// depth 0 straight away.
func (j *Job) start(parent context.Context) context.Context {
	ctx, cancel := context.WithCancel(parent)
	j.mu.Lock()
	defer j.mu.Unlock()
	j.status = StatusRunning
	j.started = time.Now()
	j.cancel = cancel
	if j.stopped {
		cancel()
	}
	return ctx
}

func (j *Job) stop() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.stopped = true
	if j.cancel != nil {
		j.cancel()
	}
}

func (j *Job) publishProgress(p engine.Progress) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.isFinished() {
		return
	}
	j.progress = &p
	j.send(Event{Type: EventProgress, Progress: p})
}

// finish records the final outcome. Only the first call has any effect, so
// a search that returns after the hard deadline cannot overwrite the answer
// already given.
func (j *Job) finish(result engine.Result, err error) bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.isFinished() {
		return false
	}
	j.finished = time.Now()
	if err != nil {
		j.status = StatusFailed
		j.err = err
		j.send(Event{Type: EventError, Err: err})
	} else {
		j.status = StatusDone
		j.result = &result
		j.send(Event{Type: EventResult, Result: result})
	}
	if j.cancel != nil {
		j.cancel()
	}
	close(j.events)
	close(j.done)
	return true
}

func (j *Job) isFinished() bool {
	return j.status == StatusDone || j.status == StatusFailed
}

func (j *Job) finishedBefore(t time.Time) bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.isFinished() && j.finished.Before(t)
}

// lastProgress is the deepest completed iteration seen so far.
func (j *Job) lastProgress() (engine.Progress, time.Time, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.progress == nil {
		return engine.Progress{}, j.started, false
	}
	return *j.progress, j.started, true
}

func (j *Job) send(e Event) {
	select {
	case j.events <- e:
	default:
	}
}
