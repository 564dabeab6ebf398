package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/benbeisheim/minechess-engine/internal/difficulty"
	"github.com/benbeisheim/minechess-engine/internal/engine"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var (
	ErrSearchNotFound = errors.New("search not found")
	ErrNotOwner       = errors.New("search belongs to another client")
)

type Options struct {
	QueueCapacity int
	// HardDeadlineGrace is added to a search's time budget to get the point
	// at which the manager stops waiting and answers on its behalf.
	HardDeadlineGrace time.Duration
	// ResultTTL is how long finished searches stay retrievable.
	ResultTTL       time.Duration
	JanitorInterval time.Duration
}

// SearchManager owns every submitted search and the single worker that runs
// them one after another against a shared engine.
type SearchManager struct {
	engine *engine.Engine
	opts   Options
	queue  *Queue
	jobs   map[string]*Job
	wake   chan struct{}
	mu     sync.RWMutex
}

func NewSearchManager(eng *engine.Engine, opts Options) *SearchManager {
	if opts.QueueCapacity < 1 {
		opts.QueueCapacity = 1
	}
	if opts.JanitorInterval <= 0 {
		opts.JanitorInterval = time.Minute
	}
	return &SearchManager{
		engine: eng,
		opts:   opts,
		queue:  NewQueue(opts.QueueCapacity),
		jobs:   make(map[string]*Job),
		wake:   make(chan struct{}, 1),
	}
}

// Submit validates req and queues it. Progress and the final answer arrive
// on the returned job's Events channel.
func (sm *SearchManager) Submit(clientID string, req engine.Request) (*Job, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	job := newJob(uuid.New().String(), clientID, req)

	sm.mu.Lock()
	if err := sm.queue.Add(job); err != nil {
		sm.mu.Unlock()
		return nil, err
	}
	sm.jobs[job.ID] = job
	sm.mu.Unlock()

	select {
	case sm.wake <- struct{}{}:
	default:
	}
	log.Debug().
		Str("search_id", job.ID).
		Str("client_id", clientID).
		Int("rating", req.Settings.Rating).
		Int("max_depth", req.Settings.MaxDepth).
		Msg("search-queued")
	return job, nil
}

func (sm *SearchManager) Get(id string) (*Job, error) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	job, exists := sm.jobs[id]
	if !exists {
		return nil, ErrSearchNotFound
	}
	return job, nil
}

// Stop asks a search to finish early. The search still produces a result.
func (sm *SearchManager) Stop(id, clientID string) error {
	job, err := sm.Get(id)
	if err != nil {
		return err
	}
	if job.ClientID != clientID {
		return ErrNotOwner
	}
	job.stop()
	log.Debug().Str("search_id", id).Msg("search-stop-requested")
	return nil
}

func (sm *SearchManager) QueueSize() int {
	return sm.queue.Size()
}

// Run executes queued searches until ctx is cancelled. Searches still queued
// at that point are answered at depth 0 before Run returns.
func (sm *SearchManager) Run(ctx context.Context) error {
	ticker := time.NewTicker(sm.opts.JanitorInterval)
	defer ticker.Stop()

	for {
		sm.drain(ctx)
		select {
		case <-ctx.Done():
			sm.drain(ctx)
			log.Info().Msg("search-worker-stopped")
			return nil
		case <-sm.wake:
		case <-ticker.C:
			sm.evictFinished(time.Now().Add(-sm.opts.ResultTTL))
		}
	}
}

func (sm *SearchManager) drain(ctx context.Context) {
	for {
		next, ok := sm.queue.Next()
		if !ok {
			return
		}
		sm.execute(ctx, next.Job)
	}
}

func (sm *SearchManager) execute(parent context.Context, job *Job) {
	ctx := job.start(parent)
	log.Debug().Str("search_id", job.ID).Msg("search-started")

	finished := make(chan struct{})
	go func() {
		defer close(finished)
		defer func() {
			if r := recover(); r != nil {
				log.Error().Str("search_id", job.ID).Interface("panic", r).Msg("search-panicked")
				job.finish(engine.Result{}, fmt.Errorf("search %s aborted: %v", job.ID, r))
			}
		}()
		result, err := sm.engine.Search(ctx, job.Request, job.publishProgress)
		job.finish(result, err)
	}()

	hard := time.NewTimer(job.Request.Settings.TimeBudget() + sm.opts.HardDeadlineGrace)
	defer hard.Stop()
	select {
	case <-finished:
		return
	case <-hard.C:
	}
	if job.finish(sm.degradedResult(job), nil) {
		log.Warn().Str("search_id", job.ID).Msg("search-hard-deadline")
	}
	// The engine runs one search at a time, so wait for the late one to unwind.
	<-finished
}

// degradedResult answers for a search that missed its hard deadline: the
// best move of the deepest completed iteration, or a material ranking if
// not even one finished.
func (sm *SearchManager) degradedResult(job *Job) engine.Result {
	p, started, ok := job.lastProgress()
	if !ok {
		return engine.Fallback(job.Request)
	}
	return engine.Result{
		Move:     p.BestMove,
		Score:    p.Score,
		Depth:    p.Depth,
		Nodes:    p.Nodes,
		Elapsed:  time.Since(started),
		Choice:   difficulty.ChoiceBest,
		TimedOut: true,
	}
}

func (sm *SearchManager) evictFinished(cutoff time.Time) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	evicted := 0
	for id, job := range sm.jobs {
		if job.finishedBefore(cutoff) {
			delete(sm.jobs, id)
			evicted++
		}
	}
	if evicted > 0 {
		log.Debug().Int("evicted", evicted).Int("remaining", len(sm.jobs)).Msg("searches-evicted")
	}
}
