package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/taskwire/taskwire/internal/config"
	"github.com/taskwire/taskwire/internal/domain"
)

// jobTimeout bounds a single notification pipeline run so a wedged store or
// resolver cannot pin a worker forever.
const jobTimeout = 30 * time.Second

// job is one queued notification request.
type job struct {
	scope     Scope
	eventType domain.EventType
	data      domain.Payload
	actorID   uuid.UUID
}

// Dispatcher decouples the write path from the notification pipeline: the
// task/project controllers enqueue after their own write commits and return
// immediately, and worker goroutines run Service.Notify behind them. The
// queue is bounded; when it is full the dispatch is dropped and logged
// rather than blocking the caller.
type Dispatcher struct {
	service    *Service
	jobs       chan job
	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	workers    int
	logger     *slog.Logger
}

// NewDispatcher creates a Dispatcher with the worker and queue sizing from cfg.
func NewDispatcher(service *Service, cfg config.NotifyConfig, logger *slog.Logger) *Dispatcher {
	ctx, cancel := context.WithCancel(context.Background())
	return &Dispatcher{
		service:    service,
		jobs:       make(chan job, cfg.QueueSize),
		ctx:        ctx,
		cancelFunc: cancel,
		workers:    cfg.WorkerCount,
		logger:     logger.With("component", "notify_dispatcher"),
	}
}

// Start launches the worker goroutines.
func (d *Dispatcher) Start() {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker(i)
	}
	d.logger.Info("notification dispatcher started", "workers", d.workers, "queue_size", cap(d.jobs))
}

// Dispatch enqueues a notification for asynchronous processing. It never
// blocks: a full queue or a stopped dispatcher returns an error the caller
// should log and otherwise ignore, matching the contract that notification
// failure never fails the originating write.
func (d *Dispatcher) Dispatch(
	scope Scope,
	eventType domain.EventType,
	data domain.Payload,
	actorID uuid.UUID,
) error {
	if d.ctx.Err() != nil {
		return fmt.Errorf("notification dispatcher is stopped")
	}

	select {
	case d.jobs <- job{scope: scope, eventType: eventType, data: data, actorID: actorID}:
		return nil
	default:
		d.logger.Warn("notification queue full, dropping dispatch",
			"event_type", eventType,
			"actor_id", actorID)
		return fmt.Errorf("notification queue is full")
	}
}

// Stop shuts the dispatcher down and waits for in-flight jobs to finish.
// Queued but unstarted jobs are discarded.
func (d *Dispatcher) Stop() {
	d.cancelFunc()
	d.wg.Wait()
	d.logger.Info("notification dispatcher stopped")
}

func (d *Dispatcher) worker(id int) {
	defer d.wg.Done()

	log := d.logger.With("worker_id", id)
	log.Debug("notification worker started")

	for {
		select {
		case <-d.ctx.Done():
			log.Debug("notification worker stopping")
			return
		case j := <-d.jobs:
			d.run(j, log)
		}
	}
}

func (d *Dispatcher) run(j job, log *slog.Logger) {
	// Jobs get their own deadline, detached from the caller that enqueued
	// them: notify() is not cancellable mid-flight by the write path.
	ctx, cancel := context.WithTimeout(d.ctx, jobTimeout)
	defer cancel()

	if err := d.service.Notify(ctx, j.scope, j.eventType, j.data, j.actorID); err != nil {
		log.Error("notification pipeline failed",
			"event_type", j.eventType,
			"actor_id", j.actorID,
			"error", err)
	}
}
