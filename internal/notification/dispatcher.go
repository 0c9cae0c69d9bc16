package notification

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

var ErrQueueFull = errors.New("notification queue full")

type Worker struct {
	ID         int
	WorkerPool chan chan Message
	JobChannel chan Message
	Logger     *slog.Logger
}

func NewWorker(id int, workerPool chan chan Message, logger *slog.Logger) *Worker {
	return &Worker{
		ID:         id,
		WorkerPool: workerPool,
		JobChannel: make(chan Message),
		Logger:     logger,
	}
}

func (w *Worker) Start(ctx context.Context, wg *sync.WaitGroup, processFunc func(Message)) {
	wg.Add(1)
	go func() {
		defer wg.Done()

		for {
			select {
			case w.WorkerPool <- w.JobChannel:
			case <-ctx.Done():
				w.Logger.Debug("mail worker shutting down", "worker_id", w.ID)
				return
			}

			select {
			case msg := <-w.JobChannel:
				w.Logger.Debug("mail worker sending", "worker_id", w.ID, "kind", msg.Kind)
				processFunc(msg)
			case <-ctx.Done():
				w.Logger.Debug("mail worker shutting down", "worker_id", w.ID)
				return
			}
		}
	}()
}

type DispatcherConfig struct {
	MaxWorkers   int
	JobQueueSize int
	SendTimeout  time.Duration
}

// Dispatcher hands queued messages to a fixed set of workers. Enqueue never blocks: a
// full queue rejects the message.
type Dispatcher struct {
	sender      Sender
	sendTimeout time.Duration
	logger      *slog.Logger

	jobQueue   chan Message
	workerPool chan chan Message
	maxWorkers int
	pending    sync.WaitGroup
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	once       sync.Once
}

func NewDispatcher(sender Sender, config DispatcherConfig, logger *slog.Logger) *Dispatcher {
	ctx, cancel := context.WithCancel(context.Background())

	maxWorkers := config.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = 4
	}

	jobQueueSize := config.JobQueueSize
	if jobQueueSize <= 0 {
		jobQueueSize = 100
	}

	sendTimeout := config.SendTimeout
	if sendTimeout <= 0 {
		sendTimeout = 15 * time.Second
	}

	d := &Dispatcher{
		sender:      sender,
		sendTimeout: sendTimeout,
		logger:      logger,

		maxWorkers: maxWorkers,
		jobQueue:   make(chan Message, jobQueueSize),
		workerPool: make(chan chan Message, maxWorkers),
		ctx:        ctx,
		cancel:     cancel,
	}

	d.start()

	return d
}

func (d *Dispatcher) start() {
	d.once.Do(func() {
		for i := 0; i < d.maxWorkers; i++ {
			worker := NewWorker(i, d.workerPool, d.logger)
			worker.Start(d.ctx, &d.wg, d.deliver)
		}

		d.wg.Add(1)
		go d.dispatch()

		d.logger.Info("mail dispatcher started",
			"max_workers", d.maxWorkers,
			"queue_size", cap(d.jobQueue))
	})
}

func (d *Dispatcher) dispatch() {
	defer d.wg.Done()

	for {
		select {
		case msg := <-d.jobQueue:
			select {
			case jobChannel := <-d.workerPool:
				select {
				case jobChannel <- msg:
				case <-d.ctx.Done():
					d.pending.Done()
					d.logger.Info("mail dispatcher shutting down")
					return
				}
			case <-d.ctx.Done():
				d.pending.Done()
				d.logger.Info("mail dispatcher shutting down")
				return
			}
		case <-d.ctx.Done():
			d.logger.Info("mail dispatcher shutting down")
			return
		}
	}
}

// Enqueue schedules msg for delivery. It returns ErrQueueFull when the queue has no room.
func (d *Dispatcher) Enqueue(msg Message) error {
	if d.ctx.Err() != nil {
		return context.Canceled
	}

	d.pending.Add(1)
	select {
	case d.jobQueue <- msg:
		d.logger.Debug("email queued",
			"kind", msg.Kind,
			"to", msg.To,
			"queue_length", len(d.jobQueue))
		return nil
	default:
		d.pending.Done()
		d.logger.Warn("mail queue full, dropping email",
			"kind", msg.Kind,
			"to", msg.To,
			"queue_capacity", cap(d.jobQueue))
		return ErrQueueFull
	}
}

// Flush waits until every accepted message has been attempted. Callers must stop
// enqueueing first.
func (d *Dispatcher) Flush() {
	d.pending.Wait()
}

func (d *Dispatcher) Shutdown() {
	d.logger.Info("shutting down mail dispatcher")
	d.cancel()
	d.wg.Wait()

	dropped := 0
	for len(d.jobQueue) > 0 {
		<-d.jobQueue
		d.pending.Done()
		dropped++
	}
	d.logger.Info("mail dispatcher shutdown complete", "dropped", dropped)
}

func (d *Dispatcher) deliver(msg Message) {
	defer d.pending.Done()

	ctx, cancel := context.WithTimeout(d.ctx, d.sendTimeout)
	defer cancel()

	if err := d.sender.Send(ctx, msg); err != nil {
		d.logger.Error("email delivery failed",
			"kind", msg.Kind,
			"to", msg.To,
			"error", err)
		return
	}
	d.logger.Info("email sent", "kind", msg.Kind, "to", msg.To)
}
