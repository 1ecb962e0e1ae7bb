package workers

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"socket-deva/contract"
	"socket-deva/errors"
	"sync"
	"time"
)

var _ contract.ISupervisor = (*Supervisor)(nil)

// Supervisor runs the relay workers (bus dispatch, socket server, health).
// A worker that panics or fails is restarted after restartInterval.
// A worker that fails with ErrWorkerTerminal is not restarted: it takes
// every other worker down with it, so the relay ends instead of running
// without its transport.
type Supervisor struct {
	mu              sync.Mutex
	cancel          context.CancelFunc
	stopped         bool
	wg              *sync.WaitGroup
	log             *slog.Logger
	workers         []contract.Worker
	restartInterval time.Duration
}

func NewSupervisor(log *slog.Logger, restartInterval time.Duration) *Supervisor {
	return &Supervisor{wg: &sync.WaitGroup{}, log: log, restartInterval: restartInterval}
}

// Launch starts every worker and returns at once. The returned channel is
// closed when all of them returned. Stop is effective as soon as Launch
// returned, and a Stop issued earlier makes Launch start nothing.
func (s *Supervisor) Launch(ctx context.Context) <-chan struct{} {
	supervisedCtx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.cancel = cancel
	if s.stopped {
		cancel()
	}
	workers := append([]contract.Worker(nil), s.workers...)
	s.mu.Unlock()

	for _, worker := range workers {
		s.start(supervisedCtx, cancel, worker)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer cancel()
		s.wg.Wait()
	}()
	return done
}

// Run starts every worker and blocks until all of them returned.
func (s *Supervisor) Run(ctx context.Context) {
	<-s.Launch(ctx)
}

func (s *Supervisor) Add(worker ...contract.Worker) contract.ISupervisor {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workers = append(s.workers, worker...)
	return s
}

// Start runs one worker under supervision. A terminal failure only ends
// this worker; use Launch to have it stop the others.
func (s *Supervisor) Start(ctx context.Context, worker contract.Worker) {
	s.start(ctx, func() {}, worker)
}

func (s *Supervisor) start(ctx context.Context, abort context.CancelFunc, worker contract.Worker) {
	s.wg.Add(1)
	workerName := contract.GetWorkerName(worker)

	go func() {
		defer s.wg.Done()

		for {
			if ctx.Err() != nil {
				s.log.Info(fmt.Sprintf("Stopping : %s", workerName))
				return
			}

			err := func() (err error) {
				defer func() {
					if r := recover(); r != nil {
						err = fmt.Errorf("%w: %v", errors.ErrWorkerPanic, r)
					}
				}()
				return worker.Run(ctx)
			}()

			if err == nil {
				// Terminated properly, never restart !
				s.log.Info(fmt.Sprintf("Worker finished : %s", workerName))
				return
			}

			if ctx.Err() != nil {
				s.log.Info("Worker stopped (context canceled)", "name", workerName)
				return
			}

			if stderrors.Is(err, errors.ErrWorkerTerminal) {
				s.log.Error("Worker cannot recover, stopping every worker", "name", workerName, "error", err)
				abort()
				return
			}

			s.log.Warn("Worker crashed, restarting", "name", workerName, "error", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(s.restartInterval):
			}
		}
	}()
}

// Stop cancels the supervised context; the Launch channel closes once every
// worker is done.
func (s *Supervisor) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	if s.cancel != nil {
		s.cancel()
	}
}
