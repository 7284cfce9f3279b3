// Package saver implements the background worker spec.md §4.2 describes:
// a FIFO queue of save jobs processed circularly on a tick, under a
// per-directory size cap and cross-process lock.
//
// The lifecycle (enqueue that never blocks on I/O, a worker joined via a
// stop channel and WaitGroup, idempotent Stop) is grounded on the teacher's
// internal/joblet/metrics/async_metrics_system.go; the circular-queue
// processing order is grounded on
// _examples/original_source/src/helpers/saver.cpp's SaveLoop.
package saver

import (
	"errors"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/lensai/edge-profiler/internal/lockfile"
	"github.com/lensai/edge-profiler/pkg/logger"
	"github.com/lensai/edge-profiler/pkg/telemetryerrors"
)

var errUnknownKind = errors.New("unknown save job kind")

// Saver owns a single background goroutine draining its job queue.
type Saver struct {
	queueMu sync.Mutex
	cond    *sync.Cond
	queue   []*Job

	interval time.Duration
	logger   *logger.Logger

	stopCh   chan struct{}
	stopped  bool
	wg       sync.WaitGroup
	started  bool
}

// New constructs a Saver with the given save interval and a
// human-readable owner tag used in log lines (e.g. "image-profile").
func New(interval time.Duration, ownerTag string, log *logger.Logger) *Saver {
	s := &Saver{
		interval: interval,
		logger:   log.WithField("component", "saver").WithField("owner", ownerTag),
		stopCh:   make(chan struct{}),
	}
	s.cond = sync.NewCond(&s.queueMu)
	return s
}

// AddObjectToSave enqueues a job and wakes the worker. Never blocks on I/O.
func (s *Saver) AddObjectToSave(job *Job) {
	s.queueMu.Lock()
	s.queue = append(s.queue, job)
	s.queueMu.Unlock()
	s.cond.Signal()
}

// TriggerSave signals the queue condition without otherwise touching the
// queue. This wakes a worker that is waiting for jobs; it has no effect on
// a worker that is sleeping out its interval between passes.
func (s *Saver) TriggerSave() {
	s.cond.Signal()
}

// Start begins the background worker. Safe to call at most once.
func (s *Saver) Start() {
	if s.started {
		return
	}
	s.started = true
	s.wg.Add(1)
	go s.loop()
}

// Stop signals shutdown and blocks until the worker has joined. Idempotent.
func (s *Saver) Stop() {
	s.queueMu.Lock()
	if s.stopped {
		s.queueMu.Unlock()
		return
	}
	s.stopped = true
	s.queueMu.Unlock()

	close(s.stopCh)
	s.cond.Broadcast()
	s.wg.Wait()
}

func (s *Saver) loop() {
	defer s.wg.Done()

	for {
		s.queueMu.Lock()
		for len(s.queue) == 0 && !s.stopped {
			s.cond.Wait()
		}
		if s.stopped {
			s.queueMu.Unlock()
			return
		}
		startRef := s.queue[0]
		s.queueMu.Unlock()

		for {
			s.queueMu.Lock()
			if len(s.queue) == 0 {
				s.queueMu.Unlock()
				break
			}
			job := s.queue[0]
			s.queue = s.queue[1:]
			s.queueMu.Unlock()

			s.saveOne(job)

			if job.Kind != KindPngImage && job.Kind != KindJpegImage {
				s.queueMu.Lock()
				s.queue = append(s.queue, job)
				s.queueMu.Unlock()
			}

			s.queueMu.Lock()
			fullCircle := len(s.queue) == 0 || s.queue[0] == startRef
			s.queueMu.Unlock()
			if fullCircle {
				break
			}
		}

		if s.sleepWithShutdownCheck() {
			return
		}
	}
}

// saveOne implements spec.md §4.2's save_one contract.
func (s *Saver) saveOne(job *Job) {
	baseDir := filepath.Dir(job.TargetPath)

	maxBytes := job.MaxDirBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxDirBytes
	}

	dirBytes, err := dirSize(baseDir)
	if err != nil {
		s.logger.Warn("failed to compute directory size", "dir", baseDir, "error", err)
	}
	if dirBytes >= maxBytes {
		s.logger.Debug("directory at cap, dropping save", "dir", baseDir, "bytes", dirBytes, "cap", maxBytes)
		return
	}

	lock := lockfile.New(baseDir)
	if err := lock.Acquire(); err != nil {
		s.logger.Warn("failed to acquire lock, skipping save", "dir", baseDir, "error", err)
		return
	}
	defer func() {
		if err := lock.Release(); err != nil {
			s.logger.Warn("failed to release lock", "dir", baseDir, "error", err)
		}
	}()

	if err := s.writeJob(job); err != nil {
		s.logger.Warn("failed to write save job", "path", job.TargetPath, "error", err)
	}
}

func (s *Saver) writeJob(job *Job) error {
	if err := os.MkdirAll(filepath.Dir(job.TargetPath), 0o755); err != nil {
		return telemetryerrors.WrapFilesystemError(job.TargetPath, "mkdir", err)
	}

	switch job.Kind {
	case KindQuantileSketch, KindFrequencySketch:
		f, err := os.Create(job.TargetPath)
		if err != nil {
			return telemetryerrors.WrapFilesystemError(job.TargetPath, "create", err)
		}
		defer f.Close()
		if err := job.Registry.Serialize(job.MetricName, f); err != nil {
			return telemetryerrors.WrapFilesystemError(job.TargetPath, "serialize", err)
		}
		return nil

	case KindPngImage:
		f, err := os.Create(job.TargetPath)
		if err != nil {
			return telemetryerrors.WrapFilesystemError(job.TargetPath, "create", err)
		}
		defer f.Close()
		if err := png.Encode(f, job.Image); err != nil {
			return telemetryerrors.WrapFilesystemError(job.TargetPath, "encode-png", err)
		}
		return nil

	case KindJpegImage:
		f, err := os.Create(job.TargetPath)
		if err != nil {
			return telemetryerrors.WrapFilesystemError(job.TargetPath, "create", err)
		}
		defer f.Close()
		if err := jpeg.Encode(f, job.Image, &jpeg.Options{Quality: 90}); err != nil {
			return telemetryerrors.WrapFilesystemError(job.TargetPath, "encode-jpeg", err)
		}
		return nil

	default:
		return telemetryerrors.WrapFilesystemError(job.TargetPath, "write", errUnknownKind)
	}
}

func (s *Saver) sleepWithShutdownCheck() bool {
	remaining := s.interval
	for remaining > 0 {
		wait := time.Second
		if remaining < wait {
			wait = remaining
		}
		select {
		case <-s.stopCh:
			return true
		case <-time.After(wait):
			remaining -= wait
		}
	}
	select {
	case <-s.stopCh:
		return true
	default:
		return false
	}
}

func dirSize(dir string) (int64, error) {
	var total int64
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if !info.IsDir() {
			total += info.Size()
		}
		return nil
	})
	if err != nil && os.IsNotExist(err) {
		return 0, nil
	}
	return total, err
}
