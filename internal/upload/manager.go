package upload

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/lensai/edge-profiler/internal/lockfile"
	"github.com/lensai/edge-profiler/pkg/logger"
	"github.com/lensai/edge-profiler/pkg/telemetryerrors"
)

// uploadRetryCount is the fixed total-attempts bound spec.md §4.3/§9
// settles on: two POSTs total, not two retries after a first attempt.
const uploadRetryCount = 2

// Descriptor is one watched folder an uploader instance round-robins
// over (spec.md §3's "Upload job descriptor").
type Descriptor struct {
	FolderPath  string
	FileType    string
	DeleteAfter bool
}

// Manager owns the single background worker for one uploader instance
// (one per [section] in the INI config with an endpoint/bucket).
//
// Grounded structurally on
// _examples/jsturma-joblet/internal/joblet/core/upload/manager.go (a
// manager owning a logger and a pluggable transport, with a
// retry-with-backoff call shape) even though that file's actual
// transport is a Unix FIFO, not HTTP/S3.
type Manager struct {
	descriptors []Descriptor
	endpoint    string
	token       string
	sensorID    string
	s3Bucket    string
	s3Region    string
	s3KeyPrefix string
	backend     Backend
	interval    time.Duration
	logger      *logger.Logger

	stopCh  chan struct{}
	stopped bool
	wg      sync.WaitGroup
	mu      sync.Mutex
}

// Config bundles the fields needed to construct a Manager; kept separate
// from internal/config.UploaderConfig so this package doesn't depend on
// the INI layer.
type Config struct {
	Endpoint        string
	Token           string
	SensorID        string
	IntervalSeconds int
	Descriptors     []Descriptor
	S3Bucket        string
	S3Region        string
	S3KeyPrefix     string
}

func New(cfg Config, backend Backend, log *logger.Logger) *Manager {
	return &Manager{
		descriptors: cfg.Descriptors,
		endpoint:    cfg.Endpoint,
		token:       cfg.Token,
		sensorID:    cfg.SensorID,
		s3Bucket:    cfg.S3Bucket,
		s3Region:    cfg.S3Region,
		s3KeyPrefix: cfg.S3KeyPrefix,
		backend:     backend,
		interval:    time.Duration(cfg.IntervalSeconds) * time.Second,
		logger:      log.WithField("component", "uploader"),
		stopCh:      make(chan struct{}),
	}
}

func (m *Manager) Start() {
	m.wg.Add(1)
	go m.loop(context.Background())
}

func (m *Manager) Stop() {
	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return
	}
	m.stopped = true
	m.mu.Unlock()

	close(m.stopCh)
	m.wg.Wait()
}

func (m *Manager) loop(ctx context.Context) {
	defer m.wg.Done()

	index := 0
	for {
		select {
		case <-m.stopCh:
			return
		default:
		}

		if len(m.descriptors) > 0 {
			d := m.descriptors[index%len(m.descriptors)]
			m.uploadFolder(ctx, d)
			index++
		}

		if m.sleepWithShutdownCheck() {
			return
		}
	}
}

// uploadFolder implements the per-iteration protocol of spec.md §4.3.
func (m *Manager) uploadFolder(ctx context.Context, d Descriptor) {
	cycleStart := time.Now()

	lock := lockfile.New(d.FolderPath)
	ok, err := lock.TryAcquire()
	if err != nil || !ok {
		m.logger.Warn("failed to acquire lock, skipping upload", "folder", d.FolderPath, "error", err)
		return
	}
	defer lock.Release()

	tarPath, gzPath := archivePaths(d.FolderPath)
	defer func() {
		_ = removeIfExists(tarPath)
		_ = removeIfExists(gzPath)
	}()

	if err := createTar(d.FolderPath, tarPath); err != nil {
		m.logger.Warn("failed to create archive", "folder", d.FolderPath, "error", err)
		return
	}
	if err := compressToGz(tarPath, gzPath); err != nil {
		m.logger.Warn("failed to compress archive", "folder", d.FolderPath, "error", err)
		return
	}
	_ = removeIfExists(tarPath)

	job := Job{
		GzPath:      gzPath,
		Endpoint:    m.endpoint,
		Token:       m.token,
		SensorID:    m.sensorID,
		FileType:    d.FileType,
		CycleStart:  cycleStart,
		S3Bucket:    m.s3Bucket,
		S3Region:    m.s3Region,
		S3KeyPrefix: m.s3KeyPrefix,
	}

	if err := m.postWithRetry(ctx, job); err != nil {
		m.logger.Warn("upload failed after retries, archive discarded, folder retained", "folder", d.FolderPath, "error", err)
		return
	}

	if d.DeleteAfter {
		if err := emptyFolder(d.FolderPath); err != nil {
			m.logger.Warn("failed to empty folder after successful upload", "folder", d.FolderPath, "error", err)
		}
	}
}

func (m *Manager) postWithRetry(ctx context.Context, job Job) error {
	bo := backoff.WithMaxRetries(backoff.NewConstantBackOff(time.Second), uint64(uploadRetryCount-1))
	attempts := 0

	return backoff.Retry(func() error {
		attempts++
		err := m.backend.Upload(ctx, job)
		if err != nil {
			m.logger.Debug("upload attempt failed", "attempt", attempts, "error", err)
			if telemetryerrors.IsTransportError(err) && !telemetryerrors.IsRetryableTransport(err) {
				return backoff.Permanent(err)
			}
		}
		return err
	}, backoff.WithContext(bo, ctx))
}

func (m *Manager) sleepWithShutdownCheck() bool {
	remaining := m.interval
	for remaining > 0 {
		wait := time.Second
		if remaining < wait {
			wait = remaining
		}
		select {
		case <-m.stopCh:
			return true
		case <-time.After(wait):
			remaining -= wait
		}
	}
	select {
	case <-m.stopCh:
		return true
	default:
		return false
	}
}

func removeIfExists(path string) error {
	err := os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
