package upload

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lensai/edge-profiler/pkg/logger"
)

type recordingBackend struct {
	calls      int32
	failTimes  int32
	lastJob    Job
}

func (r *recordingBackend) Upload(ctx context.Context, job Job) error {
	n := atomic.AddInt32(&r.calls, 1)
	r.lastJob = job
	if n <= r.failTimes {
		return errTransient
	}
	return nil
}

var errTransient = &transientError{}

type transientError struct{}

func (e *transientError) Error() string { return "transient failure" }

func TestUploadRoundTripDeletesOnSuccess(t *testing.T) {
	dir := t.TempDir()
	folder := filepath.Join(dir, "watched")
	require.NoError(t, os.Mkdir(folder, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(folder, "stat.bin"), []byte("sketch"), 0o644))

	backend := &recordingBackend{}
	m := New(Config{
		Endpoint:        "https://ingest.example.com",
		IntervalSeconds: 1,
		Descriptors:     []Descriptor{{FolderPath: folder, FileType: "stat", DeleteAfter: true}},
	}, backend, logger.New())

	m.uploadFolder(context.Background(), m.descriptors[0])

	require.EqualValues(t, 1, backend.calls)
	entries, err := os.ReadDir(folder)
	require.NoError(t, err)
	require.Len(t, entries, 0, "folder must be emptied after a successful upload with delete_after")

	tarPath, gzPath := archivePaths(folder)
	_, err = os.Stat(tarPath)
	require.True(t, os.IsNotExist(err), "tar staging file must not remain")
	_, err = os.Stat(gzPath)
	require.True(t, os.IsNotExist(err), "gz staging file must not remain")
}

func TestUploadRetryExhaustionPreservesData(t *testing.T) {
	dir := t.TempDir()
	folder := filepath.Join(dir, "watched")
	require.NoError(t, os.Mkdir(folder, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(folder, "stat.bin"), []byte("sketch"), 0o644))

	backend := &recordingBackend{failTimes: 2}
	m := New(Config{
		Endpoint:        "https://ingest.example.com",
		IntervalSeconds: 1,
		Descriptors:     []Descriptor{{FolderPath: folder, FileType: "stat", DeleteAfter: true}},
	}, backend, logger.New())

	m.uploadFolder(context.Background(), m.descriptors[0])

	require.EqualValues(t, uploadRetryCount, backend.calls, "exactly UPLOAD_RETRY_COUNT attempts")

	entries, err := os.ReadDir(folder)
	require.NoError(t, err)
	require.Len(t, entries, 1, "folder contents must be preserved after retry exhaustion")

	tarPath, gzPath := archivePaths(folder)
	_, err = os.Stat(tarPath)
	require.True(t, os.IsNotExist(err))
	_, err = os.Stat(gzPath)
	require.True(t, os.IsNotExist(err))
}

func TestManagerStopIsPrompt(t *testing.T) {
	backend := &recordingBackend{}
	m := New(Config{IntervalSeconds: 3600}, backend, logger.New())
	m.Start()

	done := make(chan struct{})
	go func() {
		m.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return promptly")
	}
}
