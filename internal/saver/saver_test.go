package saver

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lensai/edge-profiler/pkg/logger"
)

type fakeRegistry struct {
	data map[string]string
}

func (f *fakeRegistry) Serialize(name string, w io.Writer) error {
	_, err := w.Write([]byte(f.data[name]))
	return err
}

func TestSaverWritesSketchJobs(t *testing.T) {
	dir := t.TempDir()
	reg := &fakeRegistry{data: map[string]string{"brightness": "sketch-bytes"}}

	s := New(100*time.Millisecond, "test-profile", logger.New())
	s.Start()
	defer s.Stop()

	target := filepath.Join(dir, "brightness.bin")
	s.AddObjectToSave(&Job{
		Kind:       KindQuantileSketch,
		TargetPath: target,
		Registry:   reg,
		MetricName: "brightness",
	})

	require.Eventually(t, func() bool {
		data, err := os.ReadFile(target)
		return err == nil && bytes.Equal(data, []byte("sketch-bytes"))
	}, 2*time.Second, 20*time.Millisecond)
}

func TestSaverDropsWhenDirectoryAtCap(t *testing.T) {
	dir := t.TempDir()
	padding := filepath.Join(dir, "padding.bin")
	require.NoError(t, os.WriteFile(padding, make([]byte, DefaultMaxDirBytes), 0o644))

	reg := &fakeRegistry{data: map[string]string{"m": "x"}}
	s := New(50*time.Millisecond, "cap-test", logger.New())
	s.Start()
	defer s.Stop()

	target := filepath.Join(dir, "m.bin")
	s.AddObjectToSave(&Job{Kind: KindQuantileSketch, TargetPath: target, Registry: reg, MetricName: "m"})

	time.Sleep(200 * time.Millisecond)
	_, err := os.Stat(target)
	require.True(t, os.IsNotExist(err), "expected save to be dropped while directory is at cap")
}

func TestSaverStopIsPromptAndIdempotent(t *testing.T) {
	s := New(time.Hour, "idle", logger.New())
	s.Start()

	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return promptly")
	}

	s.Stop() // idempotent
}
