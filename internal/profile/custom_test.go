package profile

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lensai/edge-profiler/pkg/logger"
)

func TestCustomProfileLazilyRegistersAnyName(t *testing.T) {
	cfg := testProfileConfig(t, nil)
	p, err := NewCustomProfile(cfg, 3600, logger.New())
	require.NoError(t, err)
	defer p.Close()

	require.NoError(t, p.Profile("queue_depth", 42))
	require.True(t, p.registry.Has("queue_depth"))

	require.NoError(t, p.Profile("queue_depth", 7))
}
