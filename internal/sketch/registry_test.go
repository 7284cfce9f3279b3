package sketch

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistryIdempotence(t *testing.T) {
	r := NewRegistry()

	first, err := r.GetOrCreateQuantile("mdl0", 0.01)
	require.NoError(t, err)

	second, err := r.GetOrCreateQuantile("mdl0", 0.01)
	require.NoError(t, err)

	require.Same(t, first, second, "repeated lookups must return the same sketch instance")
}

func TestRegistryRejectsKindMismatch(t *testing.T) {
	r := NewRegistry()
	_, err := r.GetOrCreateQuantile("embeddings", 0.01)
	require.NoError(t, err)

	_, err = r.GetOrCreateFrequency("embeddings", 64)
	require.Error(t, err)
}

func TestRegistryUpdateAndSerialize(t *testing.T) {
	r := NewRegistry()
	_, err := r.GetOrCreateQuantile("brightness", 0.01)
	require.NoError(t, err)
	require.NoError(t, r.UpdateQuantile("brightness", 128))

	var buf bytes.Buffer
	require.NoError(t, r.Serialize("brightness", &buf))
	require.NotEmpty(t, buf.Bytes())
}
