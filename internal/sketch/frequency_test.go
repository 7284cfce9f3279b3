package sketch

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFrequencyTracksHeaviestKeys(t *testing.T) {
	f := NewFrequency(2)
	for i := 0; i < 5; i++ {
		f.Update("a")
	}
	for i := 0; i < 3; i++ {
		f.Update("b")
	}
	f.Update("c")

	top := f.TopK(2)
	require.Len(t, top, 2)
	require.Equal(t, "a", top[0].Key)
	require.EqualValues(t, 5, top[0].Count)
}

func TestFrequencyRoundTrip(t *testing.T) {
	f := NewFrequency(64)
	f.Update("0")
	f.Update("0")
	f.Update("1")

	var buf bytes.Buffer
	require.NoError(t, f.Serialize(&buf))

	restored, err := DeserializeFrequency(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)

	top := restored.TopK(1)
	require.Len(t, top, 1)
	require.Equal(t, "0", top[0].Key)
	require.EqualValues(t, 2, top[0].Count)
}

func TestFrequencySerializeIsDeterministic(t *testing.T) {
	f := NewFrequency(8)
	f.Update("x")

	var a, b bytes.Buffer
	require.NoError(t, f.Serialize(&a))
	require.NoError(t, f.Serialize(&b))
	require.Equal(t, a.Bytes(), b.Bytes())
}
