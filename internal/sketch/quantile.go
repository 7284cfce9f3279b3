// Package sketch wraps the quantile and frequent-items sketch algorithms
// the registry keeps one of per metric name. Both are treated as opaque
// collaborators by the rest of the module: update, serialize, and nothing
// else is assumed about their internals.
package sketch

import (
	"io"

	"github.com/DataDog/sketches-go/ddsketch"
	"github.com/DataDog/sketches-go/ddsketch/pb/sketchpb"
	"google.golang.org/protobuf/proto"
)

// defaultRelativeAccuracy mirrors the error-vs-memory tradeoff spec.md §4.1
// calls out for per-class sketches; callers needing a different capacity
// pass their own accuracy via NewQuantileWithAccuracy.
const defaultRelativeAccuracy = 0.01

// Quantile is a streaming quantile sketch over float32/float64 samples.
// Update is not safe for concurrent callers; the registry is responsible
// for serialising access (see Registry).
type Quantile struct {
	inner *ddsketch.DDSketch
}

func NewQuantile() (*Quantile, error) {
	return NewQuantileWithAccuracy(defaultRelativeAccuracy)
}

func NewQuantileWithAccuracy(relativeAccuracy float64) (*Quantile, error) {
	s, err := ddsketch.NewDefaultDDSketch(relativeAccuracy)
	if err != nil {
		return nil, err
	}
	return &Quantile{inner: s}, nil
}

// Update folds one observation into the sketch.
func (q *Quantile) Update(x float64) error {
	return q.inner.Add(x)
}

// GetQuantile returns the approximate value at quantile p (p in [0, 1]).
func (q *Quantile) GetQuantile(p float64) (float64, error) {
	return q.inner.GetValueAtQuantile(p)
}

// Count returns the number of observations folded into the sketch.
func (q *Quantile) Count() float64 {
	return q.inner.GetCount()
}

// Serialize writes the sketch's self-describing wire form to w. Repeated
// calls on an unchanged sketch produce byte-identical output, satisfying
// the contract in spec.md §3.
func (q *Quantile) Serialize(w io.Writer) error {
	pb := q.inner.ToProto()
	data, err := proto.Marshal(pb)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// DeserializeQuantile reconstructs a Quantile from bytes produced by
// Serialize, used by round-trip law R1.
func DeserializeQuantile(r io.Reader) (*Quantile, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	pb := new(sketchpb.DDSketch)
	if err := proto.Unmarshal(data, pb); err != nil {
		return nil, err
	}
	s, err := ddsketch.FromProto(pb)
	if err != nil {
		return nil, err
	}
	return &Quantile{inner: s}, nil
}
