package saver

import (
	"image"
	"io"
)

// Kind is the tagged variant spec.md §9 calls for: a compile-time-audited
// enumeration of save-job shapes rather than a virtual dispatch base.
type Kind int

const (
	KindQuantileSketch Kind = iota
	KindFrequencySketch
	KindPngImage
	KindJpegImage
)

// DefaultMaxDirBytes is max_size(=1024 KiB) * 1024, spec.md §9's resolved
// Open Question on the directory-size cap default.
const DefaultMaxDirBytes int64 = 1024 * 1024

// Serializer is implemented by internal/sketch.Registry; the Saver holds
// only this narrow, non-owning view so sketch lifetime stays with the
// profile that created the registry (spec.md §9, "cyclic and
// back-references").
type Serializer interface {
	Serialize(name string, w io.Writer) error
}

// Job is one save-job descriptor (spec.md §3's "Save job" record).
type Job struct {
	Kind        Kind
	TargetPath  string
	MaxDirBytes int64

	// Sketch jobs: a borrowed registry + the metric name to serialize.
	Registry   Serializer
	MetricName string

	// Image jobs: an owned, one-shot image buffer.
	Image image.Image
}
