package upload

import (
	"context"
	"time"
)

// Job is one upload attempt's worth of context: the gzipped archive on
// disk plus the descriptor fields a Backend needs to ship it.
type Job struct {
	GzPath      string
	Endpoint    string
	Token       string
	SensorID    string
	FileType    string
	CycleStart  time.Time
	S3Bucket    string
	S3Region    string
	S3KeyPrefix string
}

// Backend ships one archive somewhere. HTTPBackend and S3Backend are the
// two implementations; Manager is agnostic to which one a given uploader
// section configures (spec.md §6 only specifies the HTTP wire form — the
// S3 path is a supplemental backend, see SPEC_FULL.md §5 item 4).
type Backend interface {
	Upload(ctx context.Context, job Job) error
}
