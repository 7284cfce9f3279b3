package upload

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/lensai/edge-profiler/pkg/telemetryerrors"
)

// S3Backend is the alternate upload path supplemented from
// _examples/original_source/include/objectuploader.h +
// src/helpers/s3_objectuploader.h, which show the original system
// switching between an HTTP endpoint and an S3 bucket per uploader
// instance. Selected via the `backend = s3` key in an uploader's INI
// section (internal/config.UploaderConfig.Backend).
type S3Backend struct {
	client *s3.Client
}

// NewS3Backend resolves AWS credentials/region the standard SDK way
// (environment, shared config, IAM role) and binds to region if non-empty.
func NewS3Backend(ctx context.Context, region string) (*S3Backend, error) {
	opts := []func(*awsconfig.LoadOptions) error{}
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, telemetryerrors.WrapConfigError("s3-backend", "region", err)
	}
	return &S3Backend{client: s3.NewFromConfig(cfg)}, nil
}

func (b *S3Backend) Upload(ctx context.Context, job Job) error {
	f, err := os.Open(job.GzPath)
	if err != nil {
		return telemetryerrors.WrapFilesystemError(job.GzPath, "open", err)
	}
	defer f.Close()

	key := filepath.Base(job.GzPath)
	if job.S3KeyPrefix != "" {
		key = job.S3KeyPrefix + "/" + key
	}

	_, err = b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: &job.S3Bucket,
		Key:    &key,
		Body:   f,
	})
	if err != nil {
		return telemetryerrors.WrapTransportError(fmt.Sprintf("s3://%s/%s", job.S3Bucket, key), true, err)
	}
	return nil
}
