package upload

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strconv"

	"github.com/lensai/edge-profiler/pkg/telemetryerrors"
)

// HTTPBackend implements the wire protocol spec.md §6 fixes: a multipart
// POST with sensor_id/timestamp/file_type/file fields and a bearer token.
type HTTPBackend struct {
	Client *http.Client
}

func NewHTTPBackend() *HTTPBackend {
	return &HTTPBackend{Client: &http.Client{}}
}

func (b *HTTPBackend) Upload(ctx context.Context, job Job) error {
	f, err := os.Open(job.GzPath)
	if err != nil {
		return telemetryerrors.WrapFilesystemError(job.GzPath, "open", err)
	}
	defer f.Close()

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		err := func() error {
			if err := mw.WriteField("sensor_id", job.SensorID); err != nil {
				return err
			}
			timestamp := strconv.FormatInt(job.CycleStart.Unix(), 10)
			if err := mw.WriteField("timestamp", timestamp); err != nil {
				return err
			}
			if err := mw.WriteField("file_type", job.FileType); err != nil {
				return err
			}

			header := textproto.MIMEHeader{}
			header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, filepath.Base(job.GzPath)))
			header.Set("Content-Type", "application/gzip")
			part, err := mw.CreatePart(header)
			if err != nil {
				return err
			}
			if _, err := io.Copy(part, f); err != nil {
				return err
			}
			return mw.Close()
		}()
		pw.CloseWithError(err)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, job.Endpoint, pr)
	if err != nil {
		return telemetryerrors.WrapTransportError(job.Endpoint, false, err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+job.Token)

	resp, err := b.Client.Do(req)
	if err != nil {
		return telemetryerrors.WrapTransportError(job.Endpoint, true, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return telemetryerrors.WrapTransportError(job.Endpoint, true, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	return nil
}
