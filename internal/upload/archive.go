// Package upload implements the archiver/uploader described in spec.md
// §4.3: per-folder tar+gzip bundling, an HTTP multipart upload backend (and
// an alternate S3 backend, a feature supplemented from
// _examples/original_source/include/objectuploader.h), round-robin
// scheduling, retry, and cross-process locking shared with internal/saver.
package upload

import (
	"archive/tar"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/lensai/edge-profiler/pkg/telemetryerrors"
)

// archivePaths returns the tar/gz staging paths for a watched folder,
// normalized the same way internal/lockfile normalizes the lock sentinel.
func archivePaths(folder string) (tarPath, gzPath string) {
	base := strings.TrimRight(folder, "/\\")
	return base + "_archive_lock.tar", base + "_archive_lock.tar.gz"
}

// createTar walks folder recursively and writes every regular file whose
// path does not contain "_lock" into tarPath, with paths stored relative
// to folder (I2, R2, R3).
func createTar(folder, tarPath string) error {
	f, err := os.Create(tarPath)
	if err != nil {
		return telemetryerrors.WrapFilesystemError(tarPath, "create", err)
	}
	defer f.Close()

	tw := tar.NewWriter(f)
	defer tw.Close()

	err = filepath.Walk(folder, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		if strings.Contains(path, "_lock") {
			return nil
		}

		rel, err := filepath.Rel(folder, path)
		if err != nil {
			return err
		}

		hdr, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		hdr.Name = filepath.ToSlash(rel)

		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}

		src, err := os.Open(path)
		if err != nil {
			return err
		}
		defer src.Close()

		_, err = io.Copy(tw, src)
		return err
	})
	if err != nil {
		return telemetryerrors.WrapFilesystemError(folder, "tar", err)
	}
	return nil
}

// compressToGz gzip-streams tarPath into gzPath.
func compressToGz(tarPath, gzPath string) error {
	src, err := os.Open(tarPath)
	if err != nil {
		return telemetryerrors.WrapFilesystemError(tarPath, "open", err)
	}
	defer src.Close()

	dst, err := os.Create(gzPath)
	if err != nil {
		return telemetryerrors.WrapFilesystemError(gzPath, "create", err)
	}
	defer dst.Close()

	gw := gzip.NewWriter(dst)
	if _, err := io.Copy(gw, src); err != nil {
		gw.Close()
		return telemetryerrors.WrapFilesystemError(gzPath, "gzip", err)
	}
	return gw.Close()
}

// ExtractArchive reverses compressToGz + createTar: it decompresses gzPath
// and unpacks it under destDir, reproducing the original relative layout.
// The original C++ tar_gz_creator.cpp's unpackTar is a stub that always
// returns true; round-trip law R2 requires a real implementation here.
func ExtractArchive(gzPath, destDir string) error {
	f, err := os.Open(gzPath)
	if err != nil {
		return telemetryerrors.WrapFilesystemError(gzPath, "open", err)
	}
	defer f.Close()

	gr, err := gzip.NewReader(f)
	if err != nil {
		return telemetryerrors.WrapFilesystemError(gzPath, "gunzip", err)
	}
	defer gr.Close()

	tr := tar.NewReader(gr)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return telemetryerrors.WrapFilesystemError(gzPath, "untar", err)
		}

		target := filepath.Join(destDir, filepath.FromSlash(hdr.Name))
		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return telemetryerrors.WrapFilesystemError(target, "mkdir", err)
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return telemetryerrors.WrapFilesystemError(target, "mkdir", err)
			}
			out, err := os.Create(target)
			if err != nil {
				return telemetryerrors.WrapFilesystemError(target, "create", err)
			}
			if _, err := io.Copy(out, tr); err != nil {
				out.Close()
				return telemetryerrors.WrapFilesystemError(target, "write", err)
			}
			out.Close()
		}
	}
}

// emptyFolder removes every regular file under folder while preserving
// its subdirectory structure, skipping the lock sentinel itself.
func emptyFolder(folder string) error {
	return filepath.Walk(folder, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if info.IsDir() || path == folder {
			return nil
		}
		if strings.Contains(path, "_lock") {
			return nil
		}
		return os.Remove(path)
	})
}
