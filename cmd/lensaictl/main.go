// Command lensaictl drives the on-device telemetry pipeline over a
// directory of images: it loads a config file, wires up the profile
// facades and an uploader, and feeds every image under image_dir
// through a model. Grounded on
// _examples/jsturma-joblet/cmd/rnx/main.go's Execute()-and-exit-code
// shape, and on
// _examples/original_source/examples/TFLite/Classification_Binary/main.cpp
// for the <model> <labels> <image_dir> <config> argument order and the
// per-image profile/sample/log_classification_model_stats call
// sequence. Model inference itself is out of scope: InferenceRunner is
// a seam a real TFLite/ONNX backend plugs into.
package main

import (
	"fmt"
	"os"

	"github.com/lensai/edge-profiler/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
