// Package cli implements the lensaictl command surface. Grounded on
// _examples/jsturma-joblet/internal/rnx/cli/root.go's cobra root
// command plus Execute() entry point, trimmed to this driver's single
// subcommand.
package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "lensaictl <model> <labels> <image_dir> <config>",
	Short: "Run a model over a directory of images, feeding its telemetry pipeline",
	Long: `lensaictl loads a model and its label file, walks every image under
image_dir, and runs each through the model while feeding inference
results into the image, sampling and model profiles configured in the
INI file at <config>. Configured tracker and custom profiles are
constructed but receive no data from this driver. It also starts one uploader
per configured uploader section so archived stats leave the device on
their configured interval.`,
	Args: cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunPipeline(args[0], args[1], args[2], args[3])
	},
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// Execute runs the root command and returns its error, if any.
func Execute() error {
	return rootCmd.Execute()
}
