package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	stegano "github.com/yyyoichi/stegano_lsb"
	"github.com/yyyoichi/stegano_lsb/internal/imageio"
)

func newExtractCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "extract <image-file>",
		Short: "Print the payload hidden in an image",
		Long: `extract reads the payload hidden by steganohide and prints it to stdout.
An image without a payload is not an error: a notice is printed to stderr.
Use the same --channels and --golay values that were used for hiding.`,
		Args: exactArgs(1),
		RunE: runExtract,
	}
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd.Flags())
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg.LogLevel, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer logger.Sync()

	img, format, err := imageio.Load(args[0])
	if err != nil {
		return err
	}
	if !imageio.IsLossless(format) {
		logger.Warn("lossy format, hidden data is unlikely to survive", zap.String("format", format))
	}

	payload, err := stegano.Extract(cmd.Context(), img, cfg.options()...)
	if errors.Is(err, stegano.ErrNoHiddenData) {
		logger.Debug("extract failed", zap.Error(err))
		fmt.Fprintf(cmd.ErrOrStderr(), "no hidden data found in %s\n", args[0])
		return nil
	}
	if err != nil {
		return err
	}
	logger.Info("extracted payload", zap.String("path", args[0]), zap.Int("bytes", len(payload)))
	_, err = cmd.OutOrStdout().Write(payload)
	return err
}
