package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	stegano "github.com/yyyoichi/stegano_lsb"
	"github.com/yyyoichi/stegano_lsb/internal/imageio"
)

// Version is the version of the binary.
var Version = "0.0.0"

var (
	ErrInvalidUsage      = errors.New("invalid usage")
	ErrInputFileNotFound = imageio.ErrInputFileNotFound
	ErrSelfCheck         = errors.New("self-check failed")
)

// Execute runs the root command and exits with status 1 on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// NewRootCmd builds the steganohide command tree.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "steganohide <text-file> <image-file>",
		Short: "Hide a text file in the least significant bits of an image",
		Long: `steganohide hides the content of <text-file> in the least significant bit
of every channel of <image-file> and writes the result to <image-file>.ste.

The output keeps the input format when it is lossless (png, bmp, tiff) and
falls back to png otherwise. After writing, the payload is read back from the
new file and printed to stdout.

Every flag can also be set through the environment, e.g. STEGANOHIDE_WORKERS=4.`,
		Version:      Version,
		Args:         exactArgs(2),
		SilenceUsage: true,
		RunE:         runHide,
	}

	flags := rootCmd.PersistentFlags()
	flags.Int("channels", 0, "channels per pixel carrying bits: 1, 3 or 4 (0 detects from the image)")
	flags.Int("workers", 0, "number of concurrent workers (0 uses GOMAXPROCS)")
	flags.Bool("golay", false, "protect the payload with the Golay(23,12) code")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.Flags().StringP("output", "o", "", "output path (default <image-file>.ste)")

	rootCmd.AddCommand(newExtractCmd(), newCapacityCmd())
	return rootCmd
}

func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return fmt.Errorf("%w: accepts %d arg(s), received %d\nUsage: %s", ErrInvalidUsage, n, len(args), cmd.UseLine())
		}
		return nil
	}
}

func runHide(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd.Flags())
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg.LogLevel, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer logger.Sync()

	textPath, imagePath := args[0], args[1]
	for _, path := range args {
		if err := imageio.Exists(path); err != nil {
			return err
		}
	}
	text, err := os.ReadFile(textPath)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", textPath, err)
	}
	img, format, err := imageio.Load(imagePath)
	if err != nil {
		return err
	}

	s, err := stegano.New(cfg.options()...)
	if err != nil {
		return err
	}
	logger.Info("loaded carrier",
		zap.String("path", imagePath),
		zap.String("format", format),
		zap.Stringer("bounds", img.Bounds()),
		zap.Int("capacity", s.Capacity(img)),
		zap.Int("payload", len(text)),
	)

	ctx := cmd.Context()
	marked, err := s.Embed(ctx, img, text)
	if err != nil {
		return fmt.Errorf("failed to hide %s: %w", textPath, err)
	}

	output := cfg.Output
	if output == "" {
		output = imagePath + ".ste"
	}
	outFormat := imageio.OutputFormat(format)
	if outFormat != format {
		logger.Warn("input format is lossy, writing png instead", zap.String("format", format))
	}
	if err := imageio.Save(output, marked, outFormat); err != nil {
		return fmt.Errorf("failed to write %s: %w", output, err)
	}
	logger.Info("wrote stego image", zap.String("path", output), zap.String("format", outFormat))

	// read back from disk
	written, _, err := imageio.Load(output)
	if err != nil {
		return err
	}
	got, err := s.Extract(ctx, written)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSelfCheck, err)
	}
	if !bytes.Equal(got, text) {
		return fmt.Errorf("%w: extracted %d bytes differ from the input", ErrSelfCheck, len(got))
	}
	_, err = cmd.OutOrStdout().Write(got)
	return err
}
