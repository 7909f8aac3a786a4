package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	stegano "github.com/yyyoichi/stegano_lsb"
	"github.com/yyyoichi/stegano_lsb/internal/imageio"
)

func newCapacityCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "capacity <image-file>",
		Short: "Print how many bytes an image can hide",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd.Flags())
			if err != nil {
				return err
			}
			img, _, err := imageio.Load(args[0])
			if err != nil {
				return err
			}
			b, err := stegano.NewBatch(img, cfg.options()...)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "width: %d\n", img.Bounds().Dx())
			fmt.Fprintf(out, "height: %d\n", img.Bounds().Dy())
			fmt.Fprintf(out, "channels: %d\n", b.Channels())
			fmt.Fprintf(out, "capacity: %d bytes\n", b.Capacity())
			return nil
		},
	}
}
