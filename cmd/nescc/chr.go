package main

import (
	"fmt"
	"image/png"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"nescart/pkg/chr"
	"nescart/pkg/utils"
)

type chrOptions struct {
	out     string
	preview string
	scale   int
}

var chrOpts = chrOptions{scale: 4}

var chrCmd = &cobra.Command{
	Use:   "chr image",
	Short: "Convert a sprite sheet into CHR pattern data",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCHR(args[0], chrOpts, cmd.OutOrStdout())
	},
}

func init() {
	f := chrCmd.Flags()
	f.StringVarP(&chrOpts.out, "out", "o", "", "output file (default: input with .chr extension)")
	f.StringVar(&chrOpts.preview, "preview", "", "also write a PNG preview of the encoded tiles")
	f.IntVar(&chrOpts.scale, "scale", chrOpts.scale, "preview zoom factor")
	rootCmd.AddCommand(chrCmd)
}

func runCHR(input string, o chrOptions, stdout io.Writer) error {
	data, err := loadCHR(input)
	if err != nil {
		return err
	}

	out := o.out
	if out == "" {
		out = utils.OutputPath(input, ".chr")
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return errors.Wrap(err, "write CHR data")
	}
	fmt.Fprintf(stdout, "wrote %s (%d tiles)\n", out, len(data)/chr.BytesPerTile)

	if o.preview == "" {
		return nil
	}
	f, err := os.Create(o.preview)
	if err != nil {
		return errors.Wrap(err, "create preview")
	}
	if err := png.Encode(f, chr.Preview(data, nil, o.scale)); err != nil {
		f.Close()
		return errors.Wrap(err, "encode preview")
	}
	return errors.Wrap(f.Close(), "close preview")
}
