package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"nescart/pkg/asm"
	"nescart/pkg/cart"
	"nescart/pkg/chr"
	"nescart/pkg/compiler"
	"nescart/pkg/utils"
)

type buildOptions struct {
	out       string
	chr       string
	header    cart.Header
	noCheck   bool
	showStats bool
}

var buildOpts = buildOptions{header: cart.DefaultHeader()}

// buildCmd represents the build command
var buildCmd = &cobra.Command{
	Use:   "build tree.json",
	Short: "Compile a program tree into a NESASM listing",
	Long: `Build reads a program tree in JSON form, compiles it and writes the
listing next to the input with an .asm extension, or to --out. Pass
--out - to print the listing instead.

--chr takes either raw pattern data (.chr/.bin) or an image whose 8x8
tiles are converted on the fly.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBuild(args[0], buildOpts, cmd.OutOrStdout())
	},
}

func init() {
	f := buildCmd.Flags()
	f.StringVarP(&buildOpts.out, "out", "o", "", "output listing (default: input with .asm extension, - for stdout)")
	f.StringVar(&buildOpts.chr, "chr", "", "pattern data or sprite sheet for the CHR bank")
	f.IntVar(&buildOpts.header.PRG, "prg", buildOpts.header.PRG, "number of 16 KiB PRG banks")
	f.IntVar(&buildOpts.header.CHR, "chr-banks", buildOpts.header.CHR, "number of 8 KiB CHR banks")
	f.IntVar(&buildOpts.header.Mapper, "mapper", buildOpts.header.Mapper, "iNES mapper number")
	f.IntVar(&buildOpts.header.Mirroring, "mirroring", buildOpts.header.Mirroring, "0 horizontal, 1 vertical")
	f.BoolVar(&buildOpts.noCheck, "no-check", false, "skip checking the generated listing")
	f.BoolVar(&buildOpts.showStats, "stats", false, "print symbols and bank usage")
	rootCmd.AddCommand(buildCmd)
}

func runBuild(input string, o buildOptions, stdout io.Writer) error {
	fullPath, _, err := utils.GetPathInfo(input)
	if err != nil {
		return err
	}
	f, err := os.Open(fullPath)
	if err != nil {
		return errors.Wrap(err, "open program tree")
	}
	defer f.Close()

	mod, err := compiler.DecodeModule(f)
	if err != nil {
		return errors.Wrapf(err, "read %s", input)
	}

	opts := []compiler.Option{compiler.WithHeader(o.header)}
	if o.chr != "" {
		data, err := loadCHR(o.chr)
		if err != nil {
			return err
		}
		opts = append(opts, compiler.WithCHR(data))
	}

	code, err := compiler.Generate(mod, opts...)
	if err != nil {
		return errors.Wrapf(err, "compile %s", input)
	}

	if !o.noCheck {
		listing, err := asm.Check(code)
		if err != nil {
			return errors.Wrap(err, "generated listing does not check")
		}
		if o.showStats {
			printStats(stdout, listing)
		}
	}

	out := o.out
	if out == "" {
		out = utils.OutputPath(fullPath, ".asm")
	}
	if out == "-" {
		_, err := io.WriteString(stdout, code)
		return err
	}
	if err := os.WriteFile(out, []byte(code), 0o644); err != nil {
		return errors.Wrap(err, "write listing")
	}
	fmt.Fprintf(stdout, "wrote %s\n", out)
	return nil
}

// loadCHR reads raw pattern data, or encodes an image into it.
func loadCHR(path string) ([]byte, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".chr", ".bin":
		data, err := os.ReadFile(path)
		return data, errors.Wrap(err, "read CHR data")
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open sprite sheet")
	}
	defer f.Close()
	img, err := chr.Decode(f)
	if err != nil {
		return nil, err
	}
	data, err := chr.Encode(img)
	return data, errors.Wrapf(err, "encode %s", path)
}
