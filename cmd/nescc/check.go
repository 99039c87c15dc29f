package main

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"nescart/pkg/asm"
)

var checkCmd = &cobra.Command{
	Use:   "check listing.asm",
	Short: "Check a NESASM listing for label and bank errors",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCheck(args[0], cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(input string, stdout io.Writer) error {
	source, err := os.ReadFile(input)
	if err != nil {
		return errors.Wrap(err, "read listing")
	}
	listing, err := asm.Check(string(source))
	if err != nil {
		return errors.Wrap(err, input)
	}
	printStats(stdout, listing)
	return nil
}

func printStats(w io.Writer, listing *asm.Listing) {
	names := make([]string, 0, len(listing.Symbols))
	for name := range listing.Symbols {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		sym := listing.Symbols[name]
		if sym.Reserved {
			fmt.Fprintf(w, "  %-20s rs   $%04X\n", name, sym.Address)
			continue
		}
		fmt.Fprintf(w, "  %-20s bank %d $%04X\n", name, sym.Bank, sym.Address)
	}

	banks := make([]int, 0, len(listing.BankUsage))
	for b := range listing.BankUsage {
		banks = append(banks, b)
	}
	sort.Ints(banks)
	for _, b := range banks {
		fmt.Fprintf(w, "bank %d: %d/%d bytes\n", b, listing.BankUsage[b], asm.BankSize)
	}
}
