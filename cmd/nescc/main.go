package main

import (
	"log"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "nescc",
	Short: "Compile program trees into NES cartridge listings",
	Long: `nescc turns a program tree, written as JSON, into a NESASM listing
that assembles into an NROM cartridge. It can also convert sprite sheets
into CHR pattern data and check hand-written listings.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("nescc: %v", err)
	}
}
