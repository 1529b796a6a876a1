// Command cflatc compiles the source language spec.md describes into
// SPIM-dialect MIPS assembly.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "cflatc",
	Short: "cflatc — a name analysis / type check / MIPS codegen compiler",
	Long: `cflatc compiles a small statically-typed imperative language to
SPIM-compatible MIPS assembly.

Commands:
  build   Compile a source file into assembly
  check   Run name analysis and type checking without generating code
`,
}

func main() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print a build banner with the build id and timing")
	rootCmd.AddCommand(buildCmd, checkCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
