package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xplshn/cflatc/pkg/config"
)

var checkCmd = &cobra.Command{
	Use:   "check <source.cf>",
	Short: "Run name analysis and type checking without generating code",
	Args:  cobra.ExactArgs(1),
	RunE:  runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg := config.New()
	fe, err := runFrontend(args[0], cfg)
	if err != nil {
		return err
	}
	fe.sink.Flush()
	if fe.sink.FatalCount() > 0 {
		return fmt.Errorf("%d error(s)", fe.sink.FatalCount())
	}
	fmt.Println("OK")
	return nil
}
