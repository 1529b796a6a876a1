package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/ncruces/go-strftime"
	"github.com/spf13/cobra"

	"github.com/xplshn/cflatc/pkg/asm"
	"github.com/xplshn/cflatc/pkg/codegen"
	"github.com/xplshn/cflatc/pkg/config"
)

var (
	outFile     string
	featStructs bool
	featRepeat  bool
	warnShadow  bool
)

var buildCmd = &cobra.Command{
	Use:   "build <source.cf>",
	Short: "Compile a source file into assembly",
	Args:  cobra.ExactArgs(1),
	RunE:  runBuild,
}

func init() {
	buildCmd.Flags().StringVarP(&outFile, "output", "o", "a.s", "assembly output path")
	buildCmd.Flags().BoolVar(&featStructs, "Fstructs", false, "complete struct field load/store codegen")
	buildCmd.Flags().BoolVar(&featRepeat, "Frepeat", false, "complete repeat-statement codegen")
	buildCmd.Flags().BoolVar(&warnShadow, "Wshadow", false, "warn when a local/formal shadows a global")
}

func runBuild(cmd *cobra.Command, args []string) error {
	start := time.Now()
	buildID := uuid.New().String()

	cfg := config.New()
	cfg.SetFeature(config.FeatStructs, featStructs)
	cfg.SetFeature(config.FeatRepeat, featRepeat)
	cfg.SetWarning(config.WarnShadow, warnShadow)

	fe, err := runFrontend(args[0], cfg)
	if err != nil {
		return err
	}
	fe.sink.Flush()
	if fe.sink.FatalCount() > 0 {
		return fmt.Errorf("%d error(s), no assembly emitted", fe.sink.FatalCount())
	}

	out, err := os.Create(outFile)
	if err != nil {
		return err
	}
	defer out.Close()

	writer := asm.New(out)
	stamp := strftime.Format("%Y-%m-%d %H:%M:%S", time.Now())
	writer.Comment(fmt.Sprintf("generated by cflatc build %s (%s)", buildID, stamp))

	gen := codegen.New(writer, cfg)
	gen.Generate(fe.prog)

	if verbose {
		elapsed := humanize.RelTime(start, time.Now(), "", "")
		fmt.Printf("build %s: wrote %s in %s\n", buildID, outFile, strings.TrimSpace(elapsed))
	}
	return nil
}
