package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"media-gallery/compiler"
	"media-gallery/test"
)

var checkCmd = &cobra.Command{
	Use:   "check <dir>",
	Short: "Parse every *.txt manifest in a directory and write .parsed.json reports",
	Args:  cobra.ExactArgs(1),
	RunE:  Check,
}

func init() {
	checkCmd.Flags().Bool("strict", false, "count manifests with dropped lines as failed")
	checkCmd.Flags().Bool("compile", false, "also render each manifest into <name>_compiled/")
	checkCmd.Flags().Bool("all-dialects", false, "treat <dir> as a base with one subdirectory per dialect")
	rootCmd.AddCommand(checkCmd)
}

func Check(cmd *cobra.Command, args []string) error {
	ctx, cfg, cleanup, err := setup(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	strict, _ := cmd.Flags().GetBool("strict")
	compile, _ := cmd.Flags().GetBool("compile")
	allDialects, _ := cmd.Flags().GetBool("all-dialects")

	var comp *compiler.Compiler
	if compile {
		comp, err = compiler.NewCompiler(newParser(cfg), "")
		if err != nil {
			return err
		}
	}

	runner := test.NewTestRunner(args[0], comp, cmd.OutOrStdout())
	runner.Strict = strict

	failed := 0
	if allDialects {
		dialects, err := runner.GetAvailableFormats()
		if err != nil {
			return err
		}
		for _, dialect := range dialects {
			summary, err := runner.RunTests(ctx, dialect)
			if err != nil {
				return err
			}
			failed += summary.ParseFailed + summary.CompileFailed
		}
	} else {
		summary, err := runner.Run(ctx, args[0], cfg.Content.Dialect)
		if err != nil {
			return err
		}
		failed = summary.ParseFailed + summary.CompileFailed
	}

	if failed > 0 {
		return fmt.Errorf("%d manifest non validi", failed)
	}
	return nil
}
