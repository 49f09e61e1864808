package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"media-gallery/compiler"
	"media-gallery/locale"
)

var buildCmd = &cobra.Command{
	Use:   "build [manifest]",
	Short: "Render static index.<lang>.html pages and content.json",
	Args:  cobra.MaximumNArgs(1),
	RunE:  Build,
}

func init() {
	buildCmd.Flags().StringP("out", "o", "dist", "output directory")
	buildCmd.Flags().StringSlice("langs", []string{"cn", "en"}, "languages to render")
	buildCmd.Flags().String("media-base", "", "prefix for resource URLs")
	buildCmd.Flags().Bool("strict", false, "fail when resource lines are dropped")
	buildCmd.Flags().Bool("no-json", false, "do not write content.json")
	rootCmd.AddCommand(buildCmd)
}

func Build(cmd *cobra.Command, args []string) error {
	ctx, cfg, cleanup, err := setup(cmd)
	if err != nil {
		return err
	}
	defer cleanup()
	logger := log.FromContext(ctx)

	outDir, _ := cmd.Flags().GetString("out")
	rawLangs, _ := cmd.Flags().GetStringSlice("langs")
	mediaBase, _ := cmd.Flags().GetString("media-base")
	strict, _ := cmd.Flags().GetBool("strict")
	noJSON, _ := cmd.Flags().GetBool("no-json")

	langs := make([]locale.Language, 0, len(rawLangs))
	for _, raw := range rawLangs {
		lang, err := locale.Parse(raw)
		if err != nil {
			return err
		}
		langs = append(langs, lang)
	}

	comp, err := compiler.NewCompiler(newParser(cfg), outDir)
	if err != nil {
		return err
	}

	result, err := comp.Compile(ctx, manifestArg(cfg, args), &compiler.CompileOptions{
		Languages:  langs,
		MediaBase:  strings.TrimRight(mediaBase, "/"),
		StrictMode: strict,
		SkipJSON:   noJSON,
	})
	for _, warn := range result.Warnings {
		logger.Warn("riga scartata", "line", warn.Line, "text", warn.Text, "reason", warn.Reason)
	}
	if err != nil {
		return err
	}

	for _, file := range result.OutputFiles {
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", file, fileSize("", file))
	}
	logger.Info("build completata", "resources", result.Resources, "files", len(result.OutputFiles))
	return nil
}
