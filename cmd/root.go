package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"media-gallery/config"
	"media-gallery/formats"
	"media-gallery/logger"
	"media-gallery/parser"
)

var rootCmd = &cobra.Command{
	Use:           "gallery",
	Short:         "Bilingual media gallery driven by a plain-text manifest",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	config.RegisterFlags(rootCmd)
}

func Execute(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup carica la configurazione e prepara il logger nel contesto
func setup(cmd *cobra.Command) (context.Context, *config.Config, func(), error) {
	v := config.New(config.GetConfigFile(cmd))
	config.BindFlags(v, cmd)
	cfg, err := config.Load(v)
	if err != nil {
		return nil, nil, nil, err
	}

	l, closer, err := logger.New(logger.Options{Level: cfg.Log.Level, File: cfg.Log.File})
	if err != nil {
		return nil, nil, nil, err
	}
	cleanup := func() {
		if closer != nil {
			_ = closer.Close()
		}
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return logger.Into(ctx, l), cfg, cleanup, nil
}

// newParser crea il parser secondo la configurazione
func newParser(cfg *config.Config) *parser.ManifestParser {
	return parser.NewManifestParser(
		parser.WithResourceDir(cfg.Content.ResourceDir),
		parser.WithDialect(formats.GetRegisteredFormat(cfg.Content.Dialect)),
	)
}

// manifestArg usa l'argomento se presente, altrimenti il manifest configurato
func manifestArg(cfg *config.Config, args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return cfg.Content.Manifest
}
