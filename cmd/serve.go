package cmd

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"media-gallery/api"
	"media-gallery/config"
	"media-gallery/loader"
	"media-gallery/modal"
	"media-gallery/preload"
	"media-gallery/prefs"
	"media-gallery/session"
	"media-gallery/watcher"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the gallery, its API and the websocket for displays",
	RunE:  Serve,
}

func init() {
	config.RegisterServeFlags(serveCmd)
	serveCmd.Flags().Bool("init-config", false, "write config.toml with the default values if missing")
	rootCmd.AddCommand(serveCmd)
}

func Serve(cmd *cobra.Command, _ []string) error {
	if initConfig, _ := cmd.Flags().GetBool("init-config"); initConfig {
		if err := config.WriteDefault(config.New(""), "config.toml"); err != nil {
			return err
		}
	}

	ctx, cfg, cleanup, err := setup(cmd)
	if err != nil {
		return err
	}
	defer cleanup()
	logger := log.FromContext(ctx)

	var store prefs.Store
	if cfg.DB.Persist {
		store, err = prefs.OpenSQLite(ctx, cfg.DB.Path)
		if err != nil {
			return err
		}
	} else {
		store = prefs.NewMemoryStore()
	}
	defer store.Close()

	source := loader.NewSource(cfg.Content.Manifest, cfg.Content.FetchRetries)

	var preloader *preload.Preloader
	if cfg.Preload.Enable {
		var prober preload.Prober = preload.NewFileProber(cfg.Content.Root)
		if cfg.Preload.BaseURL != "" {
			prober = preload.NewHTTPProber(cfg.Preload.BaseURL, nil)
		}
		preloader, err = preload.NewPreloader(prober,
			preload.WithTimeout(cfg.Preload.Timeout),
			preload.WithCacheTTL(cfg.Preload.CacheTTL),
			preload.WithConcurrency(cfg.Preload.Concurrency),
		)
		if err != nil {
			return err
		}
		defer preloader.Close()
	}

	sess := session.New(session.Options{
		Source:           source,
		Parser:           newParser(cfg),
		Store:            store,
		Preloader:        preloader,
		Stage:            modal.NewStage(),
		RememberLanguage: cfg.Language.Remember,
		Language:         cfg.DefaultLanguage(),
	})

	fw, err := startWatcher(ctx, cfg, source, sess)
	if err != nil {
		return err
	}
	if fw != nil {
		defer fw.Stop()
	}

	if err := sess.Start(ctx); err != nil {
		logger.Warn("avvio senza contenuto", "err", err)
	}

	server := api.NewServer(api.ServerConfig{
		Addr:           cfg.Addr(),
		Session:        sess,
		Watcher:        fw,
		Root:           cfg.Content.Root,
		ResourceDir:    cfg.Content.ResourceDir,
		EnableCORS:     cfg.Server.CORS,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Debug:          cfg.Server.Mode == "debug",
		Version:        Version,
		Logger:         logger,
	})
	return server.Start(ctx)
}

// startWatcher ricarica la galleria quando il manifest locale cambia
func startWatcher(ctx context.Context, cfg *config.Config, source loader.Source, sess *session.Session) (*watcher.FileWatcher, error) {
	if !cfg.Content.Watch {
		return nil, nil
	}
	fileSource, ok := source.(*loader.FileSource)
	if !ok {
		log.FromContext(ctx).Warn("monitoraggio disponibile solo per manifest locali", "manifest", source.String())
		return nil, nil
	}

	var fw *watcher.FileWatcher
	var err error
	fw, err = watcher.NewFileWatcher(watcher.WatcherConfig{
		Files: []string{fileSource.Path},
		OnChange: func(ctx context.Context, event watcher.WatchEvent) {
			if _, chosen := sess.Language(); !chosen {
				return
			}
			if err := sess.Load(ctx); err != nil {
				fw.Notify(watcher.WatchEvent{Type: "reload_error", Path: event.Path, Error: err.Error()})
				return
			}
			fw.Notify(watcher.WatchEvent{Type: "reloaded", Path: event.Path})
		},
	})
	if err != nil {
		return nil, err
	}
	if err := fw.Start(ctx); err != nil {
		return nil, err
	}
	return fw, nil
}
