package config

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// RegisterFlags aggiunge i flag persistenti che sovrascrivono il file
func RegisterFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()

	flags.StringP("config", "c", "", "config file path")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("manifest", "", "manifest path or URL")
	flags.String("resource-dir", "", "resource directory prefix")
	flags.String("dialect", "", "manifest dialect")
}

// RegisterServeFlags aggiunge i flag del server
func RegisterServeFlags(cmd *cobra.Command) {
	flags := cmd.Flags()

	flags.StringP("host", "H", "", "listen host")
	flags.IntP("port", "p", 0, "listen port")
	flags.Bool("cors", false, "enable CORS")
	flags.Bool("no-watch", false, "disable manifest watcher")
	flags.Bool("no-preload", false, "disable resource preload")
	flags.Bool("no-persist", false, "keep language preference in memory only")
	flags.String("root", "", "site root serving the resource directory")
}

// BindFlags collega a viper i flag effettivamente impostati
func BindFlags(v *viper.Viper, cmd *cobra.Command) {
	bind := func(key, flag string) {
		if f := cmd.Flags().Lookup(flag); f != nil && f.Changed {
			v.Set(key, f.Value.String())
		}
	}
	negate := func(key, flag string) {
		if f := cmd.Flags().Lookup(flag); f != nil && f.Changed && f.Value.String() == "true" {
			v.Set(key, false)
		}
	}

	bind("log.level", "log-level")
	bind("content.manifest", "manifest")
	bind("content.resource_dir", "resource-dir")
	bind("content.dialect", "dialect")
	bind("content.root", "root")
	bind("server.host", "host")
	bind("server.port", "port")
	bind("server.cors", "cors")

	negate("content.watch", "no-watch")
	negate("preload.enable", "no-preload")
	negate("db.persist", "no-persist")
}

// GetConfigFile restituisce il valore del flag --config
func GetConfigFile(cmd *cobra.Command) string {
	configFile, _ := cmd.Flags().GetString("config")
	return configFile
}
