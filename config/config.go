package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/viper"

	"media-gallery/formats"
	"media-gallery/locale"
)

type Config struct {
	Server   serverConfig   `toml:"server" mapstructure:"server"`
	Content  contentConfig  `toml:"content" mapstructure:"content"`
	Preload  preloadConfig  `toml:"preload" mapstructure:"preload"`
	Language languageConfig `toml:"language" mapstructure:"language"`
	Log      logConfig      `toml:"log" mapstructure:"log"`
	DB       dbConfig       `toml:"db" mapstructure:"db"`
}

type serverConfig struct {
	Host           string   `toml:"host" mapstructure:"host"`
	Port           int      `toml:"port" mapstructure:"port"`
	Mode           string   `toml:"mode" mapstructure:"mode"`
	CORS           bool     `toml:"cors" mapstructure:"cors"`
	AllowedOrigins []string `toml:"allowed_origins" mapstructure:"allowed_origins" json:"allowed_origins"`
}

type contentConfig struct {
	// Manifest è un percorso locale o un URL http(s)
	Manifest     string `toml:"manifest" mapstructure:"manifest"`
	ResourceDir  string `toml:"resource_dir" mapstructure:"resource_dir" json:"resource_dir"`
	Root         string `toml:"root" mapstructure:"root"`
	Dialect      string `toml:"dialect" mapstructure:"dialect"`
	FetchRetries uint64 `toml:"fetch_retries" mapstructure:"fetch_retries" json:"fetch_retries"`
	Watch        bool   `toml:"watch" mapstructure:"watch"`
}

type preloadConfig struct {
	Enable   bool          `toml:"enable" mapstructure:"enable"`
	Timeout  time.Duration `toml:"timeout" mapstructure:"timeout"`
	CacheTTL time.Duration `toml:"cache_ttl" mapstructure:"cache_ttl" json:"cache_ttl"`
	// Concurrency limita le verifiche contemporanee (0 = nessun limite)
	Concurrency int `toml:"concurrency" mapstructure:"concurrency"`
	// BaseURL se impostato verifica le risorse via HEAD invece che su disco
	BaseURL string `toml:"base_url" mapstructure:"base_url" json:"base_url"`
}

type languageConfig struct {
	Remember bool   `toml:"remember" mapstructure:"remember"`
	Default  string `toml:"default" mapstructure:"default"`
}

type logConfig struct {
	Level string `toml:"level" mapstructure:"level"`
	File  string `toml:"file" mapstructure:"file"`
}

type dbConfig struct {
	Path    string `toml:"path" mapstructure:"path"`
	Persist bool   `toml:"persist" mapstructure:"persist"`
}

// Addr restituisce host:porta del server
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// DefaultLanguage restituisce la lingua iniziale configurata
func (c *Config) DefaultLanguage() locale.Language {
	lang, err := locale.Parse(c.Language.Default)
	if err != nil {
		return locale.Default
	}
	return lang
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.cors", false)
	v.SetDefault("server.allowed_origins", []string{"*"})

	v.SetDefault("content.manifest", "website-content.txt")
	v.SetDefault("content.resource_dir", "资源")
	v.SetDefault("content.root", ".")
	v.SetDefault("content.dialect", formats.Extended)
	v.SetDefault("content.fetch_retries", 3)
	v.SetDefault("content.watch", true)

	v.SetDefault("preload.enable", true)
	v.SetDefault("preload.timeout", "5s")
	v.SetDefault("preload.cache_ttl", "1m")
	v.SetDefault("preload.concurrency", 0)

	v.SetDefault("language.remember", true)
	v.SetDefault("language.default", "cn")

	v.SetDefault("log.level", "INFO")

	v.SetDefault("db.path", "data/gallery.db")
	v.SetDefault("db.persist", true)
}

// New crea un'istanza viper con default, variabili GALLERY_* e file opzionale
func New(configFile string) *viper.Viper {
	v := viper.New()
	v.SetConfigType("toml")
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/media-gallery/")
	}
	v.SetEnvPrefix("GALLERY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

// Load legge la configurazione. Senza file vengono usati i default.
func Load(v *viper.Viper) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("errore lettura config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("errore decodifica config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// WriteDefault scrive il file di configurazione se non esiste
func WriteDefault(v *viper.Viper, path string) error {
	if err := v.SafeWriteConfigAs(path); err != nil {
		var exists viper.ConfigFileAlreadyExistsError
		if !errors.As(err, &exists) {
			return fmt.Errorf("errore salvataggio config di default: %w", err)
		}
	}
	return nil
}

// Validate controlla i valori che altrimenti fallirebbero più tardi
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("porta non valida: %d", c.Server.Port)
	}
	if c.Content.Manifest == "" {
		return errors.New("content.manifest non può essere vuoto")
	}
	if !formats.IsFormatRegistered(c.Content.Dialect) {
		return fmt.Errorf("dialetto sconosciuto: %q (disponibili: %s)",
			c.Content.Dialect, strings.Join(formats.GetAvailableFormats(), ", "))
	}
	if _, err := locale.Parse(c.Language.Default); err != nil {
		return err
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("livello di log non valido: %w", err)
	}
	if c.Preload.Timeout <= 0 {
		return fmt.Errorf("preload.timeout deve essere positivo")
	}
	if c.Preload.Concurrency < 0 {
		return fmt.Errorf("preload.concurrency non può essere negativo")
	}
	return nil
}
