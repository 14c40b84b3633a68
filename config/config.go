package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

const EnvPrefix = "ORGHUB"

type Config struct {
	ServiceName string `mapstructure:"service_name"`
	HTTPAddr    string `mapstructure:"http_addr"`
	LogLevel    string `mapstructure:"log_level"`

	Database      DatabaseConfig      `mapstructure:"database"`
	JWT           JWTConfig           `mapstructure:"jwt"`
	Storage       StorageConfig       `mapstructure:"storage"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Tracing       TracingConfig       `mapstructure:"tracing"`
	Admin         AdminConfig         `mapstructure:"admin"`
}

type DatabaseConfig struct {
	// Driver is one of "mysql" or "sqlite".
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

type JWTConfig struct {
	Secret string `mapstructure:"secret"`
	Issuer string `mapstructure:"issuer"`
}

type StorageConfig struct {
	// Driver is one of "none", "local" or "oss".
	Driver    string    `mapstructure:"driver"`
	LocalRoot string    `mapstructure:"local_root"`
	OSS       OSSConfig `mapstructure:"oss"`
}

type OSSConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
}

type ElasticsearchConfig struct {
	// URL empty disables search indexing.
	URL string `mapstructure:"url"`
}

type TracingConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

type AdminConfig struct {
	Email           string `mapstructure:"email"`
	InitialPassword string `mapstructure:"initial_password"`
}

// Load reads config.yaml from the given directories (current directory and ./config when none given),
// then applies ORGHUB_* environment overrides, e.g. ORGHUB_DATABASE_DSN.
func Load(paths ...string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if len(paths) == 0 {
		paths = []string{".", "./config"}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		logrus.Info("config file not found, using defaults and environment variables")
	}

	c := &Config{}
	if err := v.Unmarshal(c); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("service_name", "orghub")
	v.SetDefault("http_addr", ":8080")
	v.SetDefault("log_level", "info")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "file:orghub.db")

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.issuer", "orghub")

	v.SetDefault("storage.driver", "local")
	v.SetDefault("storage.local_root", "./storage")
	v.SetDefault("storage.oss.endpoint", "")
	v.SetDefault("storage.oss.access_key", "")
	v.SetDefault("storage.oss.secret_key", "")
	v.SetDefault("storage.oss.bucket", "orghub")

	v.SetDefault("elasticsearch.url", "")
	v.SetDefault("tracing.enabled", false)

	v.SetDefault("admin.email", "admin@example.com")
	v.SetDefault("admin.initial_password", "password")
}

func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "mysql", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver '%s'", c.Database.Driver)
	}
	switch c.Storage.Driver {
	case "none", "local", "oss":
	default:
		return fmt.Errorf("unsupported storage driver '%s'", c.Storage.Driver)
	}
	if len(c.JWT.Secret) < 16 {
		return errors.New("jwt secret must be at least 16 characters")
	}
	return nil
}
