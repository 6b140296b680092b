package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/apache/iceberg-go"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/xixipi-lining/iceberg-rest-client/auth"
	"github.com/xixipi-lining/iceberg-rest-client/catalog"
	"github.com/xixipi-lining/iceberg-rest-client/logger"
)

const (
	cfgFile   = ".iceberg-go.yaml"
	envPrefix = "ICEREST"
)

var errConfig = errors.New("configuration error")

// Config mirrors .iceberg-go.yaml.
type Config struct {
	DefaultCatalog string                        `mapstructure:"default-catalog"`
	Catalogs       map[string]iceberg.Properties `mapstructure:"catalogs"`
	Log            logger.Config                 `mapstructure:"log"`
}

func configPath(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if dir := os.Getenv("GOICEBERG_HOME"); dir != "" {
		return filepath.Join(dir, cfgFile), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, cfgFile), nil
}

// loadConfig reads the config file into v. A missing file is only an error
// when it was named explicitly.
func loadConfig(v *viper.Viper, explicit string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: load .env: %v", errConfig, err)
	}

	path, err := configPath(explicit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errConfig, err)
	}

	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	v.SetDefault("default-catalog", "default")

	if err := v.ReadInConfig(); err != nil {
		if explicit != "" || !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: read %s: %v", errConfig, path, err)
		}
	}

	cfg := Config{
		DefaultCatalog: v.GetString("default-catalog"),
		Catalogs:       map[string]iceberg.Properties{},
	}
	if err := v.UnmarshalKey("log", &cfg.Log); err != nil {
		return nil, fmt.Errorf("%w: log: %v", errConfig, err)
	}
	for name := range v.GetStringMap("catalogs") {
		cfg.Catalogs[name] = v.GetStringMapString("catalogs." + name)
	}
	return &cfg, nil
}

// catalogProperties picks the selected catalog and applies flag and
// environment overrides on top of it.
func (c *Config) catalogProperties(v *viper.Viper) (string, iceberg.Properties, error) {
	name := v.GetString("catalog")
	if name == "" {
		name = c.DefaultCatalog
	}

	props := iceberg.Properties{}
	for k, val := range c.Catalogs[name] {
		props[k] = val
	}
	for _, key := range []string{catalog.KeyURI, auth.KeyCredential, auth.KeyToken, catalog.KeyWarehouse} {
		if val := v.GetString(key); val != "" {
			props[key] = val
		}
	}

	if props[catalog.KeyURI] == "" {
		return "", nil, fmt.Errorf("%w: catalog %q has no %s", errConfig, name, catalog.KeyURI)
	}
	return name, props, nil
}
