package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// PathEnvVar names a config file when no path is passed to Load.
const PathEnvVar = "POPGENRES_CONFIG"

const envPrefix = "popgenres_"

// DefaultPaths are tried, in order, when no config file is named.
var DefaultPaths = []string{"popgenres.yaml", "popgenres.yml"}

// envAliases maps conventional variable names, lowercased, to config keys.
var envAliases = map[string]string{
	"spotify_client_id":     "spotify.client_id",
	"spotify_client_secret": "spotify.client_secret",
	"database_url":          "database.dsn",
}

// Load builds the config from defaults, then the YAML file at path, then
// the environment, and validates it. A .env file in the working directory
// is read into the environment first without overriding anything already
// set.
//
// Besides the aliases SPOTIFY_CLIENT_ID, SPOTIFY_CLIENT_SECRET, and
// DATABASE_URL, any key can be set as POPGENRES_SECTION_KEY, eg
// POPGENRES_FETCH_PAGE_SIZE=25.
func Load(path string) (*Config, error) {
	if err := loadDotenv(".env"); err != nil {
		return nil, err
	}

	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("error loading defaults: %w", err)
	}

	if path == "" {
		path = findFile()
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error loading config file '%s': %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("error loading environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("error decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// envKey turns an environment variable name into a config key, or "" for
// variables that aren't ours.
func envKey(name string) string {
	name = strings.ToLower(name)
	if key, ok := envAliases[name]; ok {
		return key
	}
	if name == strings.ToLower(PathEnvVar) || !strings.HasPrefix(name, envPrefix) {
		return ""
	}
	section, key, ok := strings.Cut(strings.TrimPrefix(name, envPrefix), "_")
	if !ok || section == "" || key == "" {
		return ""
	}
	return section + "." + key
}

func findFile() string {
	if path := os.Getenv(PathEnvVar); path != "" {
		return path
	}
	for _, path := range DefaultPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

func loadDotenv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("error reading '%s': %w", path, err)
	}
	return nil
}
