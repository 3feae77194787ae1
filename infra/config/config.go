package config

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// Dir is the directory MustLoad reads the default configs from.
var Dir = "infra/config"

// Load decodes the config file at the given path into v.
// Files ending in .yaml or .yml are decoded as yaml, everything else as json.
func Load(path string, v interface{}) error {
	b, err := ioutil.ReadFile(path)
	if err != nil {
		return fmt.Errorf("could not load config '%s': %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, v)
	default:
		err = json.Unmarshal(b, v)
	}
	if err != nil {
		return fmt.Errorf("could not unmarshal config '%s': %w", path, err)
	}

	log.Info().Str("path", path).Msg("loaded config")
	return nil
}

// MustLoad loads the config for the given key
func MustLoad(key string, v interface{}) {
	path := filepath.Join(Dir, fmt.Sprintf("%s.json", key))
	if err := Load(path, v); err != nil {
		panic(fmt.Sprintf("could not load config for %s: %s", key, err.Error()))
	}
}
