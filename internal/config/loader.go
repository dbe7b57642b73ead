package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LoadTiles loads the tiles configuration.
// Search order: customPath -> ~/.tiles/configs/tiles.yaml -> ./configs/tiles.yaml -> embedded default
func LoadTiles(customPath string) (TilesConfig, error) {
	// Try custom path first
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return TilesConfig{}, fmt.Errorf("config: failed to read %s: %w", customPath, err)
		}
		cfg, err := parseTiles(data)
		if err != nil {
			return TilesConfig{}, fmt.Errorf("config: failed to parse %s: %w", customPath, err)
		}
		return cfg, nil
	}

	// Try user config directory
	if userCfgPath := userConfigPath("tiles.yaml"); userCfgPath != "" {
		if data, err := os.ReadFile(userCfgPath); err == nil {
			if cfg, err := parseTiles(data); err == nil {
				return cfg, nil
			}
		}
	}

	// Try local configs directory
	if data, err := os.ReadFile(filepath.Join("configs", "tiles.yaml")); err == nil {
		if cfg, err := parseTiles(data); err == nil {
			return cfg, nil
		}
	}

	// Use embedded default YAML
	cfg, err := parseTiles(defaultTilesYAML)
	if err != nil {
		return DefaultTilesConfig(), nil // Fallback to hardcoded if embed fails
	}
	return cfg, nil
}

// parseTiles decodes YAML on top of the defaults so partial files work.
func parseTiles(data []byte) (TilesConfig, error) {
	cfg := DefaultTilesConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return TilesConfig{}, err
	}
	cfg.Normalize()
	return cfg, nil
}

// userConfigPath returns the path to user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".tiles", "configs", filename)
}

// DefaultYAML returns the embedded default configuration file.
func DefaultYAML() []byte {
	out := make([]byte, len(defaultTilesYAML))
	copy(out, defaultTilesYAML)
	return out
}
