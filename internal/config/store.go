package config

import (
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

const configTOMLFileName = "config.toml"

type Store struct {
	dir string
}

func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

func (s *Store) LoadOrInit() (Config, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return Config{}, err
	}

	path := filepath.Join(s.dir, configTOMLFileName)
	if b, err := os.ReadFile(path); err == nil {
		var cfg Config
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return Config{}, err
		}
		return s.normalize(cfg), nil
	} else if !os.IsNotExist(err) {
		return Config{}, err
	}

	cfg := s.normalize(Config{})
	if err := writeTOMLAtomically(path, cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (s *Store) Save(cfg Config) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return err
	}
	return writeTOMLAtomically(filepath.Join(s.dir, configTOMLFileName), s.normalize(cfg))
}

func (s *Store) normalize(cfg Config) Config {
	if strings.TrimSpace(cfg.ListenHost) == "" {
		cfg.ListenHost = "127.0.0.1"
	}
	if cfg.ListenPort <= 0 {
		cfg.ListenPort = 4821
	}
	if strings.TrimSpace(cfg.ParserBin) == "" {
		cfg.ParserBin = "ngrev-parsersim"
	}
	if strings.TrimSpace(cfg.LogLevel) == "" {
		cfg.LogLevel = "info"
	}
	if strings.TrimSpace(cfg.DBPath) == "" {
		cfg.DBPath = filepath.Join(s.dir, "ngrev.db")
	}
	cfg.UI = normalizeUI(cfg.UI)
	return cfg
}

func normalizeUI(ui UIConfig) UIConfig {
	switch strings.ToLower(strings.TrimSpace(ui.Theme)) {
	case "dark":
		ui.Theme = "dark"
	default:
		ui.Theme = "light"
	}
	return ui
}

func writeTOMLAtomically(path string, v any) error {
	b, err := toml.Marshal(v)
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
