package config

import (
	"os"
	"strings"
)

// Config is the host configuration: the persisted config.toml merged
// with NGREV_* environment overrides.
type Config struct {
	ListenHost string   `json:"listen_host" toml:"listen_host"`
	ListenPort int      `json:"listen_port" toml:"listen_port"`
	ParserBin  string   `json:"parser_bin" toml:"parser_bin"`
	LogLevel   string   `json:"log_level" toml:"log_level"`
	LogPath    string   `json:"log_path,omitempty" toml:"log_path,omitempty"`
	DBPath     string   `json:"db_path,omitempty" toml:"db_path,omitempty"`
	TraceWire  bool     `json:"-" toml:"-"`
	UI         UIConfig `json:"ui" toml:"ui"`
}

// UIConfig is the block handed verbatim to UI clients on config.get.
type UIConfig struct {
	Theme    string `json:"theme" toml:"theme"`
	ShowLibs bool   `json:"show_libs" toml:"show_libs"`
}

// Load reads (or initializes) config.toml under dir and applies
// environment overrides on top.
func Load(dir string) (Config, error) {
	cfg, err := NewStore(dir).LoadOrInit()
	if err != nil {
		return Config{}, err
	}
	return applyEnv(cfg), nil
}

func applyEnv(cfg Config) Config {
	if v := strings.TrimSpace(os.Getenv("NGREV_LISTEN_HOST")); v != "" {
		cfg.ListenHost = v
	}
	if v := strings.TrimSpace(os.Getenv("NGREV_LISTEN_PORT")); v != "" {
		if n := atoiOrDefault(v, cfg.ListenPort); n > 0 {
			cfg.ListenPort = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("NGREV_PARSER_BIN")); v != "" {
		cfg.ParserBin = v
	}
	if v := strings.TrimSpace(os.Getenv("NGREV_LOG_LEVEL")); v != "" {
		cfg.LogLevel = v
	}
	if v := strings.TrimSpace(os.Getenv("NGREV_DB_PATH")); v != "" {
		cfg.DBPath = v
	}
	cfg.TraceWire = os.Getenv("NGREV_TRACE_WIRE") == "1"
	return cfg
}

func atoiOrDefault(v string, fallback int) int {
	n := 0
	for i := 0; i < len(v); i++ {
		if v[i] < '0' || v[i] > '9' {
			return fallback
		}
		n = n*10 + int(v[i]-'0')
	}
	if n == 0 {
		return fallback
	}
	return n
}
