package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"

	StoreFS    = "fs"
	StoreRedis = "redis"

	EnvStore    = "MAILCHUNK_STORE"
	EnvRedisURL = "MAILCHUNK_REDIS_URL"
	EnvLogLevel = "MAILCHUNK_LOG_LEVEL"

	defaultWorkDir     = "."
	defaultChunkSizeMB = 3
	defaultWorkers     = 4
)

type SplitterConfig struct {
	Workers int `yaml:"workers"`
}

type Config struct {
	WorkDir        string         `yaml:"work_dir"`
	ChunkSizeMB    int            `yaml:"chunk_size_mb"`
	Store          string         `yaml:"store"`
	RedisURL       string         `yaml:"redis_url"`
	LogLevel       string         `yaml:"log_level"`
	SplitterConfig SplitterConfig `yaml:"splitter"`
}

func (c *Config) SetDefaults() {
	c.WorkDir = defaultWorkDir
	c.ChunkSizeMB = defaultChunkSizeMB
	c.Store = StoreFS
	c.LogLevel = LogLevelInfo
	c.SplitterConfig.Workers = defaultWorkers
}

// MustLoad reads a yaml config from path on top of the defaults, then applies
// environment overrides (a .env file is honored if present). A missing config
// file is not an error; the tool must work out of the box.
func MustLoad(path string) *Config {
	_ = godotenv.Load()

	cfg := &Config{}
	cfg.SetDefaults()

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			panic(fmt.Sprintf("cannot parse config %s: %s", path, err))
		}
	} else if !os.IsNotExist(err) {
		panic(fmt.Sprintf("cannot read config %s: %s", path, err))
	}

	if store := os.Getenv(EnvStore); store != "" {
		cfg.Store = store
	}

	if url := os.Getenv(EnvRedisURL); url != "" {
		cfg.RedisURL = url
	}

	if level := os.Getenv(EnvLogLevel); level != "" {
		cfg.LogLevel = level
	}

	return cfg
}
