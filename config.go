package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/gmllt/kboard/board"
	"github.com/gmllt/kboard/store"
)

// Config is loaded from config.yml
type Config struct {
	Storage StorageConfig  `yaml:"storage"`
	Lists   []board.Column `yaml:"lists"`
	Board   struct {
		MessageTTL  time.Duration `yaml:"message_ttl"`
		NarrowWidth int           `yaml:"narrow_width"`
	} `yaml:"board"`
}

// StorageConfig selects where the board snapshot is kept
type StorageConfig struct {
	Type   string            `yaml:"type"` // memory, sqlite, redis or s3
	Key    string            `yaml:"key"`
	S3     store.S3Config    `yaml:"s3"`
	Redis  store.RedisConfig `yaml:"redis"`
	SQLite struct {
		Path string `yaml:"path"`
	} `yaml:"sqlite"`
}

func loadConfig(path string) (*Config, error) {
	f, err := os.Open(path) // nolint gosec
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var cfg Config
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("can't parse %s: %w", path, err)
	}
	cfg.setDefaults()
	return &cfg, nil
}

func (c *Config) setDefaults() {
	if c.Storage.Type == "" {
		c.Storage.Type = "sqlite"
	}
	if c.Storage.Key == "" {
		c.Storage.Key = board.DefaultStorageKey
	}
	if c.Storage.SQLite.Path == "" {
		c.Storage.SQLite.Path = "kanban.db"
	}
	if len(c.Lists) == 0 {
		c.Lists = board.DefaultColumns
	}
}
