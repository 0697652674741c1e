// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package jurorlink

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the full engine configuration.
type Config struct {
	DBPath       string             `yaml:"db_path"`
	PoolSize     int                `yaml:"pool_size"`
	QueueWorkers int                `yaml:"queue_workers"`
	VoterFile    VoterFileConfig    `yaml:"voter_file"`
	FEC          FECConfig          `yaml:"fec"`
	PeopleSearch PeopleSearchConfig `yaml:"people_search"`
}

// VoterFileConfig configures the local voter registration source.
type VoterFileConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// FECConfig configures the campaign contribution records source.
type FECConfig struct {
	Enabled bool   `yaml:"enabled"`
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
}

// PeopleSearchConfig configures the people-search aggregator source.
type PeopleSearchConfig struct {
	Enabled    bool          `yaml:"enabled"`
	BaseURL    string        `yaml:"base_url"`
	APIKey     string        `yaml:"api_key"`
	RateLimit  int           `yaml:"rate_limit"`
	RateWindow time.Duration `yaml:"rate_window"`
}

// DefaultConfig returns sane defaults.
func DefaultConfig() *Config {
	return &Config{
		DBPath:       "jurorlink.db",
		QueueWorkers: 2,
		VoterFile: VoterFileConfig{
			Enabled: true,
			Path:    "voters.db",
		},
		PeopleSearch: PeopleSearchConfig{
			RateLimit:  100,
			RateWindow: time.Hour,
		},
	}
}

// LoadConfig reads and parses a YAML config file. Returns DefaultConfig merged with the file.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate checks that required fields are present and values are sane.
func (c *Config) Validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("db_path is required")
	}
	if !c.VoterFile.Enabled && !c.FEC.Enabled && !c.PeopleSearch.Enabled {
		return fmt.Errorf("at least one source must be enabled")
	}
	if c.VoterFile.Enabled && c.VoterFile.Path == "" {
		return fmt.Errorf("voter_file.path is required when voter_file is enabled")
	}
	if c.FEC.Enabled && c.FEC.BaseURL == "" {
		return fmt.Errorf("fec.base_url is required when fec is enabled")
	}
	if c.PeopleSearch.Enabled && c.PeopleSearch.BaseURL == "" {
		return fmt.Errorf("people_search.base_url is required when people_search is enabled")
	}
	return nil
}
