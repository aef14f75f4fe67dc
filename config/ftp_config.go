// Package config holds the client settings read from the configuration
// file. Command line flags override them.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-multierror"
)

// Listing modes.
const (
	ListingRaw   = "raw"
	ListingTable = "table"
)

// DefaultFileName is looked up in the home directory.
const DefaultFileName = ".minftprc"

// ClientConfig holds FTP client settings.
type ClientConfig struct {
	Port        int    `json:"port"`
	ChunkSize   int    `json:"chunkSize"`
	Theme       string `json:"theme,omitempty"` // empty keeps the last saved theme
	Listing     string `json:"listing"`
	TransferLog string `json:"transferLog,omitempty"`
	Debug       bool   `json:"debug"`
}

// Default returns the settings used when no file is present.
func Default() ClientConfig {
	return ClientConfig{
		Port:      21,
		ChunkSize: 4096,
		Listing:   ListingRaw,
	}
}

// DefaultPath returns ~/.minftprc.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, DefaultFileName), nil
}

// Load reads path over the defaults. A missing file is not an error
// unless required is set.
func Load(path string, required bool) (ClientConfig, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate reports every invalid field.
func (c ClientConfig) Validate() error {
	var result *multierror.Error
	if c.Port < 1 || c.Port > 65535 {
		result = multierror.Append(result, fmt.Errorf("port %d out of range 1-65535", c.Port))
	}
	if c.ChunkSize <= 0 {
		result = multierror.Append(result, fmt.Errorf("chunk size must be positive, got %d", c.ChunkSize))
	}
	if c.Listing != ListingRaw && c.Listing != ListingTable {
		result = multierror.Append(result, fmt.Errorf("listing must be %q or %q, got %q", ListingRaw, ListingTable, c.Listing))
	}
	return result.ErrorOrNil()
}
